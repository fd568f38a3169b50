package http

import (
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/0xProject/protocol-sub016/internal/aggregator"
	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/http/httputil"
	"github.com/0xProject/protocol-sub016/internal/report"
)

type QuoteHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewQuoteHandler(aggregatorSvc *aggregator.Service) *QuoteHandler {
	return &QuoteHandler{aggregatorSvc: aggregatorSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest is the query surface of the quote endpoint.
type QuoteRequest struct {
	// ERC-20 token being sold, as a 0x-prefixed hex address.
	SellToken string `form:"sellToken" binding:"required"`

	// ERC-20 token being bought, as a 0x-prefixed hex address.
	BuyToken string `form:"buyToken" binding:"required"`

	// Exact amount of sellToken to spend, in base units. Exactly one of
	// sellAmount and buyAmount must be set.
	SellAmount string `form:"sellAmount"`

	// Exact amount of buyToken to receive, in base units.
	BuyAmount string `form:"buyAmount"`

	// Permit splitting the fill across several sources. Default true.
	AllowSplit *bool `form:"allowSplit"`

	// Slippage tolerance in basis points fed into the slippage model.
	// Zero disables slippage adjustment.
	SlippageBps float64 `form:"slippageBps"`

	// Reference prices in token base units per 1 ether, used to express gas
	// cost in token terms. Optional; without them gas cost does not shift
	// source ranking.
	BuyTokenPerEth  string `form:"buyTokenPerEth"`
	SellTokenPerEth string `form:"sellTokenPerEth"`

	// Include the per-source audit report in the response.
	IncludeReport bool `form:"includeReport"`
}

// QuoteFill is one routed fill in the response.
type QuoteFill struct {
	Source    string `json:"source"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Gas       uint64 `json:"gas"`
	OrderType string `json:"orderType,omitempty"`
}

// QuoteResponse is the served quote.
type QuoteResponse struct {
	SellToken  string `json:"sellToken"`
	BuyToken   string `json:"buyToken"`
	SellAmount string `json:"sellAmount"`
	BuyAmount  string `json:"buyAmount"`

	// Shortfall is the requested amount the routed path could not cover.
	// "0" for a complete fill.
	Shortfall string `json:"shortfall"`

	GasPrice string      `json:"gasPrice"`
	Fills    []QuoteFill `json:"fills"`

	Report *report.QuoteReport `json:"report,omitempty"`
}

type parsedQuoteRequest struct {
	req  *QuoteRequest
	pair domain.TokenPair
	side domain.Side
	svc  aggregator.QuoteRequest
}

func parseAddress(raw string) (ethcommon.Address, bool) {
	if !ethcommon.IsHexAddress(raw) {
		return ethcommon.Address{}, false
	}
	addr := ethcommon.HexToAddress(raw)
	return addr, addr != (ethcommon.Address{})
}

func parseAmount(raw string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, false
	}
	return amount, true
}

func (h *QuoteHandler) parseQuoteRequest(c *gin.Context) (*parsedQuoteRequest, bool) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid query parameters: "+err.Error())
		return nil, false
	}

	sellToken, ok := parseAddress(req.SellToken)
	if !ok {
		httputil.HandleBadRequest(c, "invalid sellToken address")
		return nil, false
	}
	buyToken, ok := parseAddress(req.BuyToken)
	if !ok {
		httputil.HandleBadRequest(c, "invalid buyToken address")
		return nil, false
	}
	if sellToken == buyToken {
		httputil.HandleBadRequest(c, "sellToken and buyToken must differ")
		return nil, false
	}

	var (
		side   domain.Side
		amount *big.Int
	)
	switch {
	case req.SellAmount != "" && req.BuyAmount != "":
		httputil.HandleBadRequest(c, "provide either sellAmount or buyAmount, not both")
		return nil, false
	case req.SellAmount != "":
		side = domain.SideSell
		if amount, ok = parseAmount(req.SellAmount); !ok {
			httputil.HandleBadRequest(c, "invalid sellAmount: must be a positive integer")
			return nil, false
		}
	case req.BuyAmount != "":
		side = domain.SideBuy
		if amount, ok = parseAmount(req.BuyAmount); !ok {
			httputil.HandleBadRequest(c, "invalid buyAmount: must be a positive integer")
			return nil, false
		}
	default:
		httputil.HandleBadRequest(c, "one of sellAmount or buyAmount is required")
		return nil, false
	}

	if req.SlippageBps < 0 || req.SlippageBps >= 10000 {
		httputil.HandleBadRequest(c, "slippageBps must be in [0, 10000)")
		return nil, false
	}

	allowSplit := true
	if req.AllowSplit != nil {
		allowSplit = *req.AllowSplit
	}

	svcReq := aggregator.QuoteRequest{
		Pair:           domain.TokenPair{SellToken: sellToken, BuyToken: buyToken},
		Side:           side,
		Amount:         amount,
		AllowSplit:     allowSplit,
		MaxSlippageBps: req.SlippageBps,
	}

	// The requested amount sits on the output side of a buy quote, so the
	// reference prices swap roles between the two sides.
	outPerEthRaw, inPerEthRaw := req.BuyTokenPerEth, req.SellTokenPerEth
	if side == domain.SideBuy {
		outPerEthRaw, inPerEthRaw = req.SellTokenPerEth, req.BuyTokenPerEth
	}
	if outPerEthRaw != "" {
		if svcReq.OutputAmountPerEth, ok = parseAmount(outPerEthRaw); !ok {
			httputil.HandleBadRequest(c, "invalid token-per-eth price: must be a positive integer")
			return nil, false
		}
	}
	if inPerEthRaw != "" {
		if svcReq.InputAmountPerEth, ok = parseAmount(inPerEthRaw); !ok {
			httputil.HandleBadRequest(c, "invalid token-per-eth price: must be a positive integer")
			return nil, false
		}
	}

	return &parsedQuoteRequest{
		req:  &req,
		pair: svcReq.Pair,
		side: side,
		svc:  svcReq,
	}, true
}

func buildQuoteResponse(parsed *parsedQuoteRequest, result *aggregator.QuoteResult) QuoteResponse {
	// A sell quote routes sellAmount to an estimated buyAmount; a buy quote
	// routes the requested buyAmount back to a required sellAmount.
	sellAmount, buyAmount := result.Input, result.Output
	if parsed.side == domain.SideBuy {
		sellAmount, buyAmount = result.Output, result.Input
	}

	fills := make([]QuoteFill, 0, len(result.Fills))
	for _, f := range result.Fills {
		qf := QuoteFill{
			Source: string(f.Source),
			Input:  f.Input.String(),
			Output: f.Output.String(),
			Gas:    f.Gas,
		}
		if f.Source == domain.SourceNative {
			qf.OrderType = f.OrderType.String()
		}
		fills = append(fills, qf)
	}

	resp := QuoteResponse{
		SellToken:  strings.ToLower(parsed.pair.SellToken.Hex()),
		BuyToken:   strings.ToLower(parsed.pair.BuyToken.Hex()),
		SellAmount: sellAmount.String(),
		BuyAmount:  buyAmount.String(),
		Shortfall:  result.Shortfall.String(),
		GasPrice:   result.GasPrice.String(),
		Fills:      fills,
	}
	if parsed.req.IncludeReport {
		resp.Report = result.Report
	}
	return resp
}

func (h *QuoteHandler) getQuote(c *gin.Context) {
	parsed, ok := h.parseQuoteRequest(c)
	if !ok {
		return
	}

	result, err := h.aggregatorSvc.GetQuote(c.Request.Context(), parsed.svc)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.HandleSuccess(c, buildQuoteResponse(parsed, result))
}
