package http

import (
	"math/big"

	"github.com/gin-gonic/gin"

	"github.com/0xProject/protocol-sub016/internal/aggregator"
	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/http/httputil"
)

// PriceHandler serves indicative prices: the same routing as a quote, but
// returning only amounts. Callers polling for display prices use this
// endpoint so the response stays small.
type PriceHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewPriceHandler(aggregatorSvc *aggregator.Service) *PriceHandler {
	return &PriceHandler{aggregatorSvc: aggregatorSvc}
}

func (h *PriceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getPrice)
}

func (h *PriceHandler) Root() string {
	return "/price"
}

// PriceResponse is an indicative price for a pair and amount.
type PriceResponse struct {
	SellToken  string `json:"sellToken"`
	BuyToken   string `json:"buyToken"`
	SellAmount string `json:"sellAmount"`
	BuyAmount  string `json:"buyAmount"`

	// Price is buyAmount per unit of sellAmount, as a decimal string.
	Price string `json:"price"`

	// EstimatedGas is the gas the routed path would consume.
	EstimatedGas uint64 `json:"estimatedGas"`
}

func (h *PriceHandler) getPrice(c *gin.Context) {
	parsed, ok := (&QuoteHandler{aggregatorSvc: h.aggregatorSvc}).parseQuoteRequest(c)
	if !ok {
		return
	}

	result, err := h.aggregatorSvc.GetQuote(c.Request.Context(), parsed.svc)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	quote := buildQuoteResponse(parsed, result)

	var gas uint64
	for _, f := range result.Fills {
		gas += f.Gas
	}

	httputil.HandleSuccess(c, PriceResponse{
		SellToken:    quote.SellToken,
		BuyToken:     quote.BuyToken,
		SellAmount:   quote.SellAmount,
		BuyAmount:    quote.BuyAmount,
		Price:        unitPrice(result.Input, result.Output, parsed.side),
		EstimatedGas: gas,
	})
}

// unitPrice renders output per unit input with 18 digits of precision,
// oriented so the price is always buy-per-sell.
func unitPrice(input, output *big.Int, side domain.Side) string {
	sell, buy := input, output
	if side == domain.SideBuy {
		sell, buy = output, input
	}
	if sell.Sign() == 0 {
		return "0"
	}
	price := new(big.Float).Quo(new(big.Float).SetInt(buy), new(big.Float).SetInt(sell))
	return price.Text('f', 18)
}
