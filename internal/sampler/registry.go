package sampler

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/config"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Registry turns the configured source address book into per-request
// sampling operations. It is built once at startup; construction surfaces
// any missing address immediately.
type Registry struct {
	cfg *config.SourcesConfig
}

func NewRegistry(cfg *config.SourcesConfig) *Registry {
	return &Registry{cfg: cfg}
}

func (r *Registry) enabled(source domain.Source) bool {
	_, disabled := r.cfg.DisabledSources[string(source)]
	return !disabled
}

// IntermediateTokens returns the configured hop candidates that differ from
// both endpoints of the pair.
func (r *Registry) IntermediateTokens(pair domain.TokenPair) []ethcommon.Address {
	tokens := make([]ethcommon.Address, 0, len(r.cfg.IntermediateTokens))
	for _, t := range r.cfg.IntermediateTokens {
		if t != pair.SellToken && t != pair.BuyToken {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// DirectOperations builds one sampling operation per enabled on-chain source
// for the direct pair.
func (r *Registry) DirectOperations(
	pair domain.TokenPair,
	side domain.Side,
	amounts []*big.Int,
) ([]SourceQuoteOperation, error) {
	tokenPath := []ethcommon.Address{pair.SellToken, pair.BuyToken}

	type spec struct {
		source domain.Source
		build  func() (SourceQuoteOperation, error)
	}
	specs := []spec{
		{domain.SourceUniswapV2, func() (SourceQuoteOperation, error) {
			return NewUniswapV2Operation(domain.SourceUniswapV2, r.cfg.UniswapV2Router, tokenPath, side, amounts)
		}},
		{domain.SourceSushiSwap, func() (SourceQuoteOperation, error) {
			return NewUniswapV2Operation(domain.SourceSushiSwap, r.cfg.SushiSwapRouter, tokenPath, side, amounts)
		}},
		{domain.SourceUniswapV3, func() (SourceQuoteOperation, error) {
			return NewUniswapV3Operation(domain.SourceUniswapV3, r.cfg.UniswapV3Router, r.cfg.UniswapV3Quoter, tokenPath, side, amounts)
		}},
	}

	ops := make([]SourceQuoteOperation, 0, len(specs))
	for _, s := range specs {
		if !r.enabled(s.source) {
			continue
		}
		op, err := s.build()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// HopOperations builds sampling operations for one leg of a two-hop route.
// Selling walks the legs forward as sells; buying walks them backward as
// buys.
func (r *Registry) HopOperations(
	sellToken, buyToken ethcommon.Address,
	side domain.Side,
	amounts []*big.Int,
) ([]SourceQuoteOperation, error) {
	return r.DirectOperations(
		domain.TokenPair{SellToken: sellToken, BuyToken: buyToken},
		side,
		amounts,
	)
}
