package router

import (
	"math"
	"math/big"

	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/slippage"
)

// FillAdjustor revises the adjusted outputs of a chosen path after the
// optimizer commits. Implementations are pure: they return new fills and
// never mutate their inputs.
type FillAdjustor interface {
	AdjustFills(side domain.Side, fills []*domain.Fill, requestedAmount *big.Int) []*domain.Fill
}

// IdentityFillAdjustor leaves fills unchanged.
type IdentityFillAdjustor struct{}

func (IdentityFillAdjustor) AdjustFills(_ domain.Side, fills []*domain.Fill, _ *big.Int) []*domain.Fill {
	return fills
}

// SlippageFillAdjustor lowers adjusted outputs by the model-predicted
// execution slippage for each fill's source. The penalty is incremental
// against whatever slippage is already baked into the fill, so adjusting an
// already-adjusted path again is a no-op.
type SlippageFillAdjustor struct {
	Cache          *slippage.Cache
	Pair           domain.TokenPair
	MaxSlippageBps float64
}

func (a *SlippageFillAdjustor) AdjustFills(side domain.Side, fills []*domain.Fill, _ *big.Int) []*domain.Fill {
	adjusted := make([]*domain.Fill, len(fills))
	for i, f := range fills {
		adjusted[i] = a.adjustFill(side, f)
	}
	return adjusted
}

func (a *SlippageFillAdjustor) adjustFill(side domain.Side, f *domain.Fill) *domain.Fill {
	model, ok := a.Cache.Get(a.Pair, f.Source)
	if !ok {
		return f
	}

	token0Amount := f.Output
	if model.Token0 == a.Pair.SellToken {
		token0Amount = f.Input
	}
	rate := model.ExpectedSlippage(bigToFloat(token0Amount), a.MaxSlippageBps)
	// Positive predictions mean better-than-quote execution; outputs are
	// never revised upward.
	if rate >= 0 {
		return f
	}

	penalty := floatTimesBig(math.Abs(rate), f.Output)
	applied := big.NewInt(0)
	if f.AppliedSlippage != nil {
		applied = f.AppliedSlippage
	}
	incremental := new(big.Int).Sub(penalty, applied)
	if incremental.Sign() <= 0 {
		return f
	}

	out := f.Clone()
	out.AdjustedOutput = AdjustOutput(side, out.AdjustedOutput, incremental)
	out.AppliedSlippage = penalty
	return out
}

func bigToFloat(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}

func floatTimesBig(rate float64, x *big.Int) *big.Int {
	product := new(big.Float).Mul(big.NewFloat(rate), new(big.Float).SetInt(x))
	out, _ := product.Int(nil)
	return out
}
