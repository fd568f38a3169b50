package router

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/slippage"
)

var (
	adjWETH = ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	adjUSDC = ethcommon.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func slippageAdjustor(models ...slippage.Model) *SlippageFillAdjustor {
	cache := slippage.NewCache()
	cache.Replace(models)
	return &SlippageFillAdjustor{
		Cache:          cache,
		Pair:           domain.TokenPair{SellToken: adjWETH, BuyToken: adjUSDC},
		MaxSlippageBps: 100,
	}
}

// flatModel predicts the same signed rate at every size.
func flatModel(source domain.Source, rate float64) slippage.Model {
	return slippage.Model{
		Token0:    adjUSDC,
		Token1:    adjWETH,
		Source:    source,
		Intercept: rate,
	}
}

func TestSlippageAdjustorLowersAdjustedOutput(t *testing.T) {
	a := slippageAdjustor(flatModel(domain.SourceUniswapV2, -0.01))
	f := fill(domain.SourceUniswapV2, 1_000, 1_000_000, 990_000)

	adjusted := a.AdjustFills(domain.SideSell, []*domain.Fill{f}, big.NewInt(1_000))
	if len(adjusted) != 1 {
		t.Fatalf("got %d fills, want 1", len(adjusted))
	}
	got := adjusted[0]
	if got.AdjustedOutput.Cmp(big.NewInt(980_000)) != 0 {
		t.Errorf("adjusted output = %s, want 980000", got.AdjustedOutput)
	}
	if got.AppliedSlippage == nil || got.AppliedSlippage.Cmp(big.NewInt(10_000)) != 0 {
		t.Errorf("applied slippage = %v, want 10000", got.AppliedSlippage)
	}
	// The input fill stays untouched.
	if f.AdjustedOutput.Cmp(big.NewInt(990_000)) != 0 {
		t.Errorf("input fill mutated: adjusted output = %s", f.AdjustedOutput)
	}
}

func TestSlippageAdjustorIsIdempotent(t *testing.T) {
	a := slippageAdjustor(flatModel(domain.SourceUniswapV2, -0.01))
	f := fill(domain.SourceUniswapV2, 1_000, 1_000_000, 990_000)

	once := a.AdjustFills(domain.SideSell, []*domain.Fill{f}, big.NewInt(1_000))
	twice := a.AdjustFills(domain.SideSell, once, big.NewInt(1_000))

	if twice[0] != once[0] {
		t.Error("second adjustment rebuilt an already-adjusted fill")
	}
	if twice[0].AdjustedOutput.Cmp(big.NewInt(980_000)) != 0 {
		t.Errorf("adjusted output after re-run = %s, want 980000", twice[0].AdjustedOutput)
	}
}

func TestSlippageAdjustorSkipsFavorableAndUnknown(t *testing.T) {
	a := slippageAdjustor(flatModel(domain.SourceUniswapV2, 0.01))
	favorable := fill(domain.SourceUniswapV2, 1_000, 1_000_000, 990_000)
	unmodeled := fill(domain.SourceSushiSwap, 1_000, 1_000_000, 990_000)

	adjusted := a.AdjustFills(domain.SideSell, []*domain.Fill{favorable, unmodeled}, big.NewInt(2_000))
	if adjusted[0] != favorable {
		t.Error("positive prediction changed the fill")
	}
	if adjusted[1] != unmodeled {
		t.Error("fill without a model changed")
	}
}

func TestSlippageAdjustorUsesInputWhenToken0IsSellToken(t *testing.T) {
	// Token0 is the sell token, so the volume term runs off the input size:
	// rate = input * 1 USD * -1e-6 = -0.001 at input 1000.
	model := slippage.Model{
		Token0:            adjWETH,
		Token1:            adjUSDC,
		Source:            domain.SourceUniswapV2,
		VolumeCoefficient: -1e-6,
		Token0PriceInUsd:  1,
	}
	a := slippageAdjustor(model)
	f := fill(domain.SourceUniswapV2, 1_000, 1_000_000, 1_000_000)

	adjusted := a.AdjustFills(domain.SideSell, []*domain.Fill{f}, big.NewInt(1_000))
	if adjusted[0].AdjustedOutput.Cmp(big.NewInt(999_000)) != 0 {
		t.Errorf("adjusted output = %s, want 999000", adjusted[0].AdjustedOutput)
	}
}

func TestSlippageAdjustorBuySideRaisesSpend(t *testing.T) {
	a := slippageAdjustor(flatModel(domain.SourceUniswapV2, -0.01))
	f := fill(domain.SourceUniswapV2, 1_000, 1_000_000, 1_010_000)

	adjusted := a.AdjustFills(domain.SideBuy, []*domain.Fill{f}, big.NewInt(1_000))
	if adjusted[0].AdjustedOutput.Cmp(big.NewInt(1_020_000)) != 0 {
		t.Errorf("adjusted spend = %s, want 1020000", adjusted[0].AdjustedOutput)
	}
}

func TestIdentityFillAdjustorPassesThrough(t *testing.T) {
	fills := []*domain.Fill{fill(domain.SourceUniswapV2, 100, 95, 90)}
	got := IdentityFillAdjustor{}.AdjustFills(domain.SideSell, fills, big.NewInt(100))
	if len(got) != 1 || got[0] != fills[0] {
		t.Error("identity adjustor altered fills")
	}
}
