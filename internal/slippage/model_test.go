package slippage

import (
	"math"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

var (
	tokenWETH = ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	tokenUSDC = ethcommon.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	tokenDAI  = ethcommon.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

func TestExpectedSlippage(t *testing.T) {
	m := Model{
		SlippageCoefficient: -2e-5,
		VolumeCoefficient:   -1e-9,
		Intercept:           -1e-4,
		Token0PriceInUsd:    2,
	}

	tests := []struct {
		name           string
		token0Amount   float64
		maxSlippageBps float64
		want           float64
	}{
		{name: "all terms", token0Amount: 1e6, maxSlippageBps: 50, want: -2e-5*50 - 1e-9*2e6 - 1e-4},
		{name: "zero volume", token0Amount: 0, maxSlippageBps: 50, want: -2e-5*50 - 1e-4},
		{name: "intercept only", token0Amount: 0, maxSlippageBps: 0, want: -1e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExpectedSlippage(tt.token0Amount, tt.maxSlippageBps)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestCacheLookupIsDirectionInsensitive(t *testing.T) {
	c := NewCache()
	c.Replace([]Model{{
		Token0:    tokenUSDC,
		Token1:    tokenWETH,
		Source:    domain.SourceUniswapV2,
		Intercept: -1e-4,
	}})

	pair := domain.TokenPair{SellToken: tokenWETH, BuyToken: tokenUSDC}
	if _, ok := c.Get(pair, domain.SourceUniswapV2); !ok {
		t.Error("model missing for forward direction")
	}
	if _, ok := c.Get(pair.Reverse(), domain.SourceUniswapV2); !ok {
		t.Error("model missing for reversed direction")
	}
}

func TestCacheMisses(t *testing.T) {
	c := NewCache()
	c.Replace([]Model{{
		Token0:    tokenUSDC,
		Token1:    tokenWETH,
		Source:    domain.SourceUniswapV2,
		Intercept: -1e-4,
	}})

	pair := domain.TokenPair{SellToken: tokenWETH, BuyToken: tokenUSDC}
	if _, ok := c.Get(pair, domain.SourceSushiSwap); ok {
		t.Error("hit for a source without a model")
	}
	other := domain.TokenPair{SellToken: tokenDAI, BuyToken: tokenUSDC}
	if _, ok := c.Get(other, domain.SourceUniswapV2); ok {
		t.Error("hit for a pair without a model")
	}
}

func TestReplaceSwapsWholeLookup(t *testing.T) {
	c := NewCache()
	c.Replace([]Model{{Token0: tokenUSDC, Token1: tokenWETH, Source: domain.SourceUniswapV2}})

	c.Replace([]Model{{Token0: tokenUSDC, Token1: tokenDAI, Source: domain.SourceCurve}})

	old := domain.TokenPair{SellToken: tokenWETH, BuyToken: tokenUSDC}
	if _, ok := c.Get(old, domain.SourceUniswapV2); ok {
		t.Error("stale model survived a replace")
	}
	next := domain.TokenPair{SellToken: tokenDAI, BuyToken: tokenUSDC}
	if _, ok := c.Get(next, domain.SourceCurve); !ok {
		t.Error("replacement model missing")
	}
}
