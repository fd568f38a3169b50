package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side determines whether the requested amount is the input (sell) or the
// output (buy) of the swap.
type Side uint8

const (
	SideSell Side = iota
	SideBuy
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "Sell"
	case SideBuy:
		return "Buy"
	default:
		return "UNKNOWN"
	}
}

// Source identifies one liquidity venue.
type Source string

const (
	SourceNative     Source = "Native"
	SourceMultiHop   Source = "MultiHop"
	SourceUniswapV2  Source = "UniswapV2"
	SourceSushiSwap  Source = "SushiSwap"
	SourceUniswapV3  Source = "UniswapV3"
	SourcePancakeV3  Source = "PancakeSwapV3"
	SourceCurve      Source = "Curve"
	SourceBalancerV2 Source = "BalancerV2"
)

// TokenPair is a directional pair: sell sellToken, receive buyToken.
type TokenPair struct {
	SellToken common.Address `json:"sellToken"`
	BuyToken  common.Address `json:"buyToken"`
}

// Reverse returns the pair with the direction flipped.
func (p TokenPair) Reverse() TokenPair {
	return TokenPair{SellToken: p.BuyToken, BuyToken: p.SellToken}
}

func (p TokenPair) String() string {
	return p.SellToken.Hex() + "/" + p.BuyToken.Hex()
}

// DexSample is one point on a source's price-impact curve at one ladder
// amount. Output is zero when the source reverted or had no liquidity at
// this input.
type DexSample struct {
	Source   Source
	Input    *big.Int
	Output   *big.Int
	FillData FillData
}

// Fill is the atomic execution unit the optimizer reasons about. It is
// created fresh per quote request and is immutable once constructed, except
// for AdjustedOutput which only a FillAdjustor may revise.
type Fill struct {
	Source    Source
	OrderType OrderType
	Input     *big.Int
	Output    *big.Int
	// AdjustedOutput starts as Output net of the gas penalty in output-token
	// units and may be lowered further by a FillAdjustor.
	AdjustedOutput *big.Int
	// AppliedSlippage is the slippage penalty already baked into
	// AdjustedOutput, kept so re-adjustment stays incremental instead of
	// compounding. Nil means no slippage adjustment has happened.
	AppliedSlippage *big.Int
	FillData        FillData
	Gas             uint64
}

// Clone returns a deep-enough copy: amounts are copied, FillData is shared
// (fill data is read-only after sampling).
func (f *Fill) Clone() *Fill {
	clone := &Fill{
		Source:         f.Source,
		OrderType:      f.OrderType,
		Input:          new(big.Int).Set(f.Input),
		Output:         new(big.Int).Set(f.Output),
		AdjustedOutput: new(big.Int).Set(f.AdjustedOutput),
		FillData:       f.FillData,
		Gas:            f.Gas,
	}
	if f.AppliedSlippage != nil {
		clone.AppliedSlippage = new(big.Int).Set(f.AppliedSlippage)
	}
	return clone
}
