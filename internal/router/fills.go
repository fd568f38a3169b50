// Package router normalizes sampled liquidity into fills and allocates the
// requested amount across sources at the best gas-adjusted value.
package router

import (
	"math/big"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// PenaltyConverter turns a gas quantity into output-token units so fills
// from different sources compare on net value. OutputAmountPerEth is
// preferred; when the reference price of the output token is unknown the
// input-token price scaled by the fill's own rate is used instead.
type PenaltyConverter struct {
	GasPrice           *big.Int // wei per gas unit
	OutputAmountPerEth *big.Int // output-token base units per 1e18 wei
	InputAmountPerEth  *big.Int
}

// OutputPenalty converts a gas amount into output-token units for a fill
// with the given input and output.
func (c PenaltyConverter) OutputPenalty(gas uint64, input, output *big.Int) *big.Int {
	if c.GasPrice == nil || c.GasPrice.Sign() <= 0 || gas == 0 {
		return big.NewInt(0)
	}
	ethFee := new(big.Int).Mul(c.GasPrice, new(big.Int).SetUint64(gas))

	if c.OutputAmountPerEth != nil && c.OutputAmountPerEth.Sign() > 0 {
		fee := new(big.Int).Mul(ethFee, c.OutputAmountPerEth)
		return fee.Div(fee, common.OneEther)
	}
	if c.InputAmountPerEth != nil && c.InputAmountPerEth.Sign() > 0 &&
		input != nil && input.Sign() > 0 && output != nil {
		fee := new(big.Int).Mul(ethFee, c.InputAmountPerEth)
		fee.Div(fee, common.OneEther)
		fee.Mul(fee, output)
		return fee.Div(fee, input)
	}
	return big.NewInt(0)
}

// AdjustOutput applies a penalty to an output amount. Selling, the penalty
// shrinks what the taker receives; buying, it inflates what the taker pays.
func AdjustOutput(side domain.Side, output, penalty *big.Int) *big.Int {
	if side == domain.SideSell {
		return new(big.Int).Sub(output, penalty)
	}
	return new(big.Int).Add(output, penalty)
}

// DexSampleToFill normalizes one sampled curve point into a fill.
func DexSampleToFill(
	side domain.Side,
	sample domain.DexSample,
	conv PenaltyConverter,
	schedule *GasSchedule,
) *domain.Fill {
	gas := schedule.ForFillData(sample.Source, sample.FillData)
	penalty := conv.OutputPenalty(gas, sample.Input, sample.Output)
	return &domain.Fill{
		Source:         sample.Source,
		OrderType:      domain.OrderTypeBridge,
		Input:          sample.Input,
		Output:         sample.Output,
		AdjustedOutput: AdjustOutput(side, sample.Output, penalty),
		FillData:       sample.FillData,
		Gas:            gas,
	}
}

// DexSamplesToFills normalizes a truncated sample curve. Zero-amount probe
// points are dropped; they exist only for route discovery and must never
// reach the optimizer.
func DexSamplesToFills(
	side domain.Side,
	samples []domain.DexSample,
	conv PenaltyConverter,
	schedule *GasSchedule,
) []*domain.Fill {
	fills := make([]*domain.Fill, 0, len(samples))
	for _, s := range samples {
		if s.Input == nil || s.Input.Sign() <= 0 || s.Output == nil || s.Output.Sign() <= 0 {
			continue
		}
		fills = append(fills, DexSampleToFill(side, s, conv, schedule))
	}
	return fills
}

// NativeOrderToFill converts a resolved order into one divisible fill,
// clipped to the target input. The gas penalty is constant for any clip: an
// oversized order and one at exactly the target are penalized the same.
// Returns false when the order has nothing fillable or its adjusted value is
// not positive.
func NativeOrderToFill(
	side domain.Side,
	order domain.NativeOrderWithFillableAmounts,
	targetInput *big.Int,
	conv PenaltyConverter,
	schedule *GasSchedule,
) (*domain.Fill, bool) {
	taker := order.FillableTakerAmount
	maker := order.FillableMakerAmount
	if taker == nil || taker.Sign() <= 0 || maker == nil || maker.Sign() <= 0 {
		return nil, false
	}

	input, output := taker, maker
	if side == domain.SideBuy {
		input, output = maker, taker
	}

	clippedInput := new(big.Int).Set(input)
	clippedOutput := new(big.Int).Set(output)
	if targetInput != nil && targetInput.Cmp(input) < 0 {
		clippedInput.Set(targetInput)
		clippedOutput.Mul(targetInput, output)
		clippedOutput.Div(clippedOutput, input)
	}

	gas := schedule.ForOrderType(order.Type)
	penalty := conv.OutputPenalty(gas, clippedInput, clippedOutput)
	adjusted := AdjustOutput(side, clippedOutput, penalty)
	if side == domain.SideSell && adjusted.Sign() <= 0 {
		return nil, false
	}

	return &domain.Fill{
		Source:         domain.SourceNative,
		OrderType:      order.Type,
		Input:          clippedInput,
		Output:         clippedOutput,
		AdjustedOutput: adjusted,
		FillData:       domain.NativeFillData{Order: order.SignedNativeOrder, MakerURI: order.MakerURI},
		Gas:            gas,
	}, true
}

// TwoHopSampleToFill normalizes a composed two-hop sample into one fill.
func TwoHopSampleToFill(
	side domain.Side,
	sample domain.DexSample,
	conv PenaltyConverter,
	schedule *GasSchedule,
) *domain.Fill {
	gas := schedule.ForFillData(domain.SourceMultiHop, sample.FillData)
	penalty := conv.OutputPenalty(gas, sample.Input, sample.Output)
	return &domain.Fill{
		Source:         domain.SourceMultiHop,
		OrderType:      domain.OrderTypeBridge,
		Input:          sample.Input,
		Output:         sample.Output,
		AdjustedOutput: AdjustOutput(side, sample.Output, penalty),
		FillData:       sample.FillData,
		Gas:            gas,
	}
}

// SelectBestCandidate returns the index of the extremum in candidates, or -1
// when none is usable. The first candidate achieving the extremum wins, so
// selection is deterministic in index order. Selling composes max-then-max;
// buying composes min-then-min, expressed here by the max flag.
func SelectBestCandidate(candidates []*big.Int, max bool) int {
	best := -1
	for i, c := range candidates {
		if c == nil || c.Sign() <= 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		cmp := c.Cmp(candidates[best])
		if (max && cmp > 0) || (!max && cmp < 0) {
			best = i
		}
	}
	return best
}
