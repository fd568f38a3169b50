// Package sampler builds and executes batched on-chain liquidity sampling
// against the deployed sampler helper contract.
package sampler

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// GetSampleAmounts returns the ladder of input amounts a source is sampled
// at. Rungs are cumulative sums of geometric weights base^i so that a base
// above 1 concentrates rungs near the full amount. The ladder is strictly
// increasing: for a maxAmount small relative to numSamples, rungs that round
// to zero or onto their lower neighbor are dropped, so the result may hold
// fewer than numSamples rungs. The last rung is always exactly maxAmount.
func GetSampleAmounts(maxAmount *big.Int, numSamples int, base float64) []*big.Int {
	if numSamples < 1 || maxAmount.Sign() <= 0 {
		return nil
	}
	if numSamples == 1 {
		return []*big.Int{new(big.Int).Set(maxAmount)}
	}

	weights := make([]float64, numSamples)
	total := 0.0
	w := 1.0
	for i := range weights {
		weights[i] = w
		total += w
		w *= base
	}

	amounts := make([]*big.Int, 0, numSamples)
	fMax := new(big.Float).SetInt(maxAmount)
	prev := big.NewInt(0)
	cum := 0.0
	for i := 0; i < numSamples-1; i++ {
		cum += weights[i]
		rung := new(big.Float).Mul(fMax, big.NewFloat(cum/total))
		r, _ := rung.Int(nil)
		if r.Cmp(prev) <= 0 {
			continue
		}
		amounts = append(amounts, r)
		prev = r
	}
	if prev.Cmp(maxAmount) < 0 {
		amounts = append(amounts, new(big.Int).Set(maxAmount))
	}
	return amounts
}

// missSentinel is the all-ones uint256 the sampler contract returns for a
// probe it could not serve.
var missSentinel = uint256.MustFromBig(common.MaxUint256)

// validOutput reports whether a sampled output is usable: non-nil, positive,
// within uint256 range and not the contract's miss sentinel.
func validOutput(out *big.Int) bool {
	if out == nil || out.Sign() <= 0 {
		return false
	}
	u, overflow := uint256.FromBig(out)
	return !overflow && !u.Eq(missSentinel)
}

// TruncateSamples cuts a source's sample curve at the first invalid or
// decreasing output. Everything from that rung on is dropped, so the
// surviving prefix is a nondecreasing curve; an empty result means the
// source had no usable liquidity.
func TruncateSamples(samples []domain.DexSample) []domain.DexSample {
	end := 0
	for i, s := range samples {
		if !validOutput(s.Output) {
			break
		}
		if i > 0 && s.Output.Cmp(samples[i-1].Output) < 0 {
			break
		}
		end = i + 1
	}
	return samples[:end]
}
