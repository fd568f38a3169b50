package router

import (
	"math/big"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Path is an ordered set of chosen fills whose summed input satisfies (or
// best-effort approaches) the requested amount.
type Path struct {
	side        domain.Side
	targetInput *big.Int
	fills       []*domain.Fill

	input          *big.Int
	output         *big.Int
	adjustedOutput *big.Int
}

func NewPath(side domain.Side, targetInput *big.Int) *Path {
	return &Path{
		side:           side,
		targetInput:    targetInput,
		input:          big.NewInt(0),
		output:         big.NewInt(0),
		adjustedOutput: big.NewInt(0),
	}
}

func (p *Path) Append(f *domain.Fill) {
	p.fills = append(p.fills, f)
	p.input.Add(p.input, f.Input)
	p.output.Add(p.output, f.Output)
	p.adjustedOutput.Add(p.adjustedOutput, f.AdjustedOutput)
}

func (p *Path) Side() domain.Side { return p.side }

func (p *Path) TargetInput() *big.Int { return p.targetInput }

func (p *Path) Fills() []*domain.Fill { return p.fills }

func (p *Path) Input() *big.Int { return p.input }

func (p *Path) Output() *big.Int { return p.output }

func (p *Path) AdjustedOutput() *big.Int { return p.adjustedOutput }

// IsComplete reports whether the path covers the full requested amount.
func (p *Path) IsComplete() bool {
	return p.input.Cmp(p.targetInput) >= 0
}

// Shortfall is how much of the requested amount the path leaves unfilled.
func (p *Path) Shortfall() *big.Int {
	if p.IsComplete() {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(p.targetInput, p.input)
}

type pathSize struct {
	input          *big.Int
	output         *big.Int
	adjustedOutput *big.Int
}

// clippedSize returns the path's size with the last fill clipped so input
// never exceeds the target. The clipped fill's output scales linearly with
// the clip, but its gas penalty does not: an oversized fill and one at the
// exact target carry the same penalty.
func (p *Path) clippedSize() pathSize {
	size := pathSize{
		input:          new(big.Int).Set(p.input),
		output:         new(big.Int).Set(p.output),
		adjustedOutput: new(big.Int).Set(p.adjustedOutput),
	}
	if len(p.fills) == 0 || p.input.Cmp(p.targetInput) <= 0 {
		return size
	}

	last := p.fills[len(p.fills)-1]
	excess := new(big.Int).Sub(p.input, p.targetInput)
	if excess.Cmp(last.Input) > 0 {
		excess = last.Input
	}
	clippedOff := new(big.Int).Mul(last.Output, excess)
	clippedOff.Div(clippedOff, last.Input)

	size.input.Set(p.targetInput)
	size.output.Sub(size.output, clippedOff)
	size.adjustedOutput.Sub(size.adjustedOutput, clippedOff)
	return size
}

// IsBetterThan compares two candidate paths for the same request.
// overheadPenalty is the flat settlement overhead in output-token units,
// charged once to any non-empty path. A path that fills more of the target
// always wins; between two paths filling the same amount, the better
// adjusted rate wins.
func (p *Path) IsBetterThan(other *Path, overheadPenalty *big.Int) bool {
	if other == nil {
		return true
	}
	a := p.clippedSize()
	b := other.clippedSize()
	aAdj := applyOverhead(p.side, a.adjustedOutput, overheadPenalty, len(p.fills))
	bAdj := applyOverhead(p.side, b.adjustedOutput, overheadPenalty, len(other.fills))

	if cmp := a.input.Cmp(b.input); cmp != 0 &&
		(a.input.Cmp(p.targetInput) < 0 || b.input.Cmp(p.targetInput) < 0) {
		return cmp > 0
	}
	return compareRates(p.side, aAdj, a.input, bAdj, b.input) > 0
}

func applyOverhead(side domain.Side, adjusted, overheadPenalty *big.Int, numFills int) *big.Int {
	if numFills == 0 || overheadPenalty == nil || overheadPenalty.Sign() == 0 {
		return adjusted
	}
	return AdjustOutput(side, adjusted, overheadPenalty)
}

// compareRates compares out/in value ratios without division. Positive means
// A is better for the side: selling wants more output per input, buying
// wants less input spent per unit bought.
func compareRates(side domain.Side, outA, inA, outB, inB *big.Int) int {
	if inA.Sign() == 0 || inB.Sign() == 0 {
		switch {
		case inA.Sign() == 0 && inB.Sign() == 0:
			return 0
		case inA.Sign() == 0:
			return -1
		default:
			return 1
		}
	}
	left := new(big.Int).Mul(outA, inB)
	right := new(big.Int).Mul(outB, inA)
	cmp := left.Cmp(right)
	if side == domain.SideBuy {
		cmp = -cmp
	}
	return cmp
}
