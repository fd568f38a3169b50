package router

import (
	"container/heap"
	"math/big"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// DefaultTiePriority orders fills of exactly equal marginal price. RFQ and
// OTC settle cheaper or gasless relative to AMMs for equal price, limit
// orders next; anything unlisted ranks last in listed order.
var DefaultTiePriority = []string{
	domain.OrderTypeRFQ.String(),
	domain.OrderTypeOTC.String(),
	domain.OrderTypeLimit.String(),
}

// Liquidity is everything the optimizer allocates over for one request.
type Liquidity struct {
	// SourceCurves holds one ascending cumulative fill ladder per source.
	SourceCurves [][]*domain.Fill
	// NativeFills are resolved orders, one divisible fill each.
	NativeFills []*domain.Fill
	// TwoHopFills are composed routes quoted at the full amount. They
	// compete as single-path candidates only.
	TwoHopFills []*domain.Fill
}

// Optimizer allocates a requested amount across source curves at the best
// gas-adjusted value.
type Optimizer struct {
	rank        map[string]int
	overheadGas uint64
}

func NewOptimizer(tiePriority []string, exchangeOverheadGas uint64) *Optimizer {
	if len(tiePriority) == 0 {
		tiePriority = DefaultTiePriority
	}
	rank := make(map[string]int, len(tiePriority))
	for i, label := range tiePriority {
		rank[label] = i
	}
	return &Optimizer{rank: rank, overheadGas: exchangeOverheadGas}
}

func (o *Optimizer) ID() string {
	return "path-optimizer"
}

func (o *Optimizer) tieRank(f *domain.Fill) int {
	label := string(f.Source)
	if f.Source == domain.SourceNative {
		label = f.OrderType.String()
	}
	if r, ok := o.rank[label]; ok {
		return r
	}
	return len(o.rank)
}

// FindBestPath returns the best path for the request. With allowSplit the
// greedy marginal allocation runs and its result still has to beat every
// single-source candidate; without it only single-path candidates compete.
// Only when every candidate yields zero output does the request fail with
// ErrNoLiquidityAvailable. A partial path with an explicit shortfall is a
// valid result.
func (o *Optimizer) FindBestPath(
	side domain.Side,
	targetInput *big.Int,
	liq Liquidity,
	conv PenaltyConverter,
	allowSplit bool,
) (*Path, error) {
	if targetInput == nil || targetInput.Sign() <= 0 {
		return nil, common.ErrNoLiquidityAvailable
	}

	candidates := o.singlePathCandidates(side, targetInput, liq)
	if allowSplit {
		if p := o.splitPath(side, targetInput, liq); p != nil {
			candidates = append(candidates, p)
		}
	}
	overheadPenalty := conv.OutputPenalty(o.overheadGas, targetInput, representativeOutput(candidates))

	var best *Path
	for _, p := range candidates {
		if p == nil || len(p.Fills()) == 0 || p.Output().Sign() <= 0 {
			continue
		}
		if best == nil || p.IsBetterThan(best, overheadPenalty) {
			best = p
		}
	}

	if best == nil {
		return nil, common.ErrNoLiquidityAvailable
	}
	return best, nil
}

// representativeOutput picks the largest candidate output as the exchange
// rate reference for converting the flat overhead. Without it the overhead
// would vanish whenever only an input-side reference price is configured,
// while per-fill penalties still apply.
func representativeOutput(candidates []*Path) *big.Int {
	out := big.NewInt(0)
	for _, p := range candidates {
		if p != nil && p.Output().Cmp(out) > 0 {
			out = p.Output()
		}
	}
	return out
}

// singlePathCandidates builds one path per source at the full amount: the
// cheapest complete rung of each curve (or its deepest rung when the curve
// cannot cover the target), every native order alone, and every two-hop
// composite.
func (o *Optimizer) singlePathCandidates(side domain.Side, targetInput *big.Int, liq Liquidity) []*Path {
	paths := make([]*Path, 0, len(liq.SourceCurves)+len(liq.NativeFills)+len(liq.TwoHopFills))

	for _, curve := range liq.SourceCurves {
		var pick *domain.Fill
		for _, f := range curve {
			pick = f
			if f.Input.Cmp(targetInput) >= 0 {
				break
			}
		}
		if pick == nil {
			continue
		}
		p := NewPath(side, targetInput)
		p.Append(pick.Clone())
		paths = append(paths, p)
	}
	for _, f := range liq.NativeFills {
		p := NewPath(side, targetInput)
		p.Append(f.Clone())
		paths = append(paths, p)
	}
	for _, f := range liq.TwoHopFills {
		p := NewPath(side, targetInput)
		p.Append(f.Clone())
		paths = append(paths, p)
	}
	return paths
}

// splitPath runs the greedy marginal allocation: every curve becomes a run
// of marginal segments, native orders one divisible segment each, and the
// next-best marginal unit across all cursors is taken until the target is
// exhausted or liquidity runs out. Under the per-source monotonicity
// invariant this merge is optimal.
func (o *Optimizer) splitPath(side domain.Side, targetInput *big.Int, liq Liquidity) *Path {
	h := &cursorHeap{side: side}
	seq := 0
	for _, curve := range liq.SourceCurves {
		if c := newCurveCursor(curve, o.tieRank, seq); c != nil {
			h.items = append(h.items, c)
			seq++
		}
	}
	for _, f := range liq.NativeFills {
		if c := newOrderCursor(f, o.tieRank(f), seq); c != nil {
			h.items = append(h.items, c)
			seq++
		}
	}
	if len(h.items) == 0 {
		return nil
	}
	heap.Init(h)

	remaining := new(big.Int).Set(targetInput)
	var used []*cursor
	for remaining.Sign() > 0 && h.Len() > 0 {
		c := h.items[0]
		seg := c.current()

		take := seg.dIn
		if take.Cmp(remaining) > 0 {
			take = remaining
		}
		c.take(take)
		if !c.usedMark {
			c.usedMark = true
			used = append(used, c)
		}
		remaining.Sub(remaining, take)

		if take.Cmp(seg.dIn) < 0 || !c.advance() {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}

	path := NewPath(side, targetInput)
	for _, c := range used {
		if f := c.takenFill(); f != nil {
			path.Append(f)
		}
	}
	return path
}

// segment is one marginal step of a source's gas-adjusted curve.
type segment struct {
	dIn  *big.Int
	dOut *big.Int
	dAdj *big.Int
}

// cursor walks one source's segments in order. Taking part of a segment
// scales its output linearly; a partially taken segment cannot be resumed,
// which keeps the no-extrapolation invariant intact.
type cursor struct {
	segments []segment
	fills    []*domain.Fill // curve point each segment ends at
	idx      int
	rank     int
	seq      int

	takenIn  *big.Int
	takenOut *big.Int
	takenAdj *big.Int
	usedMark bool
	lastFill *domain.Fill
}

func newCurveCursor(curve []*domain.Fill, rankOf func(*domain.Fill) int, seq int) *cursor {
	c := &cursor{
		seq:      seq,
		takenIn:  big.NewInt(0),
		takenOut: big.NewInt(0),
		takenAdj: big.NewInt(0),
	}
	prevIn, prevOut, prevAdj := big.NewInt(0), big.NewInt(0), big.NewInt(0)
	for _, f := range curve {
		dIn := new(big.Int).Sub(f.Input, prevIn)
		if dIn.Sign() <= 0 {
			continue
		}
		c.segments = append(c.segments, segment{
			dIn:  dIn,
			dOut: new(big.Int).Sub(f.Output, prevOut),
			dAdj: new(big.Int).Sub(f.AdjustedOutput, prevAdj),
		})
		c.fills = append(c.fills, f)
		prevIn, prevOut, prevAdj = f.Input, f.Output, f.AdjustedOutput
	}
	if len(c.segments) == 0 {
		return nil
	}
	c.rank = rankOf(c.fills[0])
	return c
}

func newOrderCursor(f *domain.Fill, rank, seq int) *cursor {
	if f.Input.Sign() <= 0 {
		return nil
	}
	return &cursor{
		segments: []segment{{dIn: f.Input, dOut: f.Output, dAdj: f.AdjustedOutput}},
		fills:    []*domain.Fill{f},
		rank:     rank,
		seq:      seq,
		takenIn:  big.NewInt(0),
		takenOut: big.NewInt(0),
		takenAdj: big.NewInt(0),
	}
}

func (c *cursor) current() segment {
	return c.segments[c.idx]
}

func (c *cursor) take(amount *big.Int) {
	seg := c.current()
	c.takenIn.Add(c.takenIn, amount)
	if amount.Cmp(seg.dIn) >= 0 {
		c.takenOut.Add(c.takenOut, seg.dOut)
		c.takenAdj.Add(c.takenAdj, seg.dAdj)
	} else {
		part := new(big.Int).Mul(seg.dOut, amount)
		c.takenOut.Add(c.takenOut, part.Div(part, seg.dIn))
		part = new(big.Int).Mul(seg.dAdj, amount)
		c.takenAdj.Add(c.takenAdj, part.Div(part, seg.dIn))
	}
	c.lastFill = c.fills[c.idx]
}

func (c *cursor) advance() bool {
	c.idx++
	return c.idx < len(c.segments)
}

// takenFill collapses everything taken from this cursor into one fill. The
// fill data and gas come from the deepest rung reached, which is the rung
// whose replay data covers the taken size.
func (c *cursor) takenFill() *domain.Fill {
	if c.takenIn.Sign() <= 0 || c.lastFill == nil {
		return nil
	}
	return &domain.Fill{
		Source:         c.lastFill.Source,
		OrderType:      c.lastFill.OrderType,
		Input:          new(big.Int).Set(c.takenIn),
		Output:         new(big.Int).Set(c.takenOut),
		AdjustedOutput: new(big.Int).Set(c.takenAdj),
		FillData:       c.lastFill.FillData,
		Gas:            c.lastFill.Gas,
	}
}

// cursorHeap orders cursors by the marginal rate of their current segment,
// best first. Exactly equal rates fall back to the configured priority rank,
// then to insertion order so allocation is deterministic.
type cursorHeap struct {
	side  domain.Side
	items []*cursor
}

func (h *cursorHeap) Len() int { return len(h.items) }

func (h *cursorHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	segA, segB := a.current(), b.current()
	if cmp := compareRates(h.side, segA.dAdj, segA.dIn, segB.dAdj, segB.dIn); cmp != 0 {
		return cmp > 0
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.seq < b.seq
}

func (h *cursorHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *cursorHeap) Push(x any) {
	h.items = append(h.items, x.(*cursor))
}

func (h *cursorHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
