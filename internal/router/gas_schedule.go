package router

import (
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Gas cost constants per source family. Tick-based sources carry a measured
// per-path cost on top of a fixed base. Limit orders pay the protocol fee on
// top of the base settlement cost; OTC settlement skips the fee and most of
// the order bookkeeping, which is why it is materially cheaper.
const (
	gasConstantProductSwap = 90_000
	gasTickBaseSwap        = 34_000
	gasMultiHopOverhead    = 30_000

	gasLimitOrder  = 170_000 // 100k settlement + 70k protocol fee
	gasRFQOrder    = 100_000
	gasOTCOrder    = 85_000
	gasBridgeOrder = 100_000
)

// GasSchedule estimates settlement gas per fill, keyed by source for
// on-chain fills and by order sub-type for native ones.
type GasSchedule struct {
	overrides map[domain.Source]uint64
}

func DefaultGasSchedule() *GasSchedule {
	return &GasSchedule{}
}

// WithOverride replaces the flat estimate for a source.
func (g *GasSchedule) WithOverride(source domain.Source, gas uint64) *GasSchedule {
	if g.overrides == nil {
		g.overrides = make(map[domain.Source]uint64)
	}
	g.overrides[source] = gas
	return g
}

// ForFillData estimates gas for one fill of the given source. Tick-path
// fills add the quoter's measured gas per path to the fixed base; multi-hop
// recurses into both children and adds the composition overhead.
func (g *GasSchedule) ForFillData(source domain.Source, fd domain.FillData) uint64 {
	switch data := fd.(type) {
	case domain.TickPathFillData:
		gas := uint64(gasTickBaseSwap)
		for _, pa := range data.PathAmounts {
			gas += pa.GasUsed
		}
		return gas
	case domain.MultiHopFillData:
		return g.ForFillData(data.FirstHopSource, data.FirstHopData) +
			g.ForFillData(data.SecondHopSource, data.SecondHopData) +
			gasMultiHopOverhead
	case domain.NativeFillData:
		return g.ForOrderType(data.Order.Type)
	default:
		if gas, ok := g.overrides[source]; ok {
			return gas
		}
		return gasConstantProductSwap
	}
}

// ForOrderType estimates gas for settling a native order.
func (g *GasSchedule) ForOrderType(t domain.OrderType) uint64 {
	switch t {
	case domain.OrderTypeLimit:
		return gasLimitOrder
	case domain.OrderTypeRFQ:
		return gasRFQOrder
	case domain.OrderTypeOTC:
		return gasOTCOrder
	default:
		return gasBridgeOrder
	}
}
