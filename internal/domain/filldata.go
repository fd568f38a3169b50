package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FillKind discriminates the FillData union. The switch over FillKind in
// consumers must be exhaustive; there is no catch-all variant.
type FillKind uint8

const (
	FillKindAMM FillKind = iota
	FillKindTickPath
	FillKindMultiHop
	FillKindNative
)

func (k FillKind) String() string {
	switch k {
	case FillKindAMM:
		return "AMM"
	case FillKindTickPath:
		return "TickPath"
	case FillKindMultiHop:
		return "MultiHop"
	case FillKindNative:
		return "Native"
	default:
		return "UNKNOWN"
	}
}

// FillData carries the source-specific replay data of a sample or fill.
// It is a sealed union: only the types in this file implement it.
type FillData interface {
	Kind() FillKind
}

// AMMFillData replays a single-hop swap through a constant-product router.
type AMMFillData struct {
	Router    common.Address   `json:"router"`
	TokenPath []common.Address `json:"tokenAddressPath"`
}

func (AMMFillData) Kind() FillKind { return FillKindAMM }

// PathAmount is one quoted route through a concentrated-liquidity source at
// one input amount. Path is an opaque per-source route identifier used only
// for replay, never for comparison.
type PathAmount struct {
	Path        []byte   `json:"path"`
	InputAmount *big.Int `json:"inputAmount"`
	GasUsed     uint64   `json:"gasUsed"`
}

// TickPathFillData replays a swap through one fee-tier/tick path of a
// concentrated-liquidity source.
type TickPathFillData struct {
	Router      common.Address   `json:"router"`
	Quoter      common.Address   `json:"quoter"`
	TokenPath   []common.Address `json:"tokenAddressPath"`
	PathAmounts []PathAmount     `json:"pathAmounts"`
}

func (TickPathFillData) Kind() FillKind { return FillKindTickPath }

// MultiHopFillData composes two child quotes through an intermediate token.
// The hop indices record which candidate won each hop for replay.
type MultiHopFillData struct {
	FirstHopSource     Source         `json:"firstHopSource"`
	FirstHopData       FillData       `json:"firstHopFillData"`
	SecondHopSource    Source         `json:"secondHopSource"`
	SecondHopData      FillData       `json:"secondHopFillData"`
	IntermediateToken  common.Address `json:"intermediateToken"`
	IntermediateAmount *big.Int       `json:"intermediateAmount"`
	FirstHopIndex      int            `json:"firstHopIndex"`
	SecondHopIndex     int            `json:"secondHopIndex"`
}

func (MultiHopFillData) Kind() FillKind { return FillKindMultiHop }

// NativeFillData wraps a signed RFQ/limit/OTC order chosen for execution.
type NativeFillData struct {
	Order SignedNativeOrder `json:"order"`
	// MakerURI is set for RFQ orders fetched from a market maker endpoint.
	MakerURI string `json:"makerUri,omitempty"`
}

func (NativeFillData) Kind() FillKind { return FillKindNative }
