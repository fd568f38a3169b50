package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderType is the settlement sub-type of a native order. OTC orders settle
// through a cheaper path than limit/RFQ orders and carry a lower gas
// estimate.
type OrderType uint8

const (
	OrderTypeBridge OrderType = iota
	OrderTypeLimit
	OrderTypeRFQ
	OrderTypeOTC
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeBridge:
		return "Bridge"
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeRFQ:
		return "Rfq"
	case OrderTypeOTC:
		return "Otc"
	default:
		return "UNKNOWN"
	}
}

// Signature is a 65-byte ECDSA order signature split into its components.
type Signature struct {
	V uint8       `json:"v"`
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
}

// IsEmpty reports whether the signature is all zeroes.
func (s Signature) IsEmpty() bool {
	return s.V == 0 && s.R == (common.Hash{}) && s.S == (common.Hash{})
}

// NativeOrder is a privately negotiated, signed order from a maker. Amounts
// are the full order size; fillable amounts are resolved separately against
// on-chain state.
type NativeOrder struct {
	MakerToken  common.Address `json:"makerToken"`
	TakerToken  common.Address `json:"takerToken"`
	MakerAmount *big.Int       `json:"makerAmount"`
	TakerAmount *big.Int       `json:"takerAmount"`
	Maker       common.Address `json:"maker"`
	Taker       common.Address `json:"taker"`
	Expiry      uint64         `json:"expiry"`
	Salt        *big.Int       `json:"salt"`
}

// SignedNativeOrder pairs an order with its signature and sub-type.
type SignedNativeOrder struct {
	Order     NativeOrder `json:"order"`
	Signature Signature   `json:"signature"`
	Type      OrderType   `json:"type"`
}

// NativeOrderWithFillableAmounts is the resolver's output: the order plus
// how much of it is actually fillable given maker balance, allowance and
// on-chain status. Zero fillable amounts are a valid outcome, not an error.
type NativeOrderWithFillableAmounts struct {
	SignedNativeOrder
	FillableTakerAmount *big.Int `json:"fillableTakerAmount"`
	FillableMakerAmount *big.Int `json:"fillableMakerAmount"`
	// MakerURI is the RFQ maker endpoint the order came from, if any.
	MakerURI string `json:"makerUri,omitempty"`
}

// IsFillable reports whether any fillable size remains.
func (o *NativeOrderWithFillableAmounts) IsFillable() bool {
	return o.FillableTakerAmount != nil && o.FillableTakerAmount.Sign() > 0 &&
		o.FillableMakerAmount != nil && o.FillableMakerAmount.Sign() > 0
}

// IndicativeQuote is a non-firm RFQ price level. It is treated as fully
// fillable up to its quoted size for quoting purposes only and is never part
// of a deliverable path.
type IndicativeQuote struct {
	MakerToken  common.Address `json:"makerToken"`
	TakerToken  common.Address `json:"takerToken"`
	MakerAmount *big.Int       `json:"makerAmount"`
	TakerAmount *big.Int       `json:"takerAmount"`
	MakerURI    string         `json:"makerUri"`
	Expiry      uint64         `json:"expiry"`
}
