package orders

import (
	"context"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

// OrderStatus is the on-chain lifecycle state of a native order.
type OrderStatus uint8

const (
	StatusFillable OrderStatus = iota
	StatusExpired
	StatusFilled
	StatusCancelled
	StatusInvalidSignature
)

// OrderState is the per-order on-chain snapshot the resolver scales fillable
// amounts from.
type OrderState struct {
	Status OrderStatus
	// TakerFilledAmount is how much of the taker side has been filled.
	TakerFilledAmount *big.Int
	// MakerAvailable is min(maker balance, maker allowance) of the maker
	// token, the hard ceiling on what the maker can deliver.
	MakerAvailable *big.Int
}

// StateReader fetches order states in one round trip. The chain-backed
// implementation lives in this package; tests substitute a canned one.
type StateReader interface {
	ReadStates(ctx context.Context, orders []domain.SignedNativeOrder) ([]OrderState, error)
}

// Resolver computes fillable taker and maker amounts for a batch of signed
// orders. Unfillable orders come back with zero amounts rather than being
// dropped, so the quote report can still account for them.
type Resolver struct {
	reader     StateReader
	chainID    uint64
	settlement ethcommon.Address
	now        func() time.Time
}

func NewResolver(reader StateReader, chainID uint64, settlement ethcommon.Address) *Resolver {
	return &Resolver{
		reader:     reader,
		chainID:    chainID,
		settlement: settlement,
		now:        time.Now,
	}
}

func (r *Resolver) ID() string {
	return "order-resolver"
}

// Resolve returns one entry per input order, in order. The fillable taker
// amount is the smaller of what remains unfilled and what the maker can
// cover; the maker amount scales linearly at the order's own price.
func (r *Resolver) Resolve(ctx context.Context, signed []domain.SignedNativeOrder) ([]domain.NativeOrderWithFillableAmounts, error) {
	if len(signed) == 0 {
		return nil, nil
	}

	states, err := r.reader.ReadStates(ctx, signed)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.NativeOrderWithFillableAmounts, len(signed))
	nowUnix := uint64(r.now().Unix())
	for i, o := range signed {
		resolved[i] = domain.NativeOrderWithFillableAmounts{
			SignedNativeOrder:   o,
			FillableTakerAmount: big.NewInt(0),
			FillableMakerAmount: big.NewInt(0),
		}

		if !orderWellFormed(o.Order) {
			continue
		}
		if o.Order.Expiry <= nowUnix {
			continue
		}
		if states[i].Status != StatusFillable {
			continue
		}
		if !VerifyOrderSignature(r.chainID, r.settlement, o) {
			log.Debug().Str("maker", o.Order.Maker.Hex()).Msg("order signature does not recover to maker")
			continue
		}

		taker, maker := fillableAmounts(o.Order, states[i])
		resolved[i].FillableTakerAmount = taker
		resolved[i].FillableMakerAmount = maker
	}
	return resolved, nil
}

func orderWellFormed(o domain.NativeOrder) bool {
	return o.MakerAmount != nil && o.MakerAmount.Sign() > 0 &&
		o.TakerAmount != nil && o.TakerAmount.Sign() > 0
}

func fillableAmounts(o domain.NativeOrder, state OrderState) (taker, maker *big.Int) {
	remaining := new(big.Int).Set(o.TakerAmount)
	if state.TakerFilledAmount != nil {
		remaining.Sub(remaining, state.TakerFilledAmount)
	}
	if remaining.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}

	// Maker inventory expressed in taker units at the order's price.
	available := big.NewInt(0)
	if state.MakerAvailable != nil && state.MakerAvailable.Sign() > 0 {
		available = new(big.Int).Mul(state.MakerAvailable, o.TakerAmount)
		available.Div(available, o.MakerAmount)
	}

	taker = remaining
	if available.Cmp(remaining) < 0 {
		taker = available
	}
	if taker.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}

	maker = new(big.Int).Mul(taker, o.MakerAmount)
	maker.Div(maker, o.TakerAmount)
	return taker, maker
}
