package aggregator

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/router"
	"github.com/0xProject/protocol-sub016/internal/sampler"
)

// sampleTwoHop composes routes through each configured intermediate token.
// Selling picks max-then-max going forward; buying picks min-then-min going
// backward. Either way the winning candidate index of each hop is recorded
// in the fill data for replay, with ties broken by the first candidate to
// reach the extremum.
func (svc *Service) sampleTwoHop(
	ctx context.Context,
	pair domain.TokenPair,
	side domain.Side,
	amount *big.Int,
) ([]domain.DexSample, error) {
	intermediates := svc.registry.IntermediateTokens(pair)
	if len(intermediates) == 0 {
		return nil, nil
	}
	if side == domain.SideSell {
		return svc.composeTwoHop(ctx, pair.SellToken, pair.BuyToken, intermediates, amount, domain.SideSell)
	}
	return svc.composeTwoHop(ctx, pair.SellToken, pair.BuyToken, intermediates, amount, domain.SideBuy)
}

// hopLeg is one executed hop round for one intermediate token.
type hopLeg struct {
	ops     []sampler.SourceQuoteOperation
	winner  int
	values  []*big.Int
	fillers []domain.FillData
}

func (svc *Service) composeTwoHop(
	ctx context.Context,
	sellToken, buyToken ethcommon.Address,
	intermediates []ethcommon.Address,
	amount *big.Int,
	side domain.Side,
) ([]domain.DexSample, error) {
	// Selling evaluates the first hop first at the full sell amount; buying
	// starts from the second hop at the full buy amount and works backward.
	pickMax := side == domain.SideSell

	legA := make([]*hopLeg, len(intermediates))
	batch := make([]sampler.Operation, 0, len(intermediates))
	for i, mid := range intermediates {
		from, to := sellToken, mid
		if side == domain.SideBuy {
			from, to = mid, buyToken
		}
		ops, err := svc.registry.HopOperations(from, to, side, []*big.Int{amount})
		if err != nil {
			return nil, err
		}
		legA[i] = &hopLeg{ops: ops}
		for _, op := range ops {
			batch = append(batch, op)
		}
	}
	if err := svc.executor.Execute(ctx, batch...); err != nil {
		return nil, err
	}
	for _, leg := range legA {
		leg.resolve(pickMax)
	}

	// Second round: for each intermediate with a usable first round, run the
	// remaining hop at the amount the first round produced (or requires).
	legB := make([]*hopLeg, len(intermediates))
	batch = batch[:0]
	for i, mid := range intermediates {
		if legA[i].winner < 0 {
			continue
		}
		midAmount := legA[i].values[legA[i].winner]
		from, to := mid, buyToken
		if side == domain.SideBuy {
			from, to = sellToken, mid
		}
		ops, err := svc.registry.HopOperations(from, to, side, []*big.Int{midAmount})
		if err != nil {
			return nil, err
		}
		legB[i] = &hopLeg{ops: ops}
		for _, op := range ops {
			batch = append(batch, op)
		}
	}
	if len(batch) > 0 {
		if err := svc.executor.Execute(ctx, batch...); err != nil {
			return nil, err
		}
	}

	var samples []domain.DexSample
	for i, mid := range intermediates {
		if legB[i] == nil {
			continue
		}
		legB[i].resolve(pickMax)
		if legB[i].winner < 0 {
			continue
		}

		a, b := legA[i], legB[i]
		fillData := domain.MultiHopFillData{
			IntermediateToken:  mid,
			IntermediateAmount: a.values[a.winner],
		}
		if side == domain.SideSell {
			fillData.FirstHopSource = a.ops[a.winner].Source()
			fillData.FirstHopData = a.fillers[a.winner]
			fillData.FirstHopIndex = a.winner
			fillData.SecondHopSource = b.ops[b.winner].Source()
			fillData.SecondHopData = b.fillers[b.winner]
			fillData.SecondHopIndex = b.winner
		} else {
			fillData.FirstHopSource = b.ops[b.winner].Source()
			fillData.FirstHopData = b.fillers[b.winner]
			fillData.FirstHopIndex = b.winner
			fillData.SecondHopSource = a.ops[a.winner].Source()
			fillData.SecondHopData = a.fillers[a.winner]
			fillData.SecondHopIndex = a.winner
		}

		samples = append(samples, domain.DexSample{
			Source:   domain.SourceMultiHop,
			Input:    amount,
			Output:   b.values[b.winner],
			FillData: fillData,
		})
	}
	return samples, nil
}

// resolve extracts each candidate's quoted value and selects the winner.
func (l *hopLeg) resolve(pickMax bool) {
	l.values = make([]*big.Int, len(l.ops))
	l.fillers = make([]domain.FillData, len(l.ops))
	for i, op := range l.ops {
		s := op.Samples()
		if len(s) == 0 {
			continue
		}
		last := s[len(s)-1]
		l.values[i] = last.Output
		l.fillers[i] = last.FillData
	}
	l.winner = router.SelectBestCandidate(l.values, pickMax)
}
