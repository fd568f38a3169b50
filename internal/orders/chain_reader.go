package orders

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/chain"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

const erc20ABIJSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const settlementABIJSON = `[
  {"type":"function","name":"getTakerTokenFilledAmount","stateMutability":"view",
   "inputs":[{"name":"orderHash","type":"bytes32"}],
   "outputs":[{"name":"filledAmount","type":"uint256"}]}
]`

var (
	erc20ABI      = mustParseABI(erc20ABIJSON)
	settlementABI = mustParseABI(settlementABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ChainStateReader reads maker balance, allowance and filled amount for each
// order in one JSON-RPC batch. A failed sub-call degrades that order to an
// unfillable state instead of failing the whole batch.
type ChainStateReader struct {
	client     chain.Caller
	chainID    uint64
	settlement ethcommon.Address
}

func NewChainStateReader(client chain.Caller, chainID uint64, settlement ethcommon.Address) *ChainStateReader {
	return &ChainStateReader{client: client, chainID: chainID, settlement: settlement}
}

const callsPerOrder = 3

func (r *ChainStateReader) ReadStates(ctx context.Context, orders []domain.SignedNativeOrder) ([]OrderState, error) {
	calls := make([]chain.Call, 0, len(orders)*callsPerOrder)
	for _, o := range orders {
		balanceData, _ := erc20ABI.Pack("balanceOf", o.Order.Maker)
		allowanceData, _ := erc20ABI.Pack("allowance", o.Order.Maker, r.settlement)
		filledData, _ := settlementABI.Pack("getTakerTokenFilledAmount", OrderHash(r.chainID, r.settlement, o.Order))

		calls = append(calls,
			chain.Call{To: o.Order.MakerToken, Data: balanceData},
			chain.Call{To: o.Order.MakerToken, Data: allowanceData},
			chain.Call{To: r.settlement, Data: filledData},
		)
	}

	results, err := r.client.BatchCall(ctx, calls)
	if err != nil {
		return nil, err
	}

	states := make([]OrderState, len(orders))
	for i := range orders {
		base := i * callsPerOrder
		balance := decodeUint256(erc20ABI, "balanceOf", results[base])
		allowance := decodeUint256(erc20ABI, "allowance", results[base+1])
		filled := decodeUint256(settlementABI, "getTakerTokenFilledAmount", results[base+2])

		if balance == nil || allowance == nil {
			states[i] = OrderState{Status: StatusCancelled}
			continue
		}
		available := balance
		if allowance.Cmp(balance) < 0 {
			available = allowance
		}
		if filled == nil {
			filled = big.NewInt(0)
		}
		states[i] = OrderState{
			Status:            StatusFillable,
			TakerFilledAmount: filled,
			MakerAvailable:    available,
		}
	}
	return states, nil
}

func decodeUint256(parsed abi.ABI, method string, data []byte) *big.Int {
	if data == nil {
		return nil
	}
	out, err := parsed.Unpack(method, data)
	if err != nil || len(out) == 0 {
		return nil
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil
	}
	return value
}
