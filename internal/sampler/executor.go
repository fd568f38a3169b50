package sampler

import (
	"context"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/0xProject/protocol-sub016/internal/chain"
	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/metrics"
)

// Executor runs sampling operation trees against the sampler contract. Each
// top-level operation becomes one eth_call; all of them travel in a single
// JSON-RPC batch. Sub-call failures degrade to zero samples, so only a
// transport or protocol failure surfaces as an error.
type Executor struct {
	client  chain.Caller
	sampler ethcommon.Address
}

func NewExecutor(client chain.Caller, sampler ethcommon.Address) (*Executor, error) {
	if sampler == common.ZeroAddress {
		return nil, fmt.Errorf("sampler contract: address is unset")
	}
	return &Executor{client: client, sampler: sampler}, nil
}

func (e *Executor) ID() string {
	return "sampler-executor"
}

// Execute encodes every operation, issues one batched RPC round trip and
// routes each result back to the operation that produced the call, in order.
func (e *Executor) Execute(ctx context.Context, ops ...Operation) error {
	if len(ops) == 0 {
		return nil
	}

	calls := make([]chain.Call, len(ops))
	for i, op := range ops {
		data, err := op.EncodeCall()
		if err != nil {
			return fmt.Errorf("encode operation %d: %w", i, err)
		}
		calls[i] = chain.Call{To: e.sampler, Data: data}
	}

	started := time.Now()
	results, err := e.client.BatchCall(ctx, calls)
	metrics.SamplerBatchDuration.Observe(time.Since(started).Seconds())
	metrics.SamplerSubCalls.Observe(float64(len(calls)))
	if err != nil {
		return fmt.Errorf("sampler batch call: %w", err)
	}
	if len(results) != len(ops) {
		return fmt.Errorf("sampler batch returned %d results for %d calls", len(results), len(ops))
	}

	for i, res := range results {
		if res == nil {
			log.Debug().Int("operation", i).Msg("sampler sub-call reverted")
			ops[i].HandleRevert(nil)
			continue
		}
		if err := ops[i].HandleResult(res); err != nil {
			log.Debug().Int("operation", i).Err(err).Msg("sampler result decode failed")
			ops[i].HandleRevert(res)
		}
	}
	return nil
}
