package sampler

import (
	"fmt"
)

// BatchOperation groups child operations into one batchCall sub-call. Batches
// nest: a child may itself be a BatchOperation, which is how one eth_call
// carries a whole sampling tree.
type BatchOperation struct {
	children []Operation
}

func NewBatchOperation(children ...Operation) *BatchOperation {
	return &BatchOperation{children: children}
}

func (b *BatchOperation) EncodeCall() ([]byte, error) {
	callDatas := make([][]byte, len(b.children))
	for i, child := range b.children {
		data, err := child.EncodeCall()
		if err != nil {
			return nil, fmt.Errorf("encode child %d: %w", i, err)
		}
		callDatas[i] = data
	}
	return samplerABI.Pack("batchCall", callDatas)
}

// HandleResult decodes the batchCall results and dispatches each slot to the
// child that produced the matching calldata. Result order is the call order;
// a count mismatch means the response cannot be trusted at all.
func (b *BatchOperation) HandleResult(data []byte) error {
	results, err := unpackBatchCallResults(data)
	if err != nil {
		return fmt.Errorf("decode batchCall results: %w", err)
	}
	if len(results) != len(b.children) {
		return fmt.Errorf("batchCall returned %d results for %d calls", len(results), len(b.children))
	}
	for i, res := range results {
		if !res.Success {
			b.children[i].HandleRevert(res.Data)
			continue
		}
		if err := b.children[i].HandleResult(res.Data); err != nil {
			// A child that cannot decode its own result degrades to zero
			// samples rather than poisoning its siblings.
			b.children[i].HandleRevert(res.Data)
		}
	}
	return nil
}

func (b *BatchOperation) HandleRevert(data []byte) {
	for _, child := range b.children {
		child.HandleRevert(data)
	}
}
