package sampler

import (
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Operation is one node of the batched sampling tree. Encoding happens
// bottom-up before the eth_call; decoding happens top-down afterwards, each
// node consuming exactly the result of its own encoded call.
type Operation interface {
	// EncodeCall returns the calldata for this node's sub-call against the
	// sampler contract.
	EncodeCall() ([]byte, error)
	// HandleResult consumes this node's successful return data.
	HandleResult(data []byte) error
	// HandleRevert records this node's sub-call failure. Failures are
	// isolated: the node yields zero samples and siblings are unaffected.
	HandleRevert(data []byte)
}

// SourceQuoteOperation is a leaf operation that samples one liquidity source
// at a ladder of amounts.
type SourceQuoteOperation interface {
	Operation
	Source() domain.Source
	// Samples returns the truncated, nondecreasing sample curve collected by
	// HandleResult. Empty until results arrive, or after a revert.
	Samples() []domain.DexSample
}
