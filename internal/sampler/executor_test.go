package sampler

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/chain"
)

// fakeCaller serves canned batch results keyed by call index.
type fakeCaller struct {
	results  [][]byte
	err      error
	gotCalls []chain.Call
}

func (f *fakeCaller) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCaller) BatchCall(_ context.Context, calls []chain.Call) ([][]byte, error) {
	f.gotCalls = calls
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// stubOp records how the executor routed its slot.
type stubOp struct {
	calldata  []byte
	encodeErr error

	gotResult []byte
	resultErr error
	reverted  bool
}

func (s *stubOp) EncodeCall() ([]byte, error) {
	return s.calldata, s.encodeErr
}

func (s *stubOp) HandleResult(data []byte) error {
	s.gotResult = data
	return s.resultErr
}

func (s *stubOp) HandleRevert([]byte) {
	s.reverted = true
}

func TestNewExecutorRejectsZeroAddress(t *testing.T) {
	if _, err := NewExecutor(&fakeCaller{}, ethcommon.Address{}); err == nil {
		t.Fatal("expected error for zero sampler address")
	}
}

func TestExecutorRoutesResultsInOrder(t *testing.T) {
	ops := []*stubOp{
		{calldata: []byte{0x01}},
		{calldata: []byte{0x02}},
		{calldata: []byte{0x03}},
	}
	caller := &fakeCaller{results: [][]byte{{0xa1}, {0xa2}, {0xa3}}}
	exec, err := NewExecutor(caller, ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"))
	if err != nil {
		t.Fatal(err)
	}

	if err := exec.Execute(context.Background(), ops[0], ops[1], ops[2]); err != nil {
		t.Fatal(err)
	}

	if len(caller.gotCalls) != 3 {
		t.Fatalf("issued %d calls, want 3", len(caller.gotCalls))
	}
	for i, op := range ops {
		if caller.gotCalls[i].Data[0] != op.calldata[0] {
			t.Errorf("call %d carried calldata %x, want %x", i, caller.gotCalls[i].Data, op.calldata)
		}
		if op.gotResult == nil || op.gotResult[0] != caller.results[i][0] {
			t.Errorf("op %d received %x, want %x", i, op.gotResult, caller.results[i])
		}
	}
}

func TestExecutorIsolatesFailedSlots(t *testing.T) {
	ops := []*stubOp{
		{calldata: []byte{0x01}},
		{calldata: []byte{0x02}},                                    // reverted slot
		{calldata: []byte{0x03}, resultErr: errors.New("bad data")}, // undecodable slot
	}
	caller := &fakeCaller{results: [][]byte{{0xa1}, nil, {0xa3}}}
	exec, err := NewExecutor(caller, ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"))
	if err != nil {
		t.Fatal(err)
	}

	if err := exec.Execute(context.Background(), ops[0], ops[1], ops[2]); err != nil {
		t.Fatal(err)
	}

	if ops[0].reverted {
		t.Error("healthy op was reverted")
	}
	if !ops[1].reverted {
		t.Error("nil result slot did not degrade to revert")
	}
	if !ops[2].reverted {
		t.Error("undecodable result did not degrade to revert")
	}
}

func TestExecutorSurfacesTransportFailure(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	exec, err := NewExecutor(caller, ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"))
	if err != nil {
		t.Fatal(err)
	}
	op := &stubOp{calldata: []byte{0x01}}
	if err := exec.Execute(context.Background(), op); err == nil {
		t.Fatal("expected transport error to surface")
	}
}

func packBatchResults(t *testing.T, results []batchCallResult) []byte {
	t.Helper()
	data, err := samplerABI.Methods["batchCall"].Outputs.Pack(results)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestBatchOperationIsolatesChildren(t *testing.T) {
	healthy := &stubOp{calldata: []byte{0x01}}
	failed := &stubOp{calldata: []byte{0x02}}
	batch := NewBatchOperation(healthy, failed)

	data := packBatchResults(t, []batchCallResult{
		{Success: true, Data: []byte{0xaa}},
		{Success: false, Data: nil},
	})

	if err := batch.HandleResult(data); err != nil {
		t.Fatal(err)
	}
	if healthy.gotResult == nil || healthy.gotResult[0] != 0xaa {
		t.Errorf("healthy child received %x, want aa", healthy.gotResult)
	}
	if healthy.reverted {
		t.Error("healthy child was reverted")
	}
	if !failed.reverted {
		t.Error("failed sub-call did not revert its child")
	}
}

func TestBatchOperationRejectsCountMismatch(t *testing.T) {
	batch := NewBatchOperation(&stubOp{calldata: []byte{0x01}}, &stubOp{calldata: []byte{0x02}})
	data := packBatchResults(t, []batchCallResult{{Success: true, Data: []byte{0xaa}}})
	if err := batch.HandleResult(data); err == nil {
		t.Fatal("expected error for result count mismatch")
	}
}

func TestBatchOperationNests(t *testing.T) {
	inner := &stubOp{calldata: []byte{0x01}}
	nested := NewBatchOperation(NewBatchOperation(inner))

	innerData := packBatchResults(t, []batchCallResult{{Success: true, Data: []byte{0xbb}}})
	outerData := packBatchResults(t, []batchCallResult{{Success: true, Data: innerData}})

	if err := nested.HandleResult(outerData); err != nil {
		t.Fatal(err)
	}
	if inner.gotResult == nil || inner.gotResult[0] != 0xbb {
		t.Errorf("nested child received %x, want bb", inner.gotResult)
	}
}
