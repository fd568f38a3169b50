package sampler

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

var (
	testRouter = ethcommon.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	testQuoter = ethcommon.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	testWETH   = ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	testUSDC   = ethcommon.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func bigs(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestUniswapV2OperationRejectsZeroRouter(t *testing.T) {
	_, err := NewUniswapV2Operation(
		domain.SourceUniswapV2, ethcommon.Address{},
		[]ethcommon.Address{testWETH, testUSDC},
		domain.SideSell, bigs(100),
	)
	if err == nil {
		t.Fatal("expected error for zero router address")
	}
}

func TestUniswapV2OperationDecodesAndTruncates(t *testing.T) {
	op, err := NewUniswapV2Operation(
		domain.SourceUniswapV2, testRouter,
		[]ethcommon.Address{testWETH, testUSDC},
		domain.SideSell, bigs(100, 200, 300, 400),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Third rung dips below the second, so the curve must cut there.
	data, err := samplerABI.Methods["sampleSellsFromUniswapV2"].Outputs.Pack(bigs(90, 180, 150, 400))
	if err != nil {
		t.Fatal(err)
	}
	if err := op.HandleResult(data); err != nil {
		t.Fatal(err)
	}

	samples := op.Samples()
	if len(samples) != 2 {
		t.Fatalf("kept %d samples, want 2", len(samples))
	}
	if samples[1].Output.Cmp(big.NewInt(180)) != 0 {
		t.Errorf("second rung output = %s, want 180", samples[1].Output)
	}
	fd, ok := samples[0].FillData.(domain.AMMFillData)
	if !ok {
		t.Fatalf("fill data is %T, want AMMFillData", samples[0].FillData)
	}
	if fd.Router != testRouter {
		t.Errorf("fill data router = %s, want %s", fd.Router.Hex(), testRouter.Hex())
	}
}

func TestUniswapV2OperationRejectsRaggedResponse(t *testing.T) {
	op, err := NewUniswapV2Operation(
		domain.SourceUniswapV2, testRouter,
		[]ethcommon.Address{testWETH, testUSDC},
		domain.SideSell, bigs(100, 200),
	)
	if err != nil {
		t.Fatal(err)
	}
	data, err := samplerABI.Methods["sampleSellsFromUniswapV2"].Outputs.Pack(bigs(90))
	if err != nil {
		t.Fatal(err)
	}
	if err := op.HandleResult(data); err == nil {
		t.Fatal("expected error for output count mismatch")
	}
}

func TestUniswapV2OperationRevertClearsSamples(t *testing.T) {
	op, err := NewUniswapV2Operation(
		domain.SourceUniswapV2, testRouter,
		[]ethcommon.Address{testWETH, testUSDC},
		domain.SideSell, bigs(100),
	)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := samplerABI.Methods["sampleSellsFromUniswapV2"].Outputs.Pack(bigs(90))
	if err := op.HandleResult(data); err != nil {
		t.Fatal(err)
	}
	op.HandleRevert(nil)
	if got := op.Samples(); len(got) != 0 {
		t.Fatalf("got %d samples after revert, want 0", len(got))
	}
}

func TestUniswapV3OperationCarriesMeasuredGas(t *testing.T) {
	op, err := NewUniswapV3Operation(
		domain.SourceUniswapV3, testRouter, testQuoter,
		[]ethcommon.Address{testWETH, testUSDC},
		domain.SideSell, bigs(100, 200),
	)
	if err != nil {
		t.Fatal(err)
	}

	paths := [][]byte{{0x01, 0x02}, {0x03, 0x04}}
	data, err := samplerABI.Methods["sampleSellsFromUniswapV3"].Outputs.Pack(
		paths, bigs(60000, 95000), bigs(95, 185),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := op.HandleResult(data); err != nil {
		t.Fatal(err)
	}

	samples := op.Samples()
	if len(samples) != 2 {
		t.Fatalf("kept %d samples, want 2", len(samples))
	}
	fd, ok := samples[1].FillData.(domain.TickPathFillData)
	if !ok {
		t.Fatalf("fill data is %T, want TickPathFillData", samples[1].FillData)
	}
	if len(fd.PathAmounts) != 1 || fd.PathAmounts[0].GasUsed != 95000 {
		t.Errorf("path amounts = %+v, want one entry with gasUsed 95000", fd.PathAmounts)
	}
	if string(fd.PathAmounts[0].Path) != string(paths[1]) {
		t.Errorf("path = %x, want %x", fd.PathAmounts[0].Path, paths[1])
	}
}
