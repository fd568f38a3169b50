package sampler

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// UniswapV3Operation samples a concentrated-liquidity quoter. The sampler
// contract probes every fee tier and returns, per ladder rung, the winning
// encoded path, the gas the quoter consumed and the output amount. The gas
// measurement rides along in the fill data so the normalizer can charge the
// real tick-crossing cost instead of a flat estimate.
type UniswapV3Operation struct {
	source    domain.Source
	router    ethcommon.Address
	quoter    ethcommon.Address
	tokenPath []ethcommon.Address
	side      domain.Side
	amounts   []*big.Int

	samples []domain.DexSample
}

func NewUniswapV3Operation(
	source domain.Source,
	router ethcommon.Address,
	quoter ethcommon.Address,
	tokenPath []ethcommon.Address,
	side domain.Side,
	amounts []*big.Int,
) (*UniswapV3Operation, error) {
	if router == (ethcommon.Address{}) {
		return nil, fmt.Errorf("%s router: %w", source, common.ErrMissingSourceAddress)
	}
	if quoter == (ethcommon.Address{}) {
		return nil, fmt.Errorf("%s quoter: %w", source, common.ErrMissingSourceAddress)
	}
	if len(tokenPath) < 2 {
		return nil, fmt.Errorf("%s: token path needs at least 2 tokens, got %d", source, len(tokenPath))
	}
	return &UniswapV3Operation{
		source:    source,
		router:    router,
		quoter:    quoter,
		tokenPath: tokenPath,
		side:      side,
		amounts:   amounts,
	}, nil
}

func (op *UniswapV3Operation) Source() domain.Source {
	return op.source
}

func (op *UniswapV3Operation) EncodeCall() ([]byte, error) {
	method := "sampleSellsFromUniswapV3"
	if op.side == domain.SideBuy {
		method = "sampleBuysFromUniswapV3"
	}
	return samplerABI.Pack(method, op.quoter, op.tokenPath, op.amounts)
}

func (op *UniswapV3Operation) HandleResult(data []byte) error {
	method := "sampleSellsFromUniswapV3"
	if op.side == domain.SideBuy {
		method = "sampleBuysFromUniswapV3"
	}
	out, err := samplerABI.Unpack(method, data)
	if err != nil {
		return err
	}
	paths := *abi.ConvertType(out[0], new([][]byte)).(*[][]byte)
	gasUsed := *abi.ConvertType(out[1], new([]*big.Int)).(*[]*big.Int)
	outputs := *abi.ConvertType(out[2], new([]*big.Int)).(*[]*big.Int)
	if len(paths) != len(op.amounts) || len(gasUsed) != len(op.amounts) || len(outputs) != len(op.amounts) {
		return fmt.Errorf("%s: ragged quoter response (%d paths, %d gas, %d outputs for %d amounts)",
			op.source, len(paths), len(gasUsed), len(outputs), len(op.amounts))
	}

	samples := make([]domain.DexSample, len(outputs))
	for i, outAmount := range outputs {
		samples[i] = domain.DexSample{
			Source: op.source,
			Input:  op.amounts[i],
			Output: outAmount,
			FillData: domain.TickPathFillData{
				Router:    op.router,
				Quoter:    op.quoter,
				TokenPath: op.tokenPath,
				PathAmounts: []domain.PathAmount{{
					Path:        paths[i],
					InputAmount: op.amounts[i],
					GasUsed:     gasUsed[i].Uint64(),
				}},
			},
		}
	}
	op.samples = samples
	return nil
}

func (op *UniswapV3Operation) HandleRevert([]byte) {
	op.samples = nil
}

func (op *UniswapV3Operation) Samples() []domain.DexSample {
	return TruncateSamples(op.samples)
}
