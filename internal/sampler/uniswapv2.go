package sampler

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/domain"
)

// UniswapV2Operation samples a constant-product router (UniswapV2 and its
// clones) through the sampler contract's getAmountsOut/getAmountsIn probes.
type UniswapV2Operation struct {
	source    domain.Source
	router    ethcommon.Address
	tokenPath []ethcommon.Address
	side      domain.Side
	amounts   []*big.Int

	samples []domain.DexSample
}

func NewUniswapV2Operation(
	source domain.Source,
	router ethcommon.Address,
	tokenPath []ethcommon.Address,
	side domain.Side,
	amounts []*big.Int,
) (*UniswapV2Operation, error) {
	if router == (ethcommon.Address{}) {
		return nil, fmt.Errorf("%s router: %w", source, common.ErrMissingSourceAddress)
	}
	if len(tokenPath) < 2 {
		return nil, fmt.Errorf("%s: token path needs at least 2 tokens, got %d", source, len(tokenPath))
	}
	return &UniswapV2Operation{
		source:    source,
		router:    router,
		tokenPath: tokenPath,
		side:      side,
		amounts:   amounts,
	}, nil
}

func (op *UniswapV2Operation) Source() domain.Source {
	return op.source
}

func (op *UniswapV2Operation) EncodeCall() ([]byte, error) {
	method := "sampleSellsFromUniswapV2"
	if op.side == domain.SideBuy {
		method = "sampleBuysFromUniswapV2"
	}
	return samplerABI.Pack(method, op.router, op.tokenPath, op.amounts)
}

func (op *UniswapV2Operation) HandleResult(data []byte) error {
	method := "sampleSellsFromUniswapV2"
	if op.side == domain.SideBuy {
		method = "sampleBuysFromUniswapV2"
	}
	out, err := samplerABI.Unpack(method, data)
	if err != nil {
		return err
	}
	outputs := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	if len(outputs) != len(op.amounts) {
		return fmt.Errorf("%s: got %d outputs for %d amounts", op.source, len(outputs), len(op.amounts))
	}

	fillData := domain.AMMFillData{Router: op.router, TokenPath: op.tokenPath}
	samples := make([]domain.DexSample, len(outputs))
	for i, outAmount := range outputs {
		samples[i] = domain.DexSample{
			Source:   op.source,
			Input:    op.amounts[i],
			Output:   outAmount,
			FillData: fillData,
		}
	}
	op.samples = samples
	return nil
}

func (op *UniswapV2Operation) HandleRevert([]byte) {
	op.samples = nil
}

func (op *UniswapV2Operation) Samples() []domain.DexSample {
	return TruncateSamples(op.samples)
}
