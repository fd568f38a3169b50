package sampler

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI of the deployed sampler helper contract. batchCall lets one eth_call
// carry an arbitrary tree of sub-calls; the sample* methods quote a source
// at a ladder of amounts in a single sub-call.
const samplerABIJSON = `[
  {"type":"function","name":"batchCall","stateMutability":"view",
   "inputs":[{"name":"callDatas","type":"bytes[]"}],
   "outputs":[{"name":"callResults","type":"tuple[]","components":[
     {"name":"success","type":"bool"},{"name":"data","type":"bytes"}]}]},
  {"type":"function","name":"sampleSellsFromUniswapV2","stateMutability":"view",
   "inputs":[{"name":"router","type":"address"},
     {"name":"path","type":"address[]"},
     {"name":"takerTokenAmounts","type":"uint256[]"}],
   "outputs":[{"name":"makerTokenAmounts","type":"uint256[]"}]},
  {"type":"function","name":"sampleBuysFromUniswapV2","stateMutability":"view",
   "inputs":[{"name":"router","type":"address"},
     {"name":"path","type":"address[]"},
     {"name":"makerTokenAmounts","type":"uint256[]"}],
   "outputs":[{"name":"takerTokenAmounts","type":"uint256[]"}]},
  {"type":"function","name":"sampleSellsFromUniswapV3","stateMutability":"view",
   "inputs":[{"name":"quoter","type":"address"},
     {"name":"path","type":"address[]"},
     {"name":"takerTokenAmounts","type":"uint256[]"}],
   "outputs":[{"name":"uniswapPaths","type":"bytes[]"},
     {"name":"uniswapGasUsed","type":"uint256[]"},
     {"name":"makerTokenAmounts","type":"uint256[]"}]},
  {"type":"function","name":"sampleBuysFromUniswapV3","stateMutability":"view",
   "inputs":[{"name":"quoter","type":"address"},
     {"name":"path","type":"address[]"},
     {"name":"makerTokenAmounts","type":"uint256[]"}],
   "outputs":[{"name":"uniswapPaths","type":"bytes[]"},
     {"name":"uniswapGasUsed","type":"uint256[]"},
     {"name":"takerTokenAmounts","type":"uint256[]"}]}
]`

var samplerABI = mustParseABI(samplerABIJSON)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

// batchCallResult mirrors the batchCall output tuple.
type batchCallResult struct {
	Success bool   `abi:"success"`
	Data    []byte `abi:"data"`
}

func unpackBatchCallResults(data []byte) ([]batchCallResult, error) {
	out, err := samplerABI.Unpack("batchCall", data)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(out[0], new([]batchCallResult)).(*[]batchCallResult)
	return results, nil
}
