// Package chain wraps the go-ethereum RPC client with the small surface the
// quoting pipeline needs.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Caller is the read-only chain surface used by the sampler executor and the
// native order resolver. *Client satisfies it; tests substitute their own.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BatchCall(ctx context.Context, calls []Call) ([][]byte, error)
}

// Call is one eth_call in a batch request.
type Call struct {
	To   common.Address
	Data []byte
}

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// BatchCall performs the given calls in one JSON-RPC batch. Results are
// returned in call order. A per-element RPC error (revert included) yields a
// nil result slot, not an overall error; the overall error is reserved for
// transport failure.
func (c *Client) BatchCall(ctx context.Context, calls []Call) ([][]byte, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	elems := make([]rpc.BatchElem, len(calls))
	results := make([]string, len(calls))
	for i, call := range calls {
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   call.To,
					"data": "0x" + common.Bytes2Hex(call.Data),
				},
				"latest",
			},
			Result: &results[i],
		}
	}

	if err := c.rpcClient.BatchCallContext(ctx, elems); err != nil {
		return nil, err
	}

	out := make([][]byte, len(calls))
	for i := range elems {
		if elems[i].Error != nil {
			continue
		}
		out[i] = common.FromHex(results[i])
	}
	return out, nil
}
