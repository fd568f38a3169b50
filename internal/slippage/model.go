// Package slippage holds the per-pair, per-source statistical slippage
// models consumed by the slippage-aware fill adjustor. The model file itself
// is loaded out-of-band; this package only serves the resolved lookup.
package slippage

import (
	"strings"
	"sync/atomic"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Model is one fitted slippage record for a (token0, token1, source) triple.
// Coefficients predict realized slippage as a signed rate: negative means
// worse than the sampled quote.
type Model struct {
	Token0              ethcommon.Address `json:"token0"`
	Token1              ethcommon.Address `json:"token1"`
	Source              domain.Source     `json:"source"`
	SlippageCoefficient float64           `json:"slippageCoefficient"`
	VolumeCoefficient   float64           `json:"volumeCoefficient"`
	Intercept           float64           `json:"intercept"`
	Token0PriceInUsd    float64           `json:"token0PriceInUsd"`
}

// ExpectedSlippage predicts the slippage rate for trading token0Amount
// (token0 base units) with the given tolerance in basis points.
func (m Model) ExpectedSlippage(token0Amount float64, maxSlippageBps float64) float64 {
	slippageTerm := maxSlippageBps * m.SlippageCoefficient
	volumeTerm := token0Amount * m.Token0PriceInUsd * m.VolumeCoefficient
	return slippageTerm + volumeTerm + m.Intercept
}

type modelKey struct {
	pair   string
	source domain.Source
}

func pairKey(a, b ethcommon.Address) string {
	lo, hi := strings.ToLower(a.Hex()), strings.ToLower(b.Hex())
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + "/" + hi
}

// Cache is the atomically swapped model lookup. Refreshes replace the whole
// map; readers never observe a partial update.
type Cache struct {
	models atomic.Pointer[map[modelKey]Model]
}

func NewCache() *Cache {
	c := &Cache{}
	empty := make(map[modelKey]Model)
	c.models.Store(&empty)
	return c
}

// Replace swaps in a freshly built lookup from a full model list.
func (c *Cache) Replace(models []Model) {
	next := make(map[modelKey]Model, len(models))
	for _, m := range models {
		next[modelKey{pair: pairKey(m.Token0, m.Token1), source: m.Source}] = m
	}
	c.models.Store(&next)
}

// Get returns the model for a pair and source, direction-insensitive.
func (c *Cache) Get(pair domain.TokenPair, source domain.Source) (Model, bool) {
	lookup := *c.models.Load()
	m, ok := lookup[modelKey{pair: pairKey(pair.SellToken, pair.BuyToken), source: source}]
	return m, ok
}
