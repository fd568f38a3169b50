// Package gasprice feeds current gas cost into the optimizer's comparisons.
// Providers are keyed by oracle URL so all callers of one oracle share a
// single polling loop.
package gasprice

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/metrics"
)

// Estimate is one committed gas price reading.
type Estimate struct {
	// GasPrice is the fast gas price in wei per gas unit.
	GasPrice *big.Int
	// L1CalldataPricePerUnit is the rollup calldata price in wei per unit.
	// Nil on chains that do not charge for L1 data.
	L1CalldataPricePerUnit *big.Int
}

type oracleResponse struct {
	Result struct {
		Fast                   float64  `json:"fast"`
		L1CalldataPricePerUnit *float64 `json:"l1CalldataPricePerUnit"`
	} `json:"result"`
}

// Provider polls one gas oracle. First use blocks for one fetch (or falls
// back to the configured default); afterwards a background loop refreshes on
// a fixed interval, serving the last good value through failures. Only when
// consecutive failures exhaust the budget with no good value ever obtained
// does estimation hard-fail.
type Provider struct {
	url          string
	client       *http.Client
	defaultPrice *big.Int
	interval     time.Duration
	maxFailures  int

	mu       sync.RWMutex
	last     *Estimate
	failures int

	initOnce sync.Once
}

func newProvider(url string, client *http.Client, defaultPrice *big.Int, interval time.Duration, maxFailures int) *Provider {
	return &Provider{
		url:          url,
		client:       client,
		defaultPrice: defaultPrice,
		interval:     interval,
		maxFailures:  maxFailures,
	}
}

func (p *Provider) ID() string {
	return "gas-price-provider"
}

// GetGasPriceEstimation returns the current estimate. The first caller pays
// for one synchronous fetch and starts the refresh loop.
func (p *Provider) GetGasPriceEstimation(ctx context.Context) (*Estimate, error) {
	p.initOnce.Do(func() {
		p.refresh(ctx)
		go p.loop()
	})

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last != nil {
		return p.last, nil
	}
	if p.failures >= p.maxFailures {
		return nil, fmt.Errorf("%s after %d consecutive failures: %w", p.url, p.failures, common.ErrNoGasPriceAvailable)
	}
	return nil, fmt.Errorf("%s: %w", p.url, common.ErrNoGasPriceAvailable)
}

func (p *Provider) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), p.interval)
		p.refresh(ctx)
		cancel()
	}
}

// refresh attempts one oracle fetch and commits the result. A failure keeps
// the last good value and bumps the consecutive failure counter; only a
// success resets it.
func (p *Provider) refresh(ctx context.Context) {
	estimate, err := p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failures++
		metrics.GasOracleFailures.Inc()
		log.Debug().Str("oracle", p.url).Int("consecutive_failures", p.failures).Err(err).
			Msg("gas oracle fetch failed")
		if p.last == nil && p.defaultPrice != nil {
			p.last = &Estimate{GasPrice: p.defaultPrice}
		}
		return
	}
	p.last = estimate
	p.failures = 0
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(estimate.GasPrice), big.NewFloat(1e9)).Float64()
	metrics.GasPriceGwei.Set(gwei)
}

func (p *Provider) fetch(ctx context.Context) (*Estimate, error) {
	if p.url == "" {
		return nil, fmt.Errorf("no oracle URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, err
	}

	var parsed oracleResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}
	if parsed.Result.Fast <= 0 {
		return nil, fmt.Errorf("oracle returned non-positive fast price %f", parsed.Result.Fast)
	}

	estimate := &Estimate{GasPrice: floatWei(parsed.Result.Fast)}
	if parsed.Result.L1CalldataPricePerUnit != nil {
		estimate.L1CalldataPricePerUnit = floatWei(*parsed.Result.L1CalldataPricePerUnit)
	}
	return estimate, nil
}

func floatWei(v float64) *big.Int {
	out, _ := new(big.Float).SetFloat64(v).Int(nil)
	return out
}

// Registry owns one provider per oracle URL. It replaces ambient singleton
// state: construct once at startup and hand it to whoever needs estimates.
type Registry struct {
	client *http.Client

	mu        sync.Mutex
	providers map[string]*Provider
}

func NewRegistry(client *http.Client) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Registry{
		client:    client,
		providers: make(map[string]*Provider),
	}
}

// Provider returns the shared provider for the URL, creating it on first
// request. Configuration is fixed by the first caller; later callers share
// the same polling loop.
func (r *Registry) Provider(url string, defaultPrice *big.Int, interval time.Duration, maxFailures int) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[url]; ok {
		return p
	}
	p := newProvider(url, r.client, defaultPrice, interval, maxFailures)
	r.providers[url] = p
	return p
}
