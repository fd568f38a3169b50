package config

import (
	"errors"
	"strconv"
	"time"
)

// AggregatorConfig tunes the quoting pipeline itself rather than any single
// source.
type AggregatorConfig struct {
	// NumSamples is the rung count of the sample amount ladder per source.
	// Default: 13
	NumSamples int

	// SampleDistributionBase shapes the ladder. 1 means linear spacing;
	// values above 1 concentrate rungs near the full amount. Default: 1.05
	SampleDistributionBase float64

	// QuoteTimeout bounds one quote request end to end, sampling included.
	// Default: 5s
	QuoteTimeout time.Duration

	// GasRefreshInterval is the gas price provider polling period.
	// Default: 15s
	GasRefreshInterval time.Duration

	// DefaultGasPriceGwei is served before the first successful oracle fetch.
	// Default: 30
	DefaultGasPriceGwei int64

	// ExchangeOverheadGas is the flat settlement contract overhead applied at
	// path comparison time. Default: 20000
	ExchangeOverheadGas uint64

	// MaxGasPriceFailures is the consecutive oracle failure count after which
	// requests hard-fail when no good value was ever fetched. Default: 5
	MaxGasPriceFailures int
}

func (c *AggregatorConfig) Key() string {
	return AGGREGATOR_CONFIG_KEY
}

func loadInt(key string, def int) (int, error) {
	v, err := strconv.Atoi(getEnvOrDefault(key, strconv.Itoa(def)))
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func (c *AggregatorConfig) Load() error {
	var err error
	if c.NumSamples, err = loadInt("NUM_SAMPLES", 13); err != nil {
		return err
	}
	base, err := strconv.ParseFloat(getEnvOrDefault("SAMPLE_DISTRIBUTION_BASE", "1.05"), 64)
	if err != nil {
		return errors.New("invalid SAMPLE_DISTRIBUTION_BASE")
	}
	c.SampleDistributionBase = base

	timeoutMs, err := loadInt("QUOTE_TIMEOUT_MS", 5000)
	if err != nil {
		return err
	}
	c.QuoteTimeout = time.Duration(timeoutMs) * time.Millisecond

	refreshSec, err := loadInt("GAS_REFRESH_INTERVAL_SEC", 15)
	if err != nil {
		return err
	}
	c.GasRefreshInterval = time.Duration(refreshSec) * time.Second

	defGas, err := loadInt("DEFAULT_GAS_PRICE_GWEI", 30)
	if err != nil {
		return err
	}
	c.DefaultGasPriceGwei = int64(defGas)

	overhead, err := loadInt("EXCHANGE_OVERHEAD_GAS", 20000)
	if err != nil {
		return err
	}
	c.ExchangeOverheadGas = uint64(overhead)

	if c.MaxGasPriceFailures, err = loadInt("MAX_GAS_PRICE_FAILURES", 5); err != nil {
		return err
	}
	return c.Validate()
}

func (c *AggregatorConfig) Validate() error {
	if c.NumSamples < 1 {
		return errors.New("NUM_SAMPLES must be at least 1")
	}
	if c.SampleDistributionBase < 1 {
		return errors.New("SAMPLE_DISTRIBUTION_BASE must be >= 1")
	}
	if c.QuoteTimeout <= 0 || c.GasRefreshInterval <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MaxGasPriceFailures < 1 {
		return errors.New("MAX_GAS_PRICE_FAILURES must be at least 1")
	}
	return nil
}
