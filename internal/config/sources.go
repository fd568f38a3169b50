package config

import (
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/common"
)

// Mainnet defaults for the source address book. Any of them can be overridden
// per deployment through the corresponding env var.
const (
	defaultUniswapV2Router = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	defaultSushiSwapRouter = "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F"
	defaultUniswapV3Router = "0xE592427A0AEce92De3Edee1F18E0157C05861564"
	defaultUniswapV3Quoter = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
	defaultSettlement      = "0xDef1C0ded9bec7F1a1670819833240f027b25EfF"

	defaultIntermediateTokens = "" +
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2," + // WETH
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48," + // USDC
		"0xdAC17F958D2ee523a2206206994597C13D831ec7," + // USDT
		"0x6B175474E89094C44Da98b954EedeAC495271d0F" // DAI
)

// SourcesConfig is the per-chain source address book. Every address a source
// adapter needs must be present and non-zero; a missing address fails config
// validation rather than surfacing later as a bad quote.
type SourcesConfig struct {
	UniswapV2Router ethcommon.Address
	SushiSwapRouter ethcommon.Address
	UniswapV3Router ethcommon.Address
	UniswapV3Quoter ethcommon.Address

	// SettlementContract settles fills, spends maker allowances and anchors
	// the order signature domain.
	SettlementContract ethcommon.Address

	// IntermediateTokens are the hop candidates for two-hop sampling.
	IntermediateTokens []ethcommon.Address

	// DisabledSources holds source names excluded from sampling.
	DisabledSources map[string]struct{}
}

func (sc *SourcesConfig) Key() string {
	return SOURCES_CONFIG_KEY
}

func parseAddress(key, raw string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(raw) {
		return ethcommon.Address{}, fmt.Errorf("%s: %q is not a hex address", key, raw)
	}
	return ethcommon.HexToAddress(raw), nil
}

func (sc *SourcesConfig) Load() error {
	var err error
	if sc.UniswapV2Router, err = parseAddress("UNISWAP_V2_ROUTER", getEnvOrDefault("UNISWAP_V2_ROUTER", defaultUniswapV2Router)); err != nil {
		return err
	}
	if sc.SushiSwapRouter, err = parseAddress("SUSHISWAP_ROUTER", getEnvOrDefault("SUSHISWAP_ROUTER", defaultSushiSwapRouter)); err != nil {
		return err
	}
	if sc.UniswapV3Router, err = parseAddress("UNISWAP_V3_ROUTER", getEnvOrDefault("UNISWAP_V3_ROUTER", defaultUniswapV3Router)); err != nil {
		return err
	}
	if sc.UniswapV3Quoter, err = parseAddress("UNISWAP_V3_QUOTER", getEnvOrDefault("UNISWAP_V3_QUOTER", defaultUniswapV3Quoter)); err != nil {
		return err
	}
	if sc.SettlementContract, err = parseAddress("SETTLEMENT_CONTRACT", getEnvOrDefault("SETTLEMENT_CONTRACT", defaultSettlement)); err != nil {
		return err
	}

	sc.IntermediateTokens = sc.IntermediateTokens[:0]
	for _, raw := range strings.Split(getEnvOrDefault("INTERMEDIATE_TOKENS", defaultIntermediateTokens), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := parseAddress("INTERMEDIATE_TOKENS", raw)
		if err != nil {
			return err
		}
		sc.IntermediateTokens = append(sc.IntermediateTokens, addr)
	}

	sc.DisabledSources = make(map[string]struct{})
	for _, name := range strings.Split(getEnvOrDefault("DISABLED_SOURCES", ""), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			sc.DisabledSources[name] = struct{}{}
		}
	}
	return sc.Validate()
}

func (sc *SourcesConfig) Validate() error {
	required := map[string]ethcommon.Address{
		"UNISWAP_V2_ROUTER":   sc.UniswapV2Router,
		"SUSHISWAP_ROUTER":    sc.SushiSwapRouter,
		"UNISWAP_V3_ROUTER":   sc.UniswapV3Router,
		"UNISWAP_V3_QUOTER":   sc.UniswapV3Quoter,
		"SETTLEMENT_CONTRACT": sc.SettlementContract,
	}
	for key, addr := range required {
		if addr == (ethcommon.Address{}) {
			return fmt.Errorf("%s: %w", key, common.ErrMissingSourceAddress)
		}
	}
	return nil
}
