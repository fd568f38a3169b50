package config

import (
	"errors"
	"os"
	"strconv"
)

type RPCConfig struct {
	RPCUrl string
	// GasOracleURL is the HTTP endpoint of the gas price oracle. Empty means
	// the provider serves the configured default gas price only.
	GasOracleURL string
	// SamplerAddress is the deployed liquidity sampler helper contract.
	SamplerAddress string
	ChainID        uint64
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = os.Getenv("RPC_URL")
	r.GasOracleURL = os.Getenv("GAS_ORACLE_URL")
	r.SamplerAddress = os.Getenv("SAMPLER_ADDRESS")
	chainID, err := strconv.ParseUint(getEnvOrDefault("CHAIN_ID", "1"), 10, 64)
	if err != nil {
		return errors.New("invalid CHAIN_ID")
	}
	r.ChainID = chainID
	return nil
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" || r.SamplerAddress == "" {
		return errors.New("invalid rpc config")
	}
	return nil
}
