package config

import (
	"errors"
	"os"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY    = "general-config"
	RPC_CONFIG_KEY        = "rpc-config"
	SOURCES_CONFIG_KEY    = "sources-config"
	AGGREGATOR_CONFIG_KEY = "aggregator-config"
)

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string

	// RateLimitPerSec and RateLimitBurst drive the per-client-IP token
	// bucket on the public API.
	RateLimitPerSec int
	RateLimitBurst  int
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = getEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = getEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = getEnvOrDefault("ENV", "dev")
	gc.LogLevel = getEnvOrDefault("LOG_LEVEL", "INFO")

	var err error
	if gc.RateLimitPerSec, err = loadInt("RATE_LIMIT_PER_SEC", 10); err != nil {
		return err
	}
	if gc.RateLimitBurst, err = loadInt("RATE_LIMIT_BURST", 20); err != nil {
		return err
	}
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	if gc.RateLimitPerSec < 1 || gc.RateLimitBurst < 1 {
		return errors.New("rate limit and burst must be at least 1")
	}
	return nil
}
