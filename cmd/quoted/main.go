package main

import (
	"context"
	"math/big"
	"os/signal"
	"syscall"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/0xProject/protocol-sub016/internal/aggregator"
	"github.com/0xProject/protocol-sub016/internal/chain"
	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/config"
	"github.com/0xProject/protocol-sub016/internal/gasprice"
	"github.com/0xProject/protocol-sub016/internal/http"
	"github.com/0xProject/protocol-sub016/internal/orders"
	"github.com/0xProject/protocol-sub016/internal/router"
	"github.com/0xProject/protocol-sub016/internal/sampler"
	"github.com/0xProject/protocol-sub016/internal/slippage"
)

func main() {
	common.InitRuntimeForQuoting()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	generalConf := &config.GeneralConfig{}
	rpcConf := &config.RPCConfig{}
	sourcesConf := &config.SourcesConfig{}
	aggConf := &config.AggregatorConfig{}
	for _, c := range []interface {
		Key() string
		Load() error
	}{generalConf, rpcConf, sourcesConf, aggConf} {
		if err := c.Load(); err != nil {
			log.Fatal().Err(err).Str("config", c.Key()).Msg("failed to load config")
		}
	}
	if err := rpcConf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid rpc config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, rpcConf.RPCUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to dial rpc")
	}
	defer client.Close()

	executor, err := sampler.NewExecutor(client, ethcommon.HexToAddress(rpcConf.SamplerAddress))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct sampler executor")
	}
	registry := sampler.NewRegistry(sourcesConf)

	stateReader := orders.NewChainStateReader(client, rpcConf.ChainID, sourcesConf.SettlementContract)
	resolver := orders.NewResolver(stateReader, rpcConf.ChainID, sourcesConf.SettlementContract)

	gasRegistry := gasprice.NewRegistry(nil)
	defaultGasPrice := new(big.Int).Mul(big.NewInt(aggConf.DefaultGasPriceGwei), common.OneGwei)
	gasProvider := gasRegistry.Provider(
		rpcConf.GasOracleURL,
		defaultGasPrice,
		aggConf.GasRefreshInterval,
		aggConf.MaxGasPriceFailures,
	)

	optimizer := router.NewOptimizer(nil, aggConf.ExchangeOverheadGas)
	schedule := router.DefaultGasSchedule()
	slippageCache := slippage.NewCache()

	aggregatorSvc := aggregator.NewService(
		registry,
		executor,
		resolver,
		nil,
		optimizer,
		schedule,
		gasProvider,
		slippageCache,
		aggConf,
	)

	httpSvc := http.NewHTTPService(generalConf, aggregatorSvc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSvc.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := httpSvc.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("shutdown complete")
}
