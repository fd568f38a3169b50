// Package aggregator orchestrates one quote request end to end: fan out
// sampling and order resolution, run the optimizer, adjust the chosen fills
// and render the audit report.
package aggregator

import (
	"context"
	"errors"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0xProject/protocol-sub016/internal/common"
	"github.com/0xProject/protocol-sub016/internal/config"
	"github.com/0xProject/protocol-sub016/internal/domain"
	"github.com/0xProject/protocol-sub016/internal/gasprice"
	"github.com/0xProject/protocol-sub016/internal/metrics"
	"github.com/0xProject/protocol-sub016/internal/orders"
	"github.com/0xProject/protocol-sub016/internal/report"
	"github.com/0xProject/protocol-sub016/internal/router"
	"github.com/0xProject/protocol-sub016/internal/sampler"
	"github.com/0xProject/protocol-sub016/internal/slippage"
)

const AGGREGATOR_SERVICE = "aggregator-service"

// Error aliases
var (
	ErrNoLiquidityAvailable = common.ErrNoLiquidityAvailable
	ErrNoGasPriceAvailable  = common.ErrNoGasPriceAvailable
)

// OrderSource supplies candidate native orders and indicative RFQ quotes for
// a pair. The RFQ negotiation subsystem lives outside this service; a no-op
// source is used when none is wired.
type OrderSource interface {
	GetOrders(ctx context.Context, pair domain.TokenPair) ([]domain.SignedNativeOrder, error)
	GetIndicativeQuotes(ctx context.Context, pair domain.TokenPair) ([]domain.IndicativeQuote, error)
}

// NoopOrderSource serves requests with no RFQ connectivity.
type NoopOrderSource struct{}

func (NoopOrderSource) GetOrders(context.Context, domain.TokenPair) ([]domain.SignedNativeOrder, error) {
	return nil, nil
}

func (NoopOrderSource) GetIndicativeQuotes(context.Context, domain.TokenPair) ([]domain.IndicativeQuote, error) {
	return nil, nil
}

// QuoteRequest is one quote to serve.
type QuoteRequest struct {
	Pair   domain.TokenPair
	Side   domain.Side
	Amount *big.Int

	// AllowSplit permits multi-source allocation. When false only
	// single-path candidates compete.
	AllowSplit bool

	// Reference prices for converting gas cost into token units, in token
	// base units per 1 ether. Either may be nil when unknown.
	OutputAmountPerEth *big.Int
	InputAmountPerEth  *big.Int

	// MaxSlippageBps feeds the slippage adjustor model. Zero disables it.
	MaxSlippageBps float64
}

// QuoteResult is the served quote plus its audit report.
type QuoteResult struct {
	Path      *router.Path
	Fills     []*domain.Fill
	Input     *big.Int
	Output    *big.Int
	Shortfall *big.Int
	GasPrice  *big.Int
	Report    *report.QuoteReport
}

// Service is the quoting facade handed to the HTTP layer.
type Service struct {
	logger *common.ServiceLogger

	registry    *sampler.Registry
	executor    *sampler.Executor
	resolver    *orders.Resolver
	orderSource OrderSource
	optimizer   *router.Optimizer
	schedule    *router.GasSchedule
	gas         *gasprice.Provider
	slippage    *slippage.Cache

	cfg *config.AggregatorConfig
}

func NewService(
	registry *sampler.Registry,
	executor *sampler.Executor,
	resolver *orders.Resolver,
	orderSource OrderSource,
	optimizer *router.Optimizer,
	schedule *router.GasSchedule,
	gas *gasprice.Provider,
	slippageCache *slippage.Cache,
	cfg *config.AggregatorConfig,
) *Service {
	if orderSource == nil {
		orderSource = NoopOrderSource{}
	}
	svc := &Service{
		registry:    registry,
		executor:    executor,
		resolver:    resolver,
		orderSource: orderSource,
		optimizer:   optimizer,
		schedule:    schedule,
		gas:         gas,
		slippage:    slippageCache,
		cfg:         cfg,
	}
	svc.logger = common.NewServiceLogger(svc)
	return svc
}

func (svc *Service) ID() string {
	return AGGREGATOR_SERVICE
}

// sampledLiquidity is everything the fan-out phase collects for one request.
type sampledLiquidity struct {
	directSamples [][]domain.DexSample
	twoHopSamples []domain.DexSample
	nativeOrders  []domain.NativeOrderWithFillableAmounts
	indicative    []domain.IndicativeQuote
}

// GetQuote serves one quote request. Sampling branches run concurrently and
// degrade to zero liquidity individually; the optimizer starts only after
// every branch has resolved. Cancelling ctx aborts all in-flight calls.
func (svc *Service) GetQuote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, common.ErrNoLiquidityAvailable
	}
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, svc.cfg.QuoteTimeout)
	defer cancel()

	estimate, err := svc.gas.GetGasPriceEstimation(ctx)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(req.Side.String(), "no_gas_price").Inc()
		return nil, err
	}

	liq, err := svc.collectLiquidity(ctx, req)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues(req.Side.String(), "sampling_failed").Inc()
		return nil, err
	}

	conv := router.PenaltyConverter{
		GasPrice:           estimate.GasPrice,
		OutputAmountPerEth: req.OutputAmountPerEth,
		InputAmountPerEth:  req.InputAmountPerEth,
	}

	path, err := svc.optimizer.FindBestPath(req.Side, req.Amount, svc.normalize(req, liq, conv), conv, req.AllowSplit)
	if err != nil {
		if errors.Is(err, common.ErrNoLiquidityAvailable) {
			metrics.QuoteRequests.WithLabelValues(req.Side.String(), "no_liquidity").Inc()
		}
		return nil, err
	}

	fills := svc.adjustor(req).AdjustFills(req.Side, path.Fills(), req.Amount)

	quoteReport, err := report.Generate(report.Inputs{
		Side:             req.Side,
		Samples:          flatten(liq.directSamples),
		TwoHopSamples:    liq.twoHopSamples,
		NativeOrders:     liq.nativeOrders,
		IndicativeQuotes: liq.indicative,
		DeliveredFills:   fills,
	})
	if err != nil {
		return nil, err
	}

	output := big.NewInt(0)
	for _, f := range fills {
		output.Add(output, f.Output)
	}

	metrics.QuoteRequests.WithLabelValues(req.Side.String(), "ok").Inc()
	metrics.QuoteDuration.Observe(time.Since(started).Seconds())
	metrics.PathFills.Observe(float64(len(fills)))
	if path.Shortfall().Sign() > 0 {
		metrics.Shortfalls.Inc()
	}

	return &QuoteResult{
		Path:      path,
		Fills:     fills,
		Input:     path.Input(),
		Output:    output,
		Shortfall: path.Shortfall(),
		GasPrice:  estimate.GasPrice,
		Report:    quoteReport,
	}, nil
}

// collectLiquidity fans out direct sampling, two-hop sampling and native
// order resolution. Each branch degrades to empty on failure; only context
// cancellation aborts the request.
func (svc *Service) collectLiquidity(ctx context.Context, req QuoteRequest) (*sampledLiquidity, error) {
	amounts := sampler.GetSampleAmounts(req.Amount, svc.cfg.NumSamples, svc.cfg.SampleDistributionBase)
	liq := &sampledLiquidity{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		samples, err := svc.sampleDirect(gctx, req.Pair, req.Side, amounts)
		if err != nil {
			svc.degrade(gctx, "direct sampling", err)
			return nil
		}
		liq.directSamples = samples
		return nil
	})
	g.Go(func() error {
		samples, err := svc.sampleTwoHop(gctx, req.Pair, req.Side, req.Amount)
		if err != nil {
			svc.degrade(gctx, "two-hop sampling", err)
			return nil
		}
		liq.twoHopSamples = samples
		return nil
	})
	g.Go(func() error {
		resolved, indicative, err := svc.resolveNative(gctx, req.Pair)
		if err != nil {
			svc.degrade(gctx, "order resolution", err)
			return nil
		}
		liq.nativeOrders = resolved
		liq.indicative = indicative
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return liq, nil
}

// degrade logs a branch failure that resolves to zero liquidity. A branch
// killed by cancellation is not worth logging; the request itself is gone.
func (svc *Service) degrade(ctx context.Context, branch string, err error) {
	if ctx.Err() != nil {
		return
	}
	svc.logger.Debug().Str("branch", branch).Err(err).Msg("sampling branch degraded to zero liquidity")
	metrics.SamplingFailures.WithLabelValues(branch).Inc()
}

func (svc *Service) sampleDirect(
	ctx context.Context,
	pair domain.TokenPair,
	side domain.Side,
	amounts []*big.Int,
) ([][]domain.DexSample, error) {
	quoteOps, err := svc.registry.DirectOperations(pair, side, amounts)
	if err != nil {
		return nil, err
	}
	ops := make([]sampler.Operation, len(quoteOps))
	for i, op := range quoteOps {
		ops[i] = op
	}
	if err := svc.executor.Execute(ctx, ops...); err != nil {
		return nil, err
	}

	samples := make([][]domain.DexSample, 0, len(quoteOps))
	for _, op := range quoteOps {
		if s := op.Samples(); len(s) > 0 {
			samples = append(samples, s)
		}
	}
	return samples, nil
}

func (svc *Service) resolveNative(
	ctx context.Context,
	pair domain.TokenPair,
) ([]domain.NativeOrderWithFillableAmounts, []domain.IndicativeQuote, error) {
	candidates, err := svc.orderSource.GetOrders(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	indicative, err := svc.orderSource.GetIndicativeQuotes(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := svc.resolver.Resolve(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}
	return resolved, indicative, nil
}

// normalize converts collected liquidity into optimizer input. Indicative
// quotes are deliberately absent: they inform the report, never a firm path.
func (svc *Service) normalize(req QuoteRequest, liq *sampledLiquidity, conv router.PenaltyConverter) router.Liquidity {
	out := router.Liquidity{}
	for _, curve := range liq.directSamples {
		fills := router.DexSamplesToFills(req.Side, curve, conv, svc.schedule)
		if len(fills) > 0 {
			out.SourceCurves = append(out.SourceCurves, fills)
		}
	}
	for _, sample := range liq.twoHopSamples {
		out.TwoHopFills = append(out.TwoHopFills, router.TwoHopSampleToFill(req.Side, sample, conv, svc.schedule))
	}
	for _, order := range liq.nativeOrders {
		if fill, ok := router.NativeOrderToFill(req.Side, order, req.Amount, conv, svc.schedule); ok {
			out.NativeFills = append(out.NativeFills, fill)
		}
	}
	return out
}

func (svc *Service) adjustor(req QuoteRequest) router.FillAdjustor {
	if svc.slippage == nil || req.MaxSlippageBps <= 0 {
		return router.IdentityFillAdjustor{}
	}
	return &router.SlippageFillAdjustor{
		Cache:          svc.slippage,
		Pair:           req.Pair,
		MaxSlippageBps: req.MaxSlippageBps,
	}
}

func flatten(curves [][]domain.DexSample) []domain.DexSample {
	var out []domain.DexSample
	for _, c := range curves {
		out = append(out, c...)
	}
	return out
}
