package http

import (
	"context"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/0xProject/protocol-sub016/internal/aggregator"
	"github.com/0xProject/protocol-sub016/internal/config"
	"github.com/0xProject/protocol-sub016/internal/http/httputil"
	"github.com/0xProject/protocol-sub016/internal/http/middlewares"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

type HTTPService struct {
	aggregatorSvc *aggregator.Service
	rateLimiter   *middlewares.RateLimiter
	server        *gohttp.Server
	conf          *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func NewHTTPService(conf *config.GeneralConfig, aggregatorSvc *aggregator.Service) *HTTPService {
	svc := &HTTPService{
		aggregatorSvc: aggregatorSvc,
		rateLimiter:   middlewares.NewRateLimiter(conf.RateLimitPerSec, conf.RateLimitBurst),
		conf:          conf,
	}
	svc.handlers = []httputil.IHttpHandler{
		NewQuoteHandler(aggregatorSvc),
		NewPriceHandler(aggregatorSvc),
	}
	return svc
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Start() error {
	if svc.conf.Env == config.ProdEnv {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowCredentials = true
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	priv := api.Group(API_VERSION)
	admin := api.Group(API_VERSION + "/admin")

	svc.setupHandlers(pub, priv, admin)

	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: r,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}

	return nil
}

func (svc *HTTPService) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}

func (svc *HTTPService) setupHandlers(
	rootPub *gin.RouterGroup,
	rootPriv *gin.RouterGroup,
	rootAdmin *gin.RouterGroup,
) {
	for _, h := range svc.handlers {
		pub := rootPub.Group(h.Root())
		priv := rootPriv.Group(h.Root())
		admin := rootAdmin.Group(h.Root())
		h.SetRoutes(pub, priv, admin)
	}
}
