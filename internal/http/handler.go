package http

import (
	"context"
	"errors"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/http/httputil"
	"github.com/1sol-io/1sol-interface-sub000/internal/http/middlewares"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/executor"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/pricing"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/registry"
	"github.com/1sol-io/1sol-interface-sub000/internal/wallet"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

type HTTPService struct {
	container.BaseDIInstance

	executorSvc *executor.Service
	pricingSvc  *pricing.ClientService
	registrySvc *registry.Service
	walletSvc   *wallet.Service
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}

	svc.executorSvc = c.Instance(executor.SERVICE_NAME).(*executor.Service)
	svc.pricingSvc = c.Instance(pricing.CLIENT_SERVICE_NAME).(*pricing.ClientService)
	svc.registrySvc = c.Instance(registry.SERVICE_NAME).(*registry.Service)
	svc.walletSvc = c.Instance(wallet.SERVICE_NAME).(*wallet.Service)
	svc.rateLimiter = middlewares.NewRateLimiter(10, 20)

	svc.handlers = []httputil.IHttpHandler{
		NewSwapHandler(svc.executorSvc, svc.pricingSvc, svc.registrySvc, svc.walletSvc),
		NewQuoteHandler(svc.pricingSvc, svc.registrySvc),
		NewVenueHandler(svc.registrySvc),
	}
	return nil
}

func (svc *HTTPService) Start() error {
	r := gin.Default()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowCredentials = true
	corsConf.AddAllowHeaders("Authorization", "X-Wallet-Address")
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
