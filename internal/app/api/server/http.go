package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/opsfloor/licensehub/docs"
	"github.com/opsfloor/licensehub/internal/app/api/handlers"
	mw "github.com/opsfloor/licensehub/internal/app/api/middleware"
	licsvc "github.com/opsfloor/licensehub/internal/app/service/license"
	ordersvc "github.com/opsfloor/licensehub/internal/app/service/order"
	pursvc "github.com/opsfloor/licensehub/internal/app/service/purchase"
	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
	metrics "github.com/opsfloor/licensehub/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, licenses *licsvc.Service, purchases *pursvc.Service, orders *ordersvc.Service) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Back-office APIs: every operation requires a privileged actor
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.RequireActorMiddleware())
	handlers.RegisterLicenseRoutes(apiV1, licenses)
	handlers.RegisterActivationRoutes(apiV1, licenses)
	handlers.RegisterPurchaseRoutes(apiV1, purchases)
	handlers.RegisterOrderRoutes(apiV1, orders)

	// Partner intake: token-authenticated order submission
	partnerV1 := r.Group("/api/partner/v1")
	partnerV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.PartnerAuthMiddleware(cfg))
	handlers.RegisterPartnerOrderRoutes(partnerV1, orders)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
