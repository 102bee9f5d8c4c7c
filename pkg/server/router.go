package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
	"prizewheel/pkg/health"
	"prizewheel/pkg/middleware"
)

// Routes is implemented by every API handler mounted on the engine.
type Routes interface {
	Register(r gin.IRouter)
}

// AsRoutes annotates a handler constructor so its result joins the
// "routes" group.
func AsRoutes(f any) any {
	return fx.Annotate(f,
		fx.As(new(Routes)),
		fx.ResultTags(`group:"routes"`),
	)
}

type EngineParams struct {
	fx.In
	Config   *config.Config
	Logger   *zap.Logger
	Health   health.HealthService
	Gatherer prometheus.Gatherer `optional:"true"`
	Routes   []Routes            `group:"routes"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(p.Logger.Named("http")), middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	for _, routes := range p.Routes {
		routes.Register(r)
	}

	return r
}
