package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"prizewheel/pkg/db"
	"prizewheel/pkg/kvstore"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	checkTimeout = 2 * time.Second
)

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps,omitempty"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
	Check(ctx context.Context) Health
}

type health struct {
	db    *gorm.DB
	store kvstore.Store
}

type HealthParams struct {
	fx.In
	DB    *gorm.DB      `optional:"true"`
	Store kvstore.Store `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return &health{
		db:    p.DB,
		store: p.Store,
	}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  statusHealthy,
		Message: "OK",
	})
}

func (h *health) Readiness(c *gin.Context) {
	report := h.Check(c.Request.Context())
	code := http.StatusOK
	if report.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (h *health) Check(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	report := Health{
		Status:  statusHealthy,
		Message: "OK",
	}

	if h.db != nil {
		report.add("database", db.Ping(ctx, h.db))
	}

	if p, ok := h.store.(kvstore.Pinger); ok {
		report.add("kvstore", p.Ping(ctx))
	}

	return report
}

func (r *Health) add(name string, err error) {
	dep := Dependency{
		Name:    name,
		Status:  statusHealthy,
		Message: "OK",
	}
	if err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
		r.Status = statusUnhealthy
		r.Message = name + " unavailable"
	}
	r.Deps = append(r.Deps, dep)
}
