package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"propgen/domain/dto"
	"propgen/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is reachable
type Check func(ctx context.Context) error

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	checks   map[string]Check
	composer string
}

func NewHealthHandler(checks map[string]Check, composer string) IHealthHandler {
	return &HealthHandler{checks: checks, composer: composer}
}

// Healthz answers 200 when every dependency responds and 503 otherwise
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := dto.HealthRes{Status: "ok", Checks: map[string]string{}, Composer: h.composer}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.GetLogger().WithField("check", name).WithField("error", err).Warn("health check failed")
			res.Checks[name] = "down"
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "up"
	}
	c.JSON(code, res)
}
