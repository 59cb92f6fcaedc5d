package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       repository.Pinger
	redis       repository.Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. redis may report
// persistence.ErrRedisDisabled, which does not fail readiness.
func NewHealthHandler(serviceName, version string, store, redis repository.Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: store, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(dto.OK("alive", fiber.Map{
		"service": h.serviceName,
		"version": h.version,
	}))
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.store == nil {
		depStatus["store"] = "not configured"
		ready = false
	} else if err := h.store.Ping(ctx); err != nil {
		depStatus["store"] = err.Error()
		ready = false
	} else {
		depStatus["store"] = "ok"
	}

	if h.redis != nil {
		err := h.redis.Ping(ctx)
		switch {
		case errors.Is(err, persistence.ErrRedisDisabled):
			depStatus["redis"] = "disabled"
		case err != nil:
			depStatus["redis"] = err.Error()
			ready = false
		default:
			depStatus["redis"] = "ok"
		}
	}

	if ready {
		return c.JSON(dto.OK("ready", depStatus))
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ActionResponse{
		Success: false,
		Message: "one or more dependencies unavailable",
		Data:    depStatus,
		Code:    "DEPENDENCY_UNAVAILABLE",
	})
}

// Metrics exposes the in-memory request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(dto.OK("metrics", h.metrics.Snapshot()))
}
