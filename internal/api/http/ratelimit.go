package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const loginRateKeyPrefix = "helpdesk:login:"

// AttemptCounter counts hits on a key within a fixed window.
type AttemptCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// LoginRateLimiter throttles requests per client IP. When the counter fails
// the request is let through.
func LoginRateLimiter(counter AttemptCounter, limit int, window time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return c.Next()
		}
		count, err := counter.IncrWindow(c.UserContext(), loginRateKeyPrefix+c.IP(), window)
		if err != nil {
			logger.Debug("login rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count > int64(limit) {
			logger.Warn("login rate limit exceeded", zap.String("ip", c.IP()), zap.Int64("attempts", count))
			return apperrors.NewRateLimited("Too many login attempts, try again later")
		}
		return c.Next()
	}
}
