package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

// Limiter is satisfied by ratelimit.RateLimiter.
type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit throttles requests per client IP for the given action.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if ok, wait := limiter.Allow(ip, action); !ok {
				logger.Warn("RATE LIMIT: blocked %s request from IP %s (retry in %v)", action, ip, wait)
				return errors.TooManyRequests("Too many requests, please slow down", wait)
			}

			return next(c)
		}
	}
}
