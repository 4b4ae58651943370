package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/fokusplaner/core/internal/infrastructure/config"
)

// rateLimiterConfig limits each client IP to RateLimitRequests per window
func rateLimiterConfig(cfg config.SecurityConfig) middleware.RateLimiterConfig {
	window := cfg.RateLimitWindow
	limit := rate.Limit(cfg.RateLimitRequests)
	if window > 0 {
		limit = rate.Limit(float64(cfg.RateLimitRequests) / window.Seconds())
	}

	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/ready"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: limit, Burst: cfg.RateLimitRequests, ExpiresIn: window},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}
}
