package middleware

import (
	"net/http"
	"strings"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RateLimiter throttles form and API submissions per client IP. The memory
// store refills at 10 requests per second with a burst of 10.
func RateLimiter() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// In-memory counts are fine for a single instance.
		Store: middleware.NewRateLimiterMemoryStore(10),

		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			const msg = "Too many requests. Please try again later."
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return c.JSON(http.StatusTooManyRequests, api.ErrorEnvelope{Error: api.ErrorBody{
					Code:          api.CodeRateLimited,
					Message:       msg,
					ClientVersion: api.ClientVersion,
				}})
			}
			return c.String(http.StatusTooManyRequests, msg)
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
