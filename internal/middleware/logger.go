package middleware

import (
	"log/slog"
	"time"

	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/labstack/echo/v4"
)

// Logger injects a request-scoped logger carrying the request ID into the
// request context and logs one line per completed request.
// It must run after the RequestID middleware.
func Logger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			requestLogger := base.With("request_id", reqID)

			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), requestLogger)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler settle the status before logging it.
				c.Error(err)
			}

			requestLogger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"htmx", req.Header.Get("HX-Request") == "true",
			)
			return nil
		}
	}
}
