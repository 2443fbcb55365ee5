package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler_WithStackTrace(t *testing.T) {
	e := echo.New()

	// Capture the default logger; no request logger is attached here.
	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{AddSource: true}))
	originalLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(originalLogger)

	setupErrorHandling(e)

	e.GET("/test-unhandled-error", func(c echo.Context) error {
		return errors.New("a deliberate unhandled error occurred")
	})

	req := httptest.NewRequest(http.MethodGet, "/test-unhandled-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code, "Expected a 500 Internal Server Error response")
	assert.Equal(t, "Internal Server Error", rec.Body.String())

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "Internal Server Error (Unhandled)")
	assert.Contains(t, logOutput, "error=\"a deliberate unhandled error occurred\"")
	assert.Contains(t, logOutput, "stack_trace=")

	// A real stack trace starts in runtime/debug and passes through this file.
	assert.Contains(t, logOutput, "runtime/debug/stack.go")
	assert.Contains(t, logOutput, "internal/server/server_test.go")
}

func TestHTTPErrorHandler_APIEnvelope(t *testing.T) {
	e := echo.New()
	setupErrorHandling(e)

	e.GET("/api/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "slow down")
	})

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"unknown route", "/api/missing", http.StatusNotFound, `"code":"NOT_FOUND"`},
		{"http error keeps its message", "/api/teapot", http.StatusTooManyRequests, `"message":"slow down"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.Contains(t, rec.Body.String(), `"clientVersion":"1.0.0"`)
		})
	}

	t.Run("pages get plain text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", rec.Body.String())
	})
}

func TestShutdownRunsClosersInReverse(t *testing.T) {
	s := &Server{E: echo.New(), logger: slog.Default()}
	var order []string
	s.OnShutdown(func() error { order = append(order, "store"); return nil })
	s.OnShutdown(func() error { order = append(order, "events"); return errors.New("already closed") })

	err := s.Shutdown(t.Context())

	assert.ErrorContains(t, err, "already closed")
	assert.Equal(t, []string{"events", "store"}, order)
	assert.NoError(t, s.Shutdown(t.Context()), "closers run once")
}
