package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "json", "debug")

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(Logger(base))

	e.GET("/hello", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return c.String(http.StatusOK, "hi")
	})
	e.GET("/broken", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	e.GET("/fails", func(c echo.Context) error {
		return errors.New("boom")
	})

	t.Run("handler logger carries the request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

		id := rec.Header().Get(echo.HeaderXRequestID)
		assert.NotEmpty(t, id)
		assert.Contains(t, buf.String(), `"msg":"inside handler","request_id":"`+id+`"`)
		assert.Contains(t, buf.String(), `"status":200`)
	})

	t.Run("status reflects handled errors", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Contains(t, buf.String(), `"status":418`)
	})

	t.Run("plain errors become 500", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fails", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, buf.String(), `"status":500`)
	})
}
