package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/handlers"
	"github.com/ibcoder/portfolio/internal/logging"
	appmiddleware "github.com/ibcoder/portfolio/internal/middleware"
	"github.com/ibcoder/portfolio/web"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers are the request handlers mounted by RegisterRoutes.
type Handlers struct {
	Forms    *handlers.FormHandler
	Account  *handlers.AccountHandler
	UsersAPI *handlers.UsersAPI
}

// Server holds the echo instance and everything that must be released when
// it stops.
type Server struct {
	E        *echo.Echo
	cfg      config.Provider
	logger   *slog.Logger
	handlers Handlers
	closers  []func() error
}

// New creates the echo instance with the middleware chain every route shares.
func New(cfg config.Provider, logger *slog.Logger, renderer echo.Renderer, validator echo.Validator, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validator

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	// The JSON API is called by scripts and the http gateway, which carry no
	// CSRF cookie.
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        isAPIRequest,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	setupErrorHandling(e)

	return &Server{E: e, cfg: cfg, logger: logger, handlers: h}
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// setupErrorHandling installs the HTTP error handler. Errors that are not
// *echo.HTTPError are unexpected and get logged with a stack trace. API
// requests receive the JSON error envelope, pages plain text.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		apiCode := api.CodeInternal

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprint(he.Message)
			switch code {
			case http.StatusNotFound:
				apiCode = api.CodeNotFound
			case http.StatusMethodNotAllowed:
				apiCode = api.CodeMethodNotAllowed
			case http.StatusUnauthorized, http.StatusForbidden:
				apiCode = api.CodeUnauthorized
			case http.StatusTooManyRequests:
				apiCode = api.CodeRateLimited
			default:
				if code < 500 {
					apiCode = api.CodeValidation
				}
			}
		} else {
			logging.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}

		var writeErr error
		switch {
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(code)
		case isAPIRequest(c):
			writeErr = c.JSON(code, api.ErrorEnvelope{Error: api.ErrorBody{
				Code:          apiCode,
				Message:       message,
				ClientVersion: api.ClientVersion,
			}})
		default:
			writeErr = c.String(code, message)
		}
		if writeErr != nil {
			logging.FromContext(c.Request().Context()).Error("Failed to write error response", "error", writeErr)
		}
	}
}
