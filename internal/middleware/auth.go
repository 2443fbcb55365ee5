package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserIDContextKey holds the signed-in user's id on the echo context.
const UserIDContextKey = "user_id"

// RequireSession protects routes that need a signed-in user. Anonymous
// visitors are sent to loginPath; htmx requests get an HX-Redirect instead of
// a 303 so the whole page navigates.
func RequireSession(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := auth.CurrentUserID(c)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					// A cookie we cannot decode, e.g. after a secret rotation.
					logging.FromContext(c.Request().Context()).Warn("Discarding unreadable session", "error", err)
				}
				if c.Request().Header.Get("HX-Request") == "true" {
					c.Response().Header().Set("HX-Redirect", loginPath)
					return c.NoContent(http.StatusOK)
				}
				return c.Redirect(http.StatusSeeOther, loginPath)
			}

			c.Set(UserIDContextKey, id)
			return next(c)
		}
	}
}

// BearerToken guards admin endpoints with a static token sent as
// "Authorization: Bearer <token>". An empty token disables the check.
func BearerToken(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(echo.Context) bool { return token == "" },
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, api.ErrorEnvelope{Error: api.ErrorBody{
				Code:          api.CodeUnauthorized,
				Message:       "A valid bearer token is required",
				ClientVersion: api.ClientVersion,
			}})
		},
	})
}
