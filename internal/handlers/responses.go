package handlers

import (
	"runtime/debug"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/labstack/echo/v4"
)

// UsersResponse is the body of GET /api/users.
type UsersResponse struct {
	Users []domain.User `json:"users"`
}

// UserResponse is the body of POST /api/users.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// respondError writes err as the JSON error envelope. Stacks are only
// included when withStack is set.
func respondError(c echo.Context, err error, withStack bool) error {
	status, env := api.Classify(err)
	if status >= 500 {
		logging.FromContext(c.Request().Context()).Error("API request failed", "path", c.Path(), "error", err)
	}
	if withStack {
		env.Error.Stack = string(debug.Stack())
	}
	return c.JSON(status, env)
}

func errorEnvelope(code, message string) api.ErrorEnvelope {
	return api.ErrorEnvelope{Error: api.ErrorBody{Code: code, Message: message, ClientVersion: api.ClientVersion}}
}
