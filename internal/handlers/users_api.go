package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/labstack/echo/v4"
)

// UserService is what the user API delegates to.
type UserService interface {
	form.Gateway
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, req api.SignUpRequest) (*domain.User, error)
}

// UsersAPI serves the JSON endpoints under /api.
type UsersAPI struct {
	svc    UserService
	bridge form.SessionBridge
	debug  bool
}

// NewUsersAPI creates the API handler. With debug set, error envelopes carry
// a stack trace.
func NewUsersAPI(svc UserService, bridge form.SessionBridge, debug bool) *UsersAPI {
	return &UsersAPI{svc: svc, bridge: bridge, debug: debug}
}

// Users handles /api/users for every method: GET lists, POST creates and
// anything else is refused with 405.
func (h *UsersAPI) Users(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.list(c)
	case http.MethodPost:
		return h.create(c)
	default:
		c.Response().Header().Set(echo.HeaderAllow, strings.Join([]string{http.MethodGet, http.MethodPost}, ", "))
		return c.JSON(http.StatusMethodNotAllowed, errorEnvelope(api.CodeMethodNotAllowed,
			fmt.Sprintf("Method %s is not allowed", c.Request().Method)))
	}
}

func (h *UsersAPI) list(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err, h.debug)
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

func (h *UsersAPI) create(c echo.Context) error {
	var req api.SignUpRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	user, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, h.debug)
	}
	return c.JSON(http.StatusCreated, UserResponse{User: user})
}

func (h *UsersAPI) SignUp(c echo.Context) error {
	var req api.SignUpRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	reply, err := h.svc.SignUp(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, h.debug)
	}
	return c.JSON(http.StatusCreated, reply)
}

func (h *UsersAPI) Verify(c echo.Context) error {
	var req api.VerifyRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	reply, err := h.svc.Verify(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, h.debug)
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *UsersAPI) Contact(c echo.Context) error {
	var req api.ContactRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	reply, err := h.svc.Contact(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, h.debug)
	}
	return c.JSON(http.StatusOK, reply)
}

// ForgotPassword always answers 200 for well-formed requests so the endpoint
// cannot be used to probe for registered addresses.
func (h *UsersAPI) ForgotPassword(c echo.Context) error {
	var req api.ForgotPasswordRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	reply, err := h.svc.ForgotPassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, h.debug)
	}
	return c.JSON(http.StatusOK, reply)
}

// Credentials is the session bridge over JSON. A successful sign in also
// sets the session cookie.
func (h *UsersAPI) Credentials(c echo.Context) error {
	var req api.CredentialsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	res, err := h.bridge.SignIn(c.Request().Context(), auth.Credentials{
		Email:       req.Email,
		Password:    req.Password,
		RememberMe:  req.RememberMe,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return respondError(c, err, h.debug)
	}
	if res.OK {
		if err := auth.Login(c, res.UserID, req.RememberMe); err != nil {
			return respondError(c, err, h.debug)
		}
	}
	return c.JSON(http.StatusOK, api.SignInResponse{OK: res.OK, Error: res.Error, URL: res.URL})
}

// bind decodes and validates the request body. When it reports false the
// error response has already been written and err is the write error.
func (h *UsersAPI) bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, errorEnvelope(api.CodeValidation, "Malformed request body"))
	}
	if err := c.Validate(req); err != nil {
		return false, respondError(c, err, h.debug)
	}
	return true, nil
}
