package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/ibcoder/portfolio/internal/rendering"
	"github.com/ibcoder/portfolio/internal/view"
	"github.com/ibcoder/portfolio/web/src/templates/pages"
	"github.com/labstack/echo/v4"
)

const (
	toastPasswordReset = "password-reset-success"
	toastSignedOut     = "signed-out"

	msgInvalidResetLink = "This reset link is invalid or has expired."
)

// AccountService is the part of the accounts service the pages need.
type AccountService interface {
	FindUser(ctx context.Context, id string) (*domain.User, error)
	ResetPassword(ctx context.Context, token, password string) (*domain.User, error)
}

// AccountHandler serves the home page, the reading list, sign out and the
// password reset flow.
type AccountHandler struct {
	svc       AccountService
	validator *validator.Validate
	renderer  rendering.Renderer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService, v *validator.Validate, renderer rendering.Renderer) *AccountHandler {
	return &AccountHandler{svc: svc, validator: v, renderer: renderer}
}

func (h *AccountHandler) Home(c echo.Context) error {
	return h.renderer.RenderPage(c, http.StatusOK, page(c, "", pages.Home(signedIn(c))))
}

// Books shows the reading list to the signed-in user.
func (h *AccountHandler) Books(c echo.Context) error {
	id, err := auth.CurrentUserID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	user, err := h.svc.FindUser(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		_ = auth.Logout(c)
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return h.renderer.RenderPage(c, http.StatusOK, page(c, "Books", pages.Books(user.Username, pages.ReadingList)))
}

// Logout clears the session and goes back home.
func (h *AccountHandler) Logout(c echo.Context) error {
	if err := auth.Logout(c); err != nil {
		return err
	}
	_ = view.PushToast(c, *view.Success(toastSignedOut, "You have been signed out."))
	return c.Redirect(http.StatusSeeOther, "/")
}

// ResetPasswordGet renders the new password form for the emailed token.
func (h *AccountHandler) ResetPasswordGet(c echo.Context) error {
	token := c.QueryParam("token")
	props := pages.ResetPasswordProps{Token: token, CSRF: csrfToken(c)}
	status := http.StatusOK
	if token == "" {
		props.Errors = map[string]string{"": msgInvalidResetLink}
		status = http.StatusBadRequest
	}
	return h.renderer.RenderPage(c, status, page(c, "Reset password", pages.ResetPassword(props)))
}

// ResetPasswordPost sets the new password and signs the user in.
func (h *AccountHandler) ResetPasswordPost(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed form submission").SetInternal(err)
	}

	props := pages.ResetPasswordProps{Token: req.Token, CSRF: csrfToken(c)}
	if errs := resetErrors(h.validator.Struct(&req)); errs != nil {
		props.Errors = errs
		return h.renderer.RenderPage(c, http.StatusUnprocessableEntity, page(c, "Reset password", pages.ResetPassword(props)))
	}

	user, err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if errors.Is(err, domain.ErrInvalidResetToken) {
		props.Errors = map[string]string{"": msgInvalidResetLink}
		return h.renderer.RenderPage(c, http.StatusBadRequest, page(c, "Reset password", pages.ResetPassword(props)))
	}
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	logging.FromContext(c.Request().Context()).Info("Password reset", "user_id", user.ID)
	if err := auth.Login(c, user.ID, false); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	_ = view.PushToast(c, *view.Success(toastPasswordReset, "Your password has been reset."))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AccountHandler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func resetErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": msgInvalidResetLink}
	}
	out := map[string]string{}
	for _, fe := range verrs {
		switch {
		case fe.Field() == "token":
			out[""] = msgInvalidResetLink
		case fe.Tag() == "eqfield":
			out["confirmPassword"] = "Passwords do not match"
		case fe.Tag() == "required":
			out[fe.Field()] = "Password is required"
		case fe.Tag() == "min":
			out[fe.Field()] = "Password must be at least 8 characters"
		default:
			out[fe.Field()] = "Password is invalid"
		}
	}
	return out
}
