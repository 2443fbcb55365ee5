package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/ibcoder/portfolio/internal/rendering"
	"github.com/ibcoder/portfolio/internal/view"
	"github.com/ibcoder/portfolio/web/src/templates/components"
	"github.com/ibcoder/portfolio/web/src/templates/pages"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
)

const (
	clientSessionName = "client-session"
	clientIDKey       = "id"
)

// FormHandler serves the signup, login, contact, forgot password and
// verification pages. A controller is mounted per request for the page's
// mode and discarded once the response is written.
type FormHandler struct {
	deps      form.Deps
	socialURL string
	renderer  rendering.Renderer
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(deps form.Deps, socialURL string, renderer rendering.Renderer) *FormHandler {
	return &FormHandler{deps: deps, socialURL: socialURL, renderer: renderer}
}

// Page renders the empty form of mode m.
func (h *FormHandler) Page(m form.Mode) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl, err := form.New(m, h.deps)
		if err != nil {
			return err
		}
		props := h.props(c, ctrl.State(), ctrl.Visible)
		return h.renderer.RenderPage(c, http.StatusOK, page(c, components.Heading(m), pages.FormPage(props)))
	}
}

// Submit binds the posted values into mode m's form and runs the
// controller pipeline. htmx requests get the form panel back plus the
// toasts out of band; plain requests get a full page or a 303.
func (h *FormHandler) Submit(m form.Mode) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl, err := form.New(m, h.deps,
			form.WithClientKey(clientKey(c)),
			form.WithPendingUser(auth.PendingVerification(c)),
		)
		if err != nil {
			return err
		}

		f := ctrl.Blank()
		if err := c.Bind(f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed form submission").SetInternal(err)
		}

		out := ctrl.Submit(c.Request().Context(), f)

		if out.PendingUserID != "" {
			if err := auth.SetPendingVerification(c, out.PendingUserID); err != nil {
				return fmt.Errorf("failed to remember signup: %w", err)
			}
		}
		if out.UserID != "" {
			if err := auth.Login(c, out.UserID, out.RememberMe); err != nil {
				return fmt.Errorf("failed to open session: %w", err)
			}
		}

		if out.Redirect != "" {
			return h.navigate(c, out.Redirect, out.Toast)
		}
		if out.Mode != m && !isHTMX(c) {
			return h.navigate(c, components.ModePath(out.Mode), out.Toast)
		}

		state := form.State{Mode: out.Mode, Form: out.Form, Errors: out.Errors, EmailError: out.EmailError}
		props := h.props(c, state, ctrl.Visible)

		var extra []view.Toast
		if out.Toast != nil {
			extra = append(extra, *out.Toast)
		}

		if isHTMX(c) {
			if out.Mode != m {
				c.Response().Header().Set("HX-Push-Url", components.ModePath(out.Mode))
			}
			toasts := view.PullToasts(c)
			for _, t := range extra {
				toasts = toasts.Push(t)
			}
			// htmx does not swap 4xx responses, so field errors stay 200 here.
			return h.renderer.RenderPage(c, http.StatusOK, gomponents.Group{
				components.FormPanel(props),
				components.ToastsOOB(toasts),
			})
		}

		status := http.StatusOK
		if len(out.Errors) > 0 || out.EmailError != "" {
			status = http.StatusUnprocessableEntity
		}
		return h.renderer.RenderPage(c, status, page(c, components.Heading(out.Mode), pages.FormPage(props), extra...))
	}
}

// Switch swaps the form panel to another mode in place. Only the explicit
// transitions are accepted.
func (h *FormHandler) Switch(c echo.Context) error {
	from, err := form.ParseMode(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := form.ParseMode(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctrl, err := form.New(from, h.deps)
	if err != nil {
		return err
	}
	if err := ctrl.SwitchTo(to); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, components.ModePath(to))
	}
	return h.renderer.RenderPage(c, http.StatusOK, components.FormPanel(h.props(c, ctrl.State(), ctrl.Visible)))
}

func (h *FormHandler) props(c echo.Context, s form.State, visible func(form.Field) bool) components.FormProps {
	return components.FormProps{
		State:     s,
		Visible:   visible,
		CSRF:      csrfToken(c),
		SocialURL: h.socialURL,
	}
}

// navigate queues the toast for the next page and redirects, using
// HX-Redirect for htmx so the whole page changes.
func (h *FormHandler) navigate(c echo.Context, to string, toast *view.Toast) error {
	if toast != nil {
		if err := view.PushToast(c, *toast); err != nil {
			return fmt.Errorf("failed to queue toast: %w", err)
		}
	}
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", to)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, to)
}

// clientKey identifies the browser across requests so duplicate submissions
// from the same client can be collapsed.
func clientKey(c echo.Context) string {
	sess, err := session.Get(clientSessionName, c)
	if err != nil {
		return ""
	}
	if id, _ := sess.Values[clientIDKey].(string); id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Values[clientIDKey] = id
	sess.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return ""
	}
	return id
}
