package handlers

import (
	"github.com/a-h/templ"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/view"
	"github.com/ibcoder/portfolio/web/src/templates/layouts"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"maragu.dev/gomponents"
)

// csrfToken returns the token set by echo's CSRF middleware, if any.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func signedIn(c echo.Context) bool {
	_, err := auth.CurrentUserID(c)
	return err == nil
}

// page wraps content in the base layout, draining pending toasts and adding
// extra on top.
func page(c echo.Context, title string, content gomponents.Node, extra ...view.Toast) templ.Component {
	toasts := view.PullToasts(c)
	for _, t := range extra {
		toasts = toasts.Push(t)
	}
	return layouts.Base(layouts.PageData{
		Title:    title,
		Toasts:   toasts,
		SignedIn: signedIn(c),
		CSRF:     csrfToken(c),
	}, content)
}
