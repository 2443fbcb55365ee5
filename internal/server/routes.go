package server

import (
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/ibcoder/portfolio/internal/middleware"
	"github.com/ibcoder/portfolio/web/src/templates/components"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter()
	forms := s.handlers.Forms
	account := s.handlers.Account
	usersAPI := s.handlers.UsersAPI

	s.E.GET("/", account.Home)
	s.E.GET("/health", account.Health)
	s.E.GET("/books", account.Books, middleware.RequireSession(components.ModePath(form.ModeLogin)))

	for _, m := range form.Modes {
		path := components.ModePath(m)
		s.E.GET(path, forms.Page(m))
		s.E.POST(path, forms.Submit(m), rateLimiter)
	}
	s.E.GET("/auth/switch", forms.Switch)
	s.E.GET("/auth/logout", account.Logout)
	s.E.GET("/auth/reset-password", account.ResetPasswordGet)
	s.E.POST("/auth/reset-password", account.ResetPasswordPost, rateLimiter)

	apiGroup := s.E.Group("/api")
	apiGroup.Any("/users", usersAPI.Users, middleware.BearerToken(s.cfg.GetAdminAPIToken()))
	apiGroup.POST("/users/signup", usersAPI.SignUp, rateLimiter)
	apiGroup.POST("/users/verify", usersAPI.Verify, rateLimiter)
	apiGroup.POST("/users/contact", usersAPI.Contact, rateLimiter)
	apiGroup.POST("/users/forgot-password", usersAPI.ForgotPassword, rateLimiter)
	apiGroup.POST("/auth/callback/credentials", usersAPI.Credentials, rateLimiter)
}
