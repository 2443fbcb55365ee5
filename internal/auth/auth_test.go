package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	user *domain.User
	err  error
}

func (f fakeAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return f.user, f.err
}

func TestCredentialsBridge_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success uses callback", func(t *testing.T) {
		b := auth.NewCredentialsBridge(fakeAuthenticator{user: &domain.User{ID: "u1"}}, "/")
		res, err := b.SignIn(ctx, auth.Credentials{Email: "a@gmail.com", Password: "pw", CallbackURL: "/books?page=2"})
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, "/books?page=2", res.URL)
		assert.Equal(t, "u1", res.UserID)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		b := auth.NewCredentialsBridge(fakeAuthenticator{err: domain.ErrInvalidCredentials}, "/")
		res, err := b.SignIn(ctx, auth.Credentials{})
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, auth.ErrorCredentialsSignin, res.Error)
	})

	t.Run("infrastructure failure", func(t *testing.T) {
		b := auth.NewCredentialsBridge(fakeAuthenticator{err: errors.New("db down")}, "/")
		_, err := b.SignIn(ctx, auth.Credentials{})
		assert.Error(t, err)
	})

	t.Run("foreign callbacks fall back to default", func(t *testing.T) {
		b := auth.NewCredentialsBridge(fakeAuthenticator{user: &domain.User{ID: "u1"}}, "/home")
		for _, cb := range []string{"", "https://evil.example", "//evil.example", "/\\evil.example", "books"} {
			res, err := b.SignIn(ctx, auth.Credentials{CallbackURL: cb})
			require.NoError(t, err)
			assert.Equal(t, "/home", res.URL, cb)
		}
	})
}

func TestSessions(t *testing.T) {
	e := echo.New()
	store := sessions.NewCookieStore([]byte("a-very-secret-key-for-testing-!"))

	run := func(req *http.Request, h echo.HandlerFunc) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		require.NoError(t, session.Middleware(store)(h)(e.NewContext(req, rec)))
		return rec
	}

	t.Run("no session", func(t *testing.T) {
		run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
			_, err := auth.CurrentUserID(c)
			assert.ErrorIs(t, err, auth.ErrNoSession)
			return nil
		})
	})

	t.Run("login then read", func(t *testing.T) {
		rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
			return auth.Login(c, "u1", true)
		})
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, auth.RememberMeMaxAge, cookies[0].MaxAge)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[0])
		run(req, func(c echo.Context) error {
			id, err := auth.CurrentUserID(c)
			require.NoError(t, err)
			assert.Equal(t, "u1", id)
			return nil
		})
	})

	t.Run("browser session cookie without remember me", func(t *testing.T) {
		rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
			return auth.Login(c, "u1", false)
		})
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Zero(t, cookies[0].MaxAge)
	})

	t.Run("pending verification is not a session and clears on login", func(t *testing.T) {
		rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
			return auth.SetPendingVerification(c, "u1")
		})
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[0])
		rec = run(req, func(c echo.Context) error {
			assert.Equal(t, "u1", auth.PendingVerification(c))
			_, err := auth.CurrentUserID(c)
			assert.ErrorIs(t, err, auth.ErrNoSession)
			return auth.Login(c, "u1", false)
		})

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rec.Result().Cookies()[0])
		run(req, func(c echo.Context) error {
			assert.Empty(t, auth.PendingVerification(c))
			return nil
		})
	})
}
