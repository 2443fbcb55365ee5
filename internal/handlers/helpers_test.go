package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/sessions"
	"github.com/ibcoder/portfolio/internal/accounts"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/database"
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/ibcoder/portfolio/internal/handlers"
	"github.com/ibcoder/portfolio/internal/pubsub"
	"github.com/ibcoder/portfolio/internal/rendering"
	"github.com/ibcoder/portfolio/internal/testutils"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// last decodes the most recent payload published on topic into v.
func (p *recordingPublisher) last(t *testing.T, topic string, v any) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.messages) - 1; i >= 0; i-- {
		if p.messages[i].Topic == topic {
			require.NoError(t, json.Unmarshal(p.messages[i].Payload, v))
			return
		}
	}
	t.Fatalf("nothing published on %s", topic)
}

type testEnv struct {
	e      *echo.Echo
	svc    *accounts.Service
	events *recordingPublisher
}

// setupHandlersTest wires the handlers to a real accounts service over an
// in-memory sqlite store, the way the server does.
func setupHandlersTest(t *testing.T) *testEnv {
	t.Helper()

	store, err := database.OpenSQLite(context.Background(), testutils.MemoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	v := form.NewValidator()
	events := &recordingPublisher{}
	svc := accounts.NewService(store, events, v, accounts.WithBcryptCost(bcrypt.MinCost))
	bridge := auth.NewCredentialsBridge(svc, "/")
	renderer := rendering.NewUniversalRenderer()

	e := echo.New()
	e.Renderer = renderer
	e.Validator = handlers.NewValidator(v)
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testutils.SessionSecret))))

	forms := handlers.NewFormHandler(form.Deps{
		Gateway:        svc,
		Bridge:         bridge,
		Validator:      v,
		CallbackURL:    "/",
		VerifyRedirect: "/books",
		Flight:         &singleflight.Group{},
	}, "", renderer)
	for _, m := range form.Modes {
		path := pathFor(m)
		e.GET(path, forms.Page(m))
		e.POST(path, forms.Submit(m))
	}
	e.GET("/auth/switch", forms.Switch)

	account := handlers.NewAccountHandler(svc, v, renderer)
	e.GET("/", account.Home)
	e.GET("/books", account.Books)
	e.GET("/auth/logout", account.Logout)
	e.GET("/auth/reset-password", account.ResetPasswordGet)
	e.POST("/auth/reset-password", account.ResetPasswordPost)
	e.GET("/health", account.Health)

	usersAPI := handlers.NewUsersAPI(svc, bridge, false)
	e.Any("/api/users", usersAPI.Users)
	e.POST("/api/users/signup", usersAPI.SignUp)
	e.POST("/api/users/verify", usersAPI.Verify)
	e.POST("/api/users/contact", usersAPI.Contact)
	e.POST("/api/users/forgot-password", usersAPI.ForgotPassword)
	e.POST("/api/auth/callback/credentials", usersAPI.Credentials)

	return &testEnv{e: e, svc: svc, events: events}
}

func pathFor(m form.Mode) string {
	switch m {
	case form.ModeSignup:
		return "/auth/signup"
	case form.ModeLogin:
		return "/auth/login"
	case form.ModeContact:
		return "/contact"
	case form.ModeForgotPassword:
		return "/auth/forgot-password"
	default:
		return "/auth/verify"
	}
}

type requestOption func(*http.Request)

func withHTMX() requestOption {
	return func(r *http.Request) { r.Header.Set("HX-Request", "true") }
}

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (env *testEnv) get(path string, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) postForm(path string, values url.Values, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) postJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, body io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(body)
	require.NoError(t, err)
	return doc
}

func signupValues(email string) url.Values {
	return url.Values{
		"username":        {"ada"},
		"email":           {email},
		"password":        {"correct horse"},
		"confirmPassword": {"correct horse"},
	}
}
