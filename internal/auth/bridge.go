// Package auth bridges credential sign-in to cookie sessions.
package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/ibcoder/portfolio/internal/domain"
)

// ErrorCredentialsSignin is the result code for a wrong email or password.
const ErrorCredentialsSignin = "CredentialsSignin"

// Credentials is what the login form hands to the bridge.
type Credentials struct {
	Email       string
	Password    string
	RememberMe  bool
	CallbackURL string
}

// SignInResult reports the outcome of a sign-in attempt. On success UserID
// identifies the account the session should be opened for.
type SignInResult struct {
	OK     bool
	Error  string
	URL    string
	UserID string
}

// Authenticator verifies an email/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// CredentialsBridge turns credentials into a SignInResult.
type CredentialsBridge struct {
	auth            Authenticator
	defaultCallback string
}

// NewCredentialsBridge returns a bridge that falls back to defaultCallback
// when a request carries no usable callback URL.
func NewCredentialsBridge(a Authenticator, defaultCallback string) *CredentialsBridge {
	if defaultCallback == "" {
		defaultCallback = "/"
	}
	return &CredentialsBridge{auth: a, defaultCallback: defaultCallback}
}

// SignIn authenticates creds. Wrong credentials are a result, not an error;
// the error return is reserved for infrastructure failures.
func (b *CredentialsBridge) SignIn(ctx context.Context, creds Credentials) (SignInResult, error) {
	user, err := b.auth.Authenticate(ctx, creds.Email, creds.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return SignInResult{OK: false, Error: ErrorCredentialsSignin}, nil
	}
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{OK: true, URL: b.callback(creds.CallbackURL), UserID: user.ID}, nil
}

// callback accepts only same-site relative paths so the login form cannot be
// turned into an open redirect.
func (b *CredentialsBridge) callback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return b.defaultCallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return b.defaultCallback
	}
	return u.String()
}
