package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "auth-session"
	userIDKey   = "user_id"
	pendingKey  = "pending_user_id"

	// RememberMeMaxAge is the cookie lifetime when "remember me" is ticked.
	RememberMeMaxAge = 30 * 24 * 60 * 60
)

// ErrNoSession is returned by CurrentUserID when nobody is signed in.
var ErrNoSession = errors.New("no active session")

// Login stores userID in the auth session. Without rememberMe the cookie
// lasts for the browser session only.
func Login(c echo.Context, userID string, rememberMe bool) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	}
	if rememberMe {
		sess.Options.MaxAge = RememberMeMaxAge
	}
	sess.Values[userIDKey] = userID
	delete(sess.Values, pendingKey)
	return sess.Save(c.Request(), c.Response())
}

// SetPendingVerification remembers the account this client signed up so a
// later verification code can sign it in.
func SetPendingVerification(c echo.Context, userID string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	if sess.IsNew {
		sess.Options = &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			Secure:   c.Scheme() == "https",
			SameSite: http.SameSiteLaxMode,
		}
	}
	sess.Values[pendingKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// PendingVerification returns the account awaiting verification by this
// client, or "" when there is none.
func PendingVerification(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[pendingKey].(string)
	return id
}

// Logout expires the auth session cookie.
func Logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, userIDKey)
	delete(sess.Values, pendingKey)
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	return sess.Save(c.Request(), c.Response())
}

// CurrentUserID returns the signed-in user's id.
func CurrentUserID(c echo.Context) (string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", err
	}
	id, _ := sess.Values[userIDKey].(string)
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}
