// Package form implements the multi-mode signup, login, contact, password
// recovery and verification form: its state, validation, sanitization and the
// submission pipeline of each mode.
package form

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/ibcoder/portfolio/internal/view"
	"golang.org/x/sync/singleflight"
)

// Toast ids. A repeated outcome reuses its id so the new toast replaces the
// pending one.
const (
	ToastSignUpSuccess         = "sign-up-success"
	ToastSignUpFailed          = "sign-up-failed"
	ToastLoginSuccess          = "login-success"
	ToastLoginError            = "login-error"
	ToastLoginFailed           = "login-failed"
	ToastContactSuccess        = "contact-success"
	ToastContactFailed         = "contact-failed"
	ToastForgotPasswordSuccess = "forgot-password-success"
	ToastForgotPasswordFailed  = "forgot-password-failed"
	ToastVerificationSuccess   = "verification-success"
	ToastVerificationFailed    = "verification-failed"
)

// User-facing messages.
const (
	MsgGenericFailure     = "Some error happened"
	MsgWelcomeBack        = "Welcome back"
	MsgInvalidCredentials = "Invalid username or password"
	MsgSignInRetry        = "Some error occurred. Please try again!"
	MsgContactIncomplete  = "Please fill all the fields in the form"

	msgSignedUp     = "Your account has been created."
	msgVerified     = "Your email has been verified."
	msgContactSent  = "Your message has been sent."
	msgResetEmailed = "Check your inbox for a reset link."
)

const DefaultTimeout = 10 * time.Second

// Gateway carries the dispatched submissions to the server side, either in
// process or over HTTP.
type Gateway interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (api.Reply, error)
	Verify(ctx context.Context, req api.VerifyRequest) (api.Reply, error)
	Contact(ctx context.Context, req api.ContactRequest) (api.Reply, error)
	ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (api.Reply, error)
}

// SessionBridge signs a user in with credentials.
type SessionBridge interface {
	SignIn(ctx context.Context, creds auth.Credentials) (auth.SignInResult, error)
}

// Deps are the collaborators of a Controller. Gateway and Bridge are required.
type Deps struct {
	Gateway        Gateway
	Bridge         SessionBridge
	Validator      *validator.Validate
	Sanitizer      *Sanitizer
	Timeout        time.Duration
	CallbackURL    string
	VerifyRedirect string
	// Flight collapses concurrent identical submissions when shared across requests.
	Flight *singleflight.Group
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPendingUser names the account whose verification code this client
// received at signup. Only that account is signed in by a verification.
func WithPendingUser(userID string) Option {
	return func(c *Controller) { c.pendingUser = userID }
}

// WithClientKey identifies the submitting client for duplicate suppression.
func WithClientKey(key string) Option {
	return func(c *Controller) { c.clientKey = key }
}

// Field names a password input whose visibility can be toggled.
type Field string

const (
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// State is the active mode together with the values and errors to render.
type State struct {
	Mode       Mode
	Form       Form
	Errors     map[string]string
	EmailError string
}

// Outcome is the result of one submission.
type Outcome struct {
	// Mode is the active mode after the submission.
	Mode       Mode
	Form       Form
	Errors     map[string]string
	EmailError string
	Toast      *view.Toast
	// Redirect is set when the page should navigate away.
	Redirect string
	// Reset reports that the fields were cleared.
	Reset bool
	// Dispatched reports that the gateway or bridge was called.
	Dispatched bool
	// UserID and RememberMe are set when a session should be opened.
	UserID     string
	RememberMe bool

	// PendingUserID is the account created by a signup, awaiting verification.
	PendingUserID string
}

// Controller is the request-scoped state machine behind the form.
type Controller struct {
	deps        Deps
	clientKey   string
	pendingUser string

	mode     Mode
	form     Form
	errors   map[string]string
	emailErr string
	visible  map[Field]bool
}

// New mounts a controller in the initial mode.
func New(initial Mode, deps Deps, opts ...Option) (*Controller, error) {
	if Blank(initial) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, initial)
	}
	if deps.Gateway == nil || deps.Bridge == nil {
		return nil, errors.New("form: gateway and session bridge are required")
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = NewSanitizer()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.VerifyRedirect == "" {
		deps.VerifyRedirect = "/"
	}

	c := &Controller{deps: deps, visible: map[Field]bool{}}
	for _, opt := range opts {
		opt(c)
	}
	c.enter(initial)
	return c, nil
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// State returns what the active mode should render.
func (c *Controller) State() State {
	return State{Mode: c.mode, Form: c.form, Errors: c.errors, EmailError: c.emailErr}
}

// Blank returns an empty form of the active mode, ready for request binding.
func (c *Controller) Blank() Form { return Blank(c.mode) }

// SwitchTo moves to another mode when the transition is allowed. The new mode
// starts with empty fields.
func (c *Controller) SwitchTo(m Mode) error {
	if !CanSwitch(c.mode, m) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, c.mode, m)
	}
	c.enter(m)
	return nil
}

func (c *Controller) enter(m Mode) {
	c.mode = m
	c.form = Blank(m)
	c.errors = nil
	c.emailErr = ""
}

// ToggleVisibility flips whether a password field shows its text.
func (c *Controller) ToggleVisibility(f Field) {
	c.visible[f] = !c.visible[f]
}

// Visible reports whether a password field shows its text.
func (c *Controller) Visible(f Field) bool { return c.visible[f] }

// Submit runs the pipeline of the active mode on f.
func (c *Controller) Submit(ctx context.Context, f Form) Outcome {
	c.errors = nil
	c.emailErr = ""

	if f == nil || f.FormMode() != c.mode {
		logging.FromContext(ctx).Warn("Rejected form for inactive mode", "mode", c.mode)
		return c.outcome(view.Failure(failedToast(c.mode), MsgGenericFailure))
	}

	if errs := FieldErrors(c.deps.Validator, f); errs != nil {
		c.form = f
		c.errors = errs
		return c.outcome(nil)
	}

	switch form := f.(type) {
	case *SignupForm:
		return c.submitSignup(ctx, form)
	case *LoginForm:
		return c.submitLogin(ctx, form)
	case *ContactForm:
		return c.submitContact(ctx, form)
	case *ForgotPasswordForm:
		return c.submitForgotPassword(ctx, form)
	case *VerificationForm:
		return c.submitVerification(ctx, form)
	default:
		return c.outcome(view.Failure(failedToast(c.mode), MsgGenericFailure))
	}
}

func (c *Controller) submitSignup(ctx context.Context, f *SignupForm) Outcome {
	clean := &SignupForm{
		Username:          c.deps.Sanitizer.Clean(f.Username),
		Email:             c.deps.Sanitizer.Clean(f.Email),
		Password:          f.Password,
		ConfirmPassword:   f.ConfirmPassword,
		SignForNewsLetter: f.SignForNewsLetter,
	}
	c.form = clean

	if !ProviderAllowed(clean.Email) {
		c.emailErr = ProviderError()
		return c.outcome(nil)
	}

	req := api.SignUpRequest{
		Username:          clean.Username,
		Email:             clean.Email,
		Password:          clean.Password,
		SignForNewsLetter: clean.SignForNewsLetter,
	}
	v, err := c.dispatch(ctx, req, func(ctx context.Context) (any, error) {
		return c.deps.Gateway.SignUp(ctx, req)
	})
	if err != nil {
		return c.failed(ctx, err, view.Failure(ToastSignUpFailed, failureMessage(err)))
	}

	c.enter(ModeLogin)
	out := c.outcome(view.Success(ToastSignUpSuccess, messageOr(v, msgSignedUp)))
	out.Dispatched = true
	out.Reset = true
	if reply, ok := v.(api.Reply); ok {
		out.PendingUserID = reply.UserID
	}
	return out
}

func (c *Controller) submitLogin(ctx context.Context, f *LoginForm) Outcome {
	clean := &LoginForm{
		Email:      c.deps.Sanitizer.Clean(f.Email),
		Password:   f.Password,
		RememberMe: f.RememberMe,
	}
	c.form = clean

	creds := auth.Credentials{
		Email:       clean.Email,
		Password:    clean.Password,
		RememberMe:  clean.RememberMe,
		CallbackURL: c.deps.CallbackURL,
	}
	v, err := c.dispatch(ctx, creds, func(ctx context.Context) (any, error) {
		return c.deps.Bridge.SignIn(ctx, creds)
	})
	if err != nil {
		return c.failed(ctx, err, view.Failure(ToastLoginFailed, failureMessage(err)))
	}

	res, _ := v.(auth.SignInResult)
	if !res.OK {
		msg := MsgSignInRetry
		if res.Error == auth.ErrorCredentialsSignin {
			msg = MsgInvalidCredentials
		}
		return c.failed(ctx, fmt.Errorf("sign in rejected: %s", res.Error), view.Failure(ToastLoginError, msg))
	}

	out := c.succeeded(view.Success(ToastLoginSuccess, MsgWelcomeBack))
	out.Redirect = res.URL
	if out.Redirect == "" {
		out.Redirect = "/"
	}
	out.UserID = res.UserID
	out.RememberMe = clean.RememberMe
	return out
}

func (c *Controller) submitContact(ctx context.Context, f *ContactForm) Outcome {
	clean := &ContactForm{
		Name:    c.deps.Sanitizer.Clean(f.Name),
		Email:   c.deps.Sanitizer.Clean(f.Email),
		Subject: c.deps.Sanitizer.Clean(f.Subject),
		Message: c.deps.Sanitizer.Clean(f.Message),
	}
	c.form = clean

	if clean.Name == "" || clean.Email == "" || clean.Subject == "" || clean.Message == "" {
		return c.outcome(view.Failure(ToastContactFailed, MsgContactIncomplete))
	}

	req := api.ContactRequest{
		Name:    clean.Name,
		Email:   clean.Email,
		Subject: clean.Subject,
		Message: clean.Message,
	}
	reply, err := c.dispatch(ctx, req, func(ctx context.Context) (any, error) {
		return c.deps.Gateway.Contact(ctx, req)
	})
	if err != nil {
		return c.failed(ctx, err, view.Failure(ToastContactFailed, failureMessage(err)))
	}
	return c.succeeded(view.Success(ToastContactSuccess, messageOr(reply, msgContactSent)))
}

func (c *Controller) submitForgotPassword(ctx context.Context, f *ForgotPasswordForm) Outcome {
	clean := &ForgotPasswordForm{Email: c.deps.Sanitizer.Clean(f.Email)}
	c.form = clean

	req := api.ForgotPasswordRequest{Email: clean.Email}
	reply, err := c.dispatch(ctx, req, func(ctx context.Context) (any, error) {
		return c.deps.Gateway.ForgotPassword(ctx, req)
	})
	if err != nil {
		return c.failed(ctx, err, view.Failure(ToastForgotPasswordFailed, failureMessage(err)))
	}
	return c.succeeded(view.Success(ToastForgotPasswordSuccess, messageOr(reply, msgResetEmailed)))
}

func (c *Controller) submitVerification(ctx context.Context, f *VerificationForm) Outcome {
	clean := &VerificationForm{VerificationCode: c.deps.Sanitizer.Clean(f.VerificationCode)}
	c.form = clean

	req := api.VerifyRequest{VerificationCode: clean.VerificationCode}
	v, err := c.dispatch(ctx, req, func(ctx context.Context) (any, error) {
		return c.deps.Gateway.Verify(ctx, req)
	})
	if err != nil {
		return c.failed(ctx, err, view.Failure(ToastVerificationFailed, failureMessage(err)))
	}

	toast := view.Success(ToastVerificationSuccess, messageOr(v, msgVerified))
	reply, _ := v.(api.Reply)
	if reply.UserID == "" || reply.UserID != c.pendingUser {
		// The code was not issued to this client: the address is verified
		// but its owner still has to sign in.
		c.enter(ModeLogin)
		out := c.outcome(toast)
		out.Dispatched = true
		out.Reset = true
		return out
	}

	out := c.succeeded(toast)
	out.Redirect = c.deps.VerifyRedirect
	out.UserID = reply.UserID
	return out
}

// dispatch runs call under the submit timeout. Concurrent submissions of the
// same request by the same client share a single call.
func (c *Controller) dispatch(ctx context.Context, req any, call func(context.Context) (any, error)) (any, error) {
	run := func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
		defer cancel()
		return call(ctx)
	}
	if c.deps.Flight == nil || c.clientKey == "" {
		return run()
	}
	key, err := flightKey(c.clientKey, c.mode, req)
	if err != nil {
		return run()
	}
	v, err, shared := c.deps.Flight.Do(key, run)
	if shared {
		logging.FromContext(ctx).Debug("Collapsed duplicate submission", "mode", c.mode)
	}
	return v, err
}

// flightKey identifies a submission by client, mode and a digest of the
// cleaned request. Secrets only enter the key through the digest.
func flightKey(client string, m Mode, req any) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return client + "|" + string(m) + "|" + hex.EncodeToString(sum[:]), nil
}

func (c *Controller) succeeded(toast *view.Toast) Outcome {
	reset := PolicyFor(c.mode).OnSuccess
	if reset {
		c.form = Blank(c.mode)
	}
	out := c.outcome(toast)
	out.Dispatched = true
	out.Reset = reset
	return out
}

func (c *Controller) failed(ctx context.Context, err error, toast *view.Toast) Outcome {
	logging.FromContext(ctx).Warn("Form submission failed", "mode", c.mode, "error", err)
	reset := PolicyFor(c.mode).OnFailure
	if reset {
		c.form = Blank(c.mode)
	}
	out := c.outcome(toast)
	out.Dispatched = true
	out.Reset = reset
	return out
}

func (c *Controller) outcome(toast *view.Toast) Outcome {
	return Outcome{
		Mode:       c.mode,
		Form:       c.form,
		Errors:     c.errors,
		EmailError: c.emailErr,
		Toast:      toast,
	}
}

// failureMessage prefers the message the server sent and falls back to a
// generic one for anything that should not be shown verbatim.
func failureMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Body.Message != "" {
			return se.Body.Message
		}
		return MsgGenericFailure
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return MsgGenericFailure
	}
	_, env := api.Classify(err)
	if env.Error.Message == "" {
		return MsgGenericFailure
	}
	return env.Error.Message
}

func messageOr(v any, fallback string) string {
	if reply, ok := v.(api.Reply); ok && reply.Message != "" {
		return reply.Message
	}
	return fallback
}

func failedToast(m Mode) string {
	switch m {
	case ModeSignup:
		return ToastSignUpFailed
	case ModeLogin:
		return ToastLoginFailed
	case ModeContact:
		return ToastContactFailed
	case ModeForgotPassword:
		return ToastForgotPasswordFailed
	default:
		return ToastVerificationFailed
	}
}
