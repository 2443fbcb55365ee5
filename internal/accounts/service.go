// Package accounts implements the server side of the site's forms: account
// creation, email verification, password recovery and contact messages.
package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/ibcoder/portfolio/internal/pubsub"
	"golang.org/x/crypto/bcrypt"
)

const (
	VerificationCodeTTL = 15 * time.Minute
	ResetTokenTTL       = 24 * time.Hour

	// codeAttempts bounds retries when a freshly drawn code is already outstanding.
	codeAttempts = 5
)

// Reply messages shown to the user on success.
const (
	MsgSignedUp      = "Account created. Check your email for the verification code."
	MsgVerified      = "Your email has been verified."
	MsgContactSent   = "Thanks for reaching out! I will get back to you soon."
	MsgResetSent     = "If an account exists for that email, a reset link is on its way."
	MsgPasswordReset = "Your password has been updated."
)

// dummyHash is compared against when the email is unknown so that both
// branches of Authenticate cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// Service is the accounts use-case layer.
type Service struct {
	store    domain.Store
	events   pubsub.Publisher
	validate *validator.Validate
	cost     int
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost sets the bcrypt work factor. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService wires the service to its store and event bus. The request
// validation tags are registered on validate.
func NewService(store domain.Store, events pubsub.Publisher, validate *validator.Validate, opts ...Option) *Service {
	api.RegisterValidations(validate)
	s := &Service{
		store:    store,
		events:   events,
		validate: validate,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser validates and stores a new account with a bcrypt hash of the
// password. The address starts unverified.
func (s *Service) CreateUser(ctx context.Context, req api.SignUpRequest) (*domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:              uuid.NewString(),
		Username:        strings.TrimSpace(req.Username),
		Email:           normalizeEmail(req.Email),
		PasswordHash:    string(hash),
		NewsletterOptIn: req.SignForNewsLetter,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// SignUp creates the account and issues its verification code.
func (s *Service) SignUp(ctx context.Context, req api.SignUpRequest) (api.Reply, error) {
	user, err := s.CreateUser(ctx, req)
	if err != nil {
		return api.Reply{}, err
	}

	v, err := s.issueVerification(ctx, user.ID)
	if err != nil {
		return api.Reply{}, err
	}

	s.publish(ctx, func() error {
		return pubsub.Publish(ctx, s.events, UserRegistered, user.ID, UserRegisteredEvent{
			UserID:           user.ID,
			Username:         user.Username,
			Email:            user.Email,
			VerificationCode: v.Code,
			ExpiresAt:        v.ExpiresAt,
		})
	})

	logging.FromContext(ctx).Info("User signed up", "user_id", user.ID)
	return api.Reply{Message: MsgSignedUp, UserID: user.ID}, nil
}

func (s *Service) issueVerification(ctx context.Context, userID string) (*domain.Verification, error) {
	now := s.now().UTC()
	for i := 0; i < codeAttempts; i++ {
		code, err := newVerificationCode()
		if err != nil {
			return nil, err
		}
		v := &domain.Verification{
			Code:      code,
			UserID:    userID,
			ExpiresAt: now.Add(VerificationCodeTTL),
			CreatedAt: now,
		}
		err = s.store.SaveVerification(ctx, v)
		if errors.Is(err, domain.ErrVerificationCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("failed to issue verification code after %d attempts", codeAttempts)
}

// Verify redeems a verification code and marks the owner's address verified.
func (s *Service) Verify(ctx context.Context, req api.VerifyRequest) (api.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return api.Reply{}, err
	}

	v, err := s.store.ConsumeVerification(ctx, strings.TrimSpace(req.VerificationCode), s.now().UTC())
	if err != nil {
		return api.Reply{}, err
	}

	err = s.store.MarkEmailVerified(ctx, v.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return api.Reply{}, domain.ErrInvalidVerificationCode
	}
	if err != nil {
		return api.Reply{}, err
	}

	logging.FromContext(ctx).Info("Email verified", "user_id", v.UserID)
	return api.Reply{Message: MsgVerified, UserID: v.UserID}, nil
}

// Contact stores a contact message and announces it.
func (s *Service) Contact(ctx context.Context, req api.ContactRequest) (api.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return api.Reply{}, err
	}

	msg := &domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     normalizeEmail(req.Email),
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveContact(ctx, msg); err != nil {
		return api.Reply{}, err
	}

	s.publish(ctx, func() error {
		return pubsub.Publish(ctx, s.events, ContactReceived, "", ContactReceivedEvent{
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Subject:   msg.Subject,
			Message:   msg.Message,
			CreatedAt: msg.CreatedAt,
		})
	})
	return api.Reply{Message: MsgContactSent}, nil
}

// ForgotPassword issues a reset token for a known address. Unknown addresses
// get the same reply so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (api.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return api.Reply{}, err
	}

	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		logging.FromContext(ctx).Debug("Password reset requested for unknown email")
		return api.Reply{Message: MsgResetSent}, nil
	}
	if err != nil {
		return api.Reply{}, err
	}

	token, err := newResetToken()
	if err != nil {
		return api.Reply{}, err
	}
	expires := s.now().UTC().Add(ResetTokenTTL)
	if err := s.store.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return api.Reply{}, err
	}

	s.publish(ctx, func() error {
		return pubsub.Publish(ctx, s.events, PasswordResetRequested, user.ID, PasswordResetRequestedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Token:     token,
			ExpiresAt: expires,
		})
	})
	return api.Reply{Message: MsgResetSent}, nil
}

// ResetPassword replaces the password of the user holding token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*domain.User, error) {
	if err := s.validate.Var(password, "required,min=8,max=72,maxbytes=72"); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByResetToken(ctx, token, s.now().UTC())
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("Password reset", "user_id", user.ID)
	return user, nil
}

// Authenticate checks an email/password pair. Any mismatch is reported as
// domain.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// FindUser returns the account with id.
func (s *Service) FindUser(ctx context.Context, id string) (*domain.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// publish sends an event; failures are logged because the user-facing action
// already succeeded.
func (s *Service) publish(ctx context.Context, send func() error) {
	if s.events == nil {
		return
	}
	if err := send(); err != nil {
		logging.FromContext(ctx).Error("Failed to publish event", "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
