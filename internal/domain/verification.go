package domain

import (
	"context"
	"time"
)

// Verification is a single-use email verification code issued at signup.
type Verification struct {
	Code      string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be used at now.
func (v *Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// VerificationRepository stores verification codes.
type VerificationRepository interface {
	SaveVerification(ctx context.Context, v *Verification) error
	// ConsumeVerification deletes and returns the code. It returns
	// ErrInvalidVerificationCode when the code is unknown or expired.
	ConsumeVerification(ctx context.Context, code string, now time.Time) (*Verification, error)
}
