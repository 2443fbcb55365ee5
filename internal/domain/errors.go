package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists       = errors.New("user with this email or username already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials provided")
	ErrNotFound                = errors.New("requested resource not found")
	ErrInvalidVerificationCode = errors.New("invalid or expired verification code")
	ErrInvalidResetToken       = errors.New("invalid or expired password reset token")
	ErrVerificationCodeTaken   = errors.New("verification code already issued")
)
