package domain

import (
	"context"
	"time"
)

// User represents the core user model in the application domain.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	NewsletterOptIn   bool       `json:"signForNewsLetter"`
	EmailVerified     bool       `json:"emailVerified"`
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context) ([]User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	FindUserByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
