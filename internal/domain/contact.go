package domain

import (
	"context"
	"time"
)

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRepository persists contact messages.
type ContactRepository interface {
	SaveContact(ctx context.Context, msg *ContactMessage) error
}

// Store is the full persistence contract a database driver has to satisfy.
type Store interface {
	UserRepository
	VerificationRepository
	ContactRepository
	Close(ctx context.Context) error
}
