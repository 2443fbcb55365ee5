package accounts

import (
	"time"

	"github.com/ibcoder/portfolio/internal/pubsub"
)

// UserRegisteredEvent is published after a signup; it carries the code the
// new user has to enter to verify the address.
type UserRegisteredEvent struct {
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	VerificationCode string    `json:"verificationCode"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// ContactReceivedEvent is published for every stored contact message.
type ContactReceivedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// PasswordResetRequestedEvent is published when a known address asks for a reset.
type PasswordResetRequestedEvent struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var (
	UserRegistered         = pubsub.NewEvent[UserRegisteredEvent]("user.registered")
	ContactReceived        = pubsub.NewEvent[ContactReceivedEvent]("contact.received")
	PasswordResetRequested = pubsub.NewEvent[PasswordResetRequestedEvent]("password.reset_requested")
)
