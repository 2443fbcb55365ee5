// Package api holds the JSON shapes exchanged with the REST endpoints and the
// mapping from domain errors to HTTP statuses.
package api

// SignUpRequest is the body of POST /api/users/signup and POST /api/users.
type SignUpRequest struct {
	Username          string `json:"username" validate:"required,min=3,max=32"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Password          string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	SignForNewsLetter bool   `json:"signForNewsLetter"`
}

// VerifyRequest is the body of POST /api/users/verify.
type VerifyRequest struct {
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}

// ContactRequest is the body of POST /api/users/contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,max=150"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ForgotPasswordRequest is the body of POST /api/users/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// CredentialsRequest is the body of POST /api/auth/callback/credentials.
type CredentialsRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	RememberMe  bool   `json:"rememberMe"`
	CallbackURL string `json:"callbackUrl"`
}

// SignInResponse mirrors the session bridge result.
type SignInResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Reply is the success body of the form endpoints. UserID names the account
// a signup created or a verification confirmed.
type Reply struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}
