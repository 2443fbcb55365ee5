package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/domain"
)

// ClientVersion is reported in every error envelope.
const ClientVersion = "1.0.0"

// Error codes carried in the envelope.
const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeDuplicate        = "USER_EXISTS"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidCode      = "INVALID_VERIFICATION_CODE"
	CodeInvalidToken     = "INVALID_RESET_TOKEN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorBody is the content of the "error" key of the envelope.
type ErrorBody struct {
	Code          string            `json:"code"`
	Meta          map[string]string `json:"meta,omitempty"`
	Message       string            `json:"message"`
	ClientVersion string            `json:"clientVersion"`
	Stack         string            `json:"stack,omitempty"`
}

// ErrorEnvelope is the JSON shape of every failed API response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Classify maps err to an HTTP status and envelope. Validation failures list
// the offending fields in Meta.
func Classify(err error) (int, ErrorEnvelope) {
	body := ErrorBody{ClientVersion: ClientVersion, Message: err.Error()}
	status := http.StatusInternalServerError

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		status = http.StatusUnprocessableEntity
		body.Code = CodeValidation
		body.Message = "The request contains invalid fields"
		body.Meta = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			body.Meta[fe.Field()] = fe.Tag()
		}
	case errors.Is(err, domain.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = CodeDuplicate
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		body.Code = CodeNotFound
	case errors.Is(err, domain.ErrInvalidVerificationCode):
		status = http.StatusBadRequest
		body.Code = CodeInvalidCode
	case errors.Is(err, domain.ErrInvalidResetToken):
		status = http.StatusBadRequest
		body.Code = CodeInvalidToken
	default:
		body.Code = CodeInternal
		body.Message = "Some error happened"
	}
	return status, ErrorEnvelope{Error: body}
}

// StatusError is returned by API clients when the server answered with an
// error envelope.
type StatusError struct {
	Status int
	Body   ErrorBody
}

func (e *StatusError) Error() string {
	return e.Body.Message
}
