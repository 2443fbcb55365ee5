package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator around v.
func NewValidator(v *validator.Validate) *CustomValidator {
	return &CustomValidator{validator: v}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token           string `form:"token" validate:"required"`
	Password        string `form:"password" validate:"required,min=8,max=72,maxbytes=72"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}
