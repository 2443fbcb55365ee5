package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/api"
)

// NewValidator returns a validator that reports fields by their form (or
// JSON) name instead of the Go field name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	api.RegisterValidations(v)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

var fieldLabels = map[string]string{
	"username":         "Username",
	"email":            "Email",
	"password":         "Password",
	"confirmPassword":  "Confirm password",
	"name":             "Name",
	"subject":          "Subject",
	"message":          "Message",
	"verificationCode": "Verification code",
}

// FieldErrors validates f and returns one human readable message per
// offending field, keyed by form field name. It returns nil when f is valid.
func FieldErrors(v *validator.Validate, f Form) map[string]string {
	err := v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "maxbytes":
		return label + " is too long"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "numeric":
		return label + " must contain only digits"
	case "eqfield":
		return "Passwords do not match"
	default:
		return label + " is invalid"
	}
}
