package api

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// RegisterValidations adds the custom tags used by the request types to v.
// It must run before v validates anything.
func RegisterValidations(v *validator.Validate) {
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
}

// maxBytes limits the encoded length of a string, unlike max which counts
// runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
