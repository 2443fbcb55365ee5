package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	validationErr := validator.New().Struct(api.VerifyRequest{VerificationCode: "12"})
	require.Error(t, validationErr)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validationErr, http.StatusUnprocessableEntity, api.CodeValidation},
		{"duplicate", fmt.Errorf("create: %w", domain.ErrUserAlreadyExists), http.StatusConflict, api.CodeDuplicate},
		{"not found", domain.ErrNotFound, http.StatusNotFound, api.CodeNotFound},
		{"bad code", domain.ErrInvalidVerificationCode, http.StatusBadRequest, api.CodeInvalidCode},
		{"bad token", domain.ErrInvalidResetToken, http.StatusBadRequest, api.CodeInvalidToken},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, api.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, api.ClientVersion, env.Error.ClientVersion)
			assert.Empty(t, env.Error.Stack)
		})
	}

	t.Run("internal errors do not leak", func(t *testing.T) {
		_, env := api.Classify(errors.New("dial tcp 10.0.0.1: refused"))
		assert.Equal(t, "Some error happened", env.Error.Message)
	})

	t.Run("validation lists fields", func(t *testing.T) {
		_, env := api.Classify(validationErr)
		assert.Equal(t, "len", env.Error.Meta["VerificationCode"])
	})
}
