package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	appValidator "github.com/dropbuddy/dropbuddy/pkg/validator"
)

func TestFormatValidationError(t *testing.T) {
	type payload struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	err := appValidator.ValidateStruct(&payload{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	msg := formatValidationError(err)
	require.Contains(t, msg, "email must be a valid email address")
	require.Contains(t, msg, "password must be at least 8 characters")
}

func TestFormatValidationErrorFallback(t *testing.T) {
	require.Equal(t, "invalid request payload", formatValidationError(nil))
}
