package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=18"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Username: "alice",
		Email:    "alice@example.com",
		Age:      20,
	}
	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	payload := testPayload{
		Username: "",
		Email:    "invalid",
		Age:      10,
	}

	err := ValidateStruct(payload)
	require.Error(t, err)

	var failures ValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 3)

	fields := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = f.Field
	}
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "age")
}

func TestValidationErrorMessage(t *testing.T) {
	cases := []struct {
		failure ValidationError
		want    string
	}{
		{ValidationError{Field: "username", Tag: "required"}, "username is required"},
		{ValidationError{Field: "email", Tag: "email"}, "email must be a valid email address"},
		{ValidationError{Field: "password", Tag: "min", Param: "8"}, "password must be at least 8 characters"},
		{ValidationError{Field: "display_name", Tag: "max", Param: "128"}, "display name must be at most 128 characters"},
		{ValidationError{Field: "id", Tag: "uuid4"}, "id must be a valid UUID"},
		{ValidationError{Field: "age", Tag: "gte", Param: "18"}, "age failed validation: gte=18"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.failure.Message())
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("dropbuddy", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "dropbuddy"
	})
	require.NoError(t, err)

	type custom struct {
		Value string `validate:"dropbuddy"`
	}

	require.NoError(t, ValidateStruct(custom{Value: "dropbuddy"}))
	require.Error(t, ValidateStruct(custom{Value: "other"}))
}
