package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/dropbuddy/dropbuddy/pkg/errors"
	"github.com/dropbuddy/dropbuddy/pkg/response"
	appValidator "github.com/dropbuddy/dropbuddy/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if ve, ok := err.(appValidator.ValidationErrors); ok && len(ve) > 0 {
		messages := make([]string, len(ve))
		for i, failure := range ve {
			messages[i] = failure.Message()
		}
		return strings.Join(messages, "; ")
	}
	return "invalid request payload"
}
