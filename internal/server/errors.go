package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/recruit-pipeline/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrIntegrationUnavailable indicates the endpoint's external integration is
// not configured on this deployment.
type ErrIntegrationUnavailable struct {
	Integration string
}

func (e *ErrIntegrationUnavailable) Error() string {
	return fmt.Sprintf("%s integration is not configured", e.Integration)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var schemaErr *schemas.ValidationError
	var unavailableErr *ErrIntegrationUnavailable

	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
