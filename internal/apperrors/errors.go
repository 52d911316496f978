package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationError covers malformed input, schema violations and business-rule
// failures such as expired or exhausted share links.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// AuthError means the principal exists but lacks the required permission.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func NewAuth(message string) *AuthError {
	return &AuthError{Message: message}
}

// NotFoundError means a referenced entity is absent.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func NewNotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// Respond maps the error taxonomy onto HTTP status codes. Anything outside the
// taxonomy becomes a 500 with a generic body so internal detail never reaches
// public callers.
func Respond(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		body := gin.H{"error": "validation_error", "message": ve.Message}
		if len(ve.Details) > 0 {
			body["details"] = ve.Details
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": ae.Message})
		return
	}

	var ne *NotFoundError
	if errors.As(err, &ne) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": ne.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "something went wrong"})
}
