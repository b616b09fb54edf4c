package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthError means there is no authenticated caller.
type AuthError struct{}

func (AuthError) Error() string { return "Unauthorized" }

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ValidationError is a missing or invalid input value.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	return ok
}

// PersistenceError wraps a failed database operation.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return "database error"
	}
	return e.Err.Error()
}

func (e PersistenceError) Unwrap() error { return e.Err }

func (e PersistenceError) Is(target error) bool {
	_, ok := target.(PersistenceError)
	return ok
}

var (
	ErrAuth        = AuthError{}
	ErrNotFound    = NotFoundError{}
	ErrValidation  = ValidationError{}
	ErrPersistence = PersistenceError{}
)

func NotFound(resource string) error {
	return NotFoundError{Resource: resource}
}

func Invalid(format string, args ...any) error {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps err, or returns nil when err is nil.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var pe PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return PersistenceError{Err: err}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes {"error": message}. Pesan error database disembunyikan kalau redact = true.
func Respond(c *gin.Context, err error, redact bool) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && redact {
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
