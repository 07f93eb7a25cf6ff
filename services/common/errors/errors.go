package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause. The shared
// sentinels below stay untouched so they can be compared against.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Persistence error types
var (
	ErrDatabaseConnection  = New(http.StatusServiceUnavailable, "Database connection error", nil)
	ErrDatabaseQuery       = New(http.StatusInternalServerError, "Database query error", nil)
	ErrDatabaseTransaction = New(http.StatusInternalServerError, "Database transaction error", nil)
)

// Request error types
var (
	ErrValidation         = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
)

// ErrorMiddleware converts errors attached to the gin context into
// JSON responses. Unknown errors become a 500 without leaking detail.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *Error
			if e, ok := err.(*Error); ok {
				appErr = e
			} else {
				appErr = Wrap(ErrInternalServer, err)
			}

			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			c.Abort()
		}
	}
}
