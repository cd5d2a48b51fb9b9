// Package validation provides input validation helpers for the checkout API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// userHashRegex validates privacy-preserving identity tokens:
// a 64-character lowercase hex digest, never raw PII.
var userHashRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// validActionTypes are the behavioral event types accepted by the backend.
var validActionTypes = map[string]bool{
	"View":          true,
	"AddToCart":     true,
	"Purchase":      true,
	"ReturnRequest": true,
}

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidUserHash checks if a string is a well-formed identity hash
func IsValidUserHash(hash string) bool {
	return userHashRegex.MatchString(hash)
}

// IsValidActionType checks a behavioral action type
func IsValidActionType(action string) bool {
	return validActionTypes[action]
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidUserHash checks if a field is a well-formed identity hash
func ValidUserHash(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidUserHash(value) {
			return &ValidationError{Field: field, Message: "must be a 64-character hex identity hash"}
		}
		return nil
	}
}

// ValidActionType checks a behavioral event action type
func ValidActionType(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidActionType(value) {
			return &ValidationError{Field: field, Message: "must be one of View, AddToCart, Purchase, ReturnRequest"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// HashParamMiddleware validates the :hash URL parameter on routes that use it.
// Apply to route groups that include :hash params to reject malformed tokens early.
func HashParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := c.Param("hash")
		if hash != "" && !IsValidUserHash(hash) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_user_hash",
				"message": "hash must be a 64-character hex identity token",
			})
			return
		}
		c.Next()
	}
}
