// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"landmatch_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// StatusFor returns the HTTP status a domain error maps to.
// Untyped errors are treated as internal failures.
func StatusFor(err error) int {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// MessageFor returns the client-facing message of a domain error. Untyped
// errors never leak their text.
func MessageFor(err error) string {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal server error"
}
