// Package httpx defines the API error taxonomy.
//
// Every failure a client can observe maps to one of a small set of
// machine-readable codes, so the frontend can tell "not logged in" (redirect
// to login) from "wrong tenant or role" (access denied page) from "no such
// resource" (not found page) without guessing from a bare status.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Reason codes. These are wire format — renaming one breaks clients.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeTenantMismatch   = "tenant_mismatch"
	CodeInsufficientRole = "insufficient_role"
	CodeNotFound         = "not_found"
	CodeValidation       = "validation_error"
	CodeUnavailable      = "unavailable"
)

// Error is an API-visible failure: an HTTP status, a reason code, and a
// human-readable message. It satisfies the error interface so handlers can
// pass it around like any other error.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func Unauthenticated(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: msg}
}

func TenantMismatch(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeTenantMismatch, Message: msg}
}

func InsufficientRole(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeInsufficientRole, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

func Unavailable(msg string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: msg}
}

// Respond writes err as the response body. Non-*Error values become an opaque
// 500 — internal details never leak to clients.
func Respond(c *gin.Context, err error) {
	if apiErr, ok := err.(*Error); ok {
		c.JSON(apiErr.Status, apiErr)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal",
		"message": "internal server error",
	})
}

// Abort is Respond plus c.Abort, for use inside middleware where later
// handlers in the chain must not run.
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
