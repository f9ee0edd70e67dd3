package auth

import (
	"net/http"

	"github.com/growindia/jobs/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("AUTH")

// Error codes
var (
	CodeAuthRequired      = ErrRegistry.Register("REQUIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Sign in required")
	CodeInvalidToken      = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Session token is invalid or expired")
	CodeInsufficientScope = ErrRegistry.Register("INSUFFICIENT_SCOPE", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
)

// ErrAuthRequired is returned by gated operations when no session is active
func ErrAuthRequired() *errx.Error {
	return ErrRegistry.New(CodeAuthRequired)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrInsufficientScope() *errx.Error {
	return ErrRegistry.New(CodeInsufficientScope)
}
