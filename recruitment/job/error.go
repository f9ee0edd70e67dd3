package job

import (
	"net/http"

	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/tablex"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("JOB")

// Error codes
var (
	CodeJobNotFound             = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeValidationFailed        = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Job data is invalid")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
	CodeUnauthorizedUpdate      = ErrRegistry.Register("UNAUTHORIZED_UPDATE", errx.TypeAuthorization, http.StatusForbidden, "Unauthorized to update this job")
	CodeQueryFailed             = ErrRegistry.Register("QUERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Job store request failed")
	CodeQueryTimeout            = ErrRegistry.Register("QUERY_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Job store request timed out")
	CodeQueryCanceled           = ErrRegistry.Register("QUERY_CANCELED", errx.TypeExternal, tablex.StatusClientClosedRequest, "Job search was canceled")
	CodeQueryForbidden          = ErrRegistry.Register("QUERY_FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Job store denied the request")
	CodeQueryInvalid            = ErrRegistry.Register("QUERY_INVALID", errx.TypeValidation, http.StatusBadRequest, "Job store rejected the data")
)

var queryCodes = tablex.QueryCodes{
	Failed:    CodeQueryFailed,
	Timeout:   CodeQueryTimeout,
	Canceled:  CodeQueryCanceled,
	Forbidden: CodeQueryForbidden,
	Invalid:   CodeQueryInvalid,
}

// Helper functions
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

// ErrValidation reports a missing or invalid field before any store call
func ErrValidation(field, reason string) *errx.Error {
	return ErrRegistry.New(CodeValidationFailed).WithDetail("field", field).WithDetail("reason", reason)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

func ErrUnauthorizedUpdate() *errx.Error {
	return ErrRegistry.New(CodeUnauthorizedUpdate)
}

// ErrQuery converts a store failure into a query error
func ErrQuery(err error) *errx.Error {
	return tablex.ToErrx(ErrRegistry, queryCodes, err)
}
