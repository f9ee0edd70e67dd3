package application

import (
	"net/http"

	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/tablex"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("APPLICATION")

// Error codes
var (
	CodeApplicationAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Application already exists")
	CodeJobNotPublished          = ErrRegistry.Register("JOB_NOT_PUBLISHED", errx.TypeBusiness, http.StatusForbidden, "Job is not published")
	CodeInsufficientPermissions  = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
	CodeValidationFailed         = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeQueryFailed              = ErrRegistry.Register("QUERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Application store request failed")
	CodeQueryTimeout             = ErrRegistry.Register("QUERY_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Application store request timed out")
	CodeQueryCanceled            = ErrRegistry.Register("QUERY_CANCELED", errx.TypeExternal, tablex.StatusClientClosedRequest, "Application request was canceled")
	CodeQueryForbidden           = ErrRegistry.Register("QUERY_FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Application store denied the request")
	CodeQueryInvalid             = ErrRegistry.Register("QUERY_INVALID", errx.TypeValidation, http.StatusBadRequest, "Application store rejected the data")
)

var queryCodes = tablex.QueryCodes{
	Failed:    CodeQueryFailed,
	Timeout:   CodeQueryTimeout,
	Canceled:  CodeQueryCanceled,
	Forbidden: CodeQueryForbidden,
	Conflict:  CodeApplicationAlreadyExists,
	Invalid:   CodeQueryInvalid,
}

// Helper functions
func ErrApplicationAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeApplicationAlreadyExists)
}

func ErrJobNotPublished() *errx.Error {
	return ErrRegistry.New(CodeJobNotPublished)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

func ErrValidation(field, reason string) *errx.Error {
	return ErrRegistry.New(CodeValidationFailed).WithDetail("field", field).WithDetail("reason", reason)
}

// ErrQuery converts a store failure into a query error. A unique violation
// on (job_id, email) surfaces as ALREADY_EXISTS.
func ErrQuery(err error) *errx.Error {
	return tablex.ToErrx(ErrRegistry, queryCodes, err)
}
