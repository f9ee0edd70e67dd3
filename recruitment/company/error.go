package company

import (
	"net/http"

	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/tablex"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("COMPANY")

// Error codes
var (
	CodeCompanyNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Company not found")
	CodeValidationFailed = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Company data is invalid")
	CodeNotOwner         = ErrRegistry.Register("NOT_OWNER", errx.TypeAuthorization, http.StatusForbidden, "Company belongs to another user")
	CodeAlreadyExists    = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Company already exists")
	CodeQueryFailed      = ErrRegistry.Register("QUERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Company store request failed")
	CodeQueryTimeout     = ErrRegistry.Register("QUERY_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Company store request timed out")
	CodeQueryCanceled    = ErrRegistry.Register("QUERY_CANCELED", errx.TypeExternal, tablex.StatusClientClosedRequest, "Company request was canceled")
	CodeQueryForbidden   = ErrRegistry.Register("QUERY_FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Company store denied the request")
	CodeQueryInvalid     = ErrRegistry.Register("QUERY_INVALID", errx.TypeValidation, http.StatusBadRequest, "Company store rejected the data")
)

var queryCodes = tablex.QueryCodes{
	Failed:    CodeQueryFailed,
	Timeout:   CodeQueryTimeout,
	Canceled:  CodeQueryCanceled,
	Forbidden: CodeQueryForbidden,
	Conflict:  CodeAlreadyExists,
	Invalid:   CodeQueryInvalid,
}

// Helper functions
func ErrCompanyNotFound() *errx.Error {
	return ErrRegistry.New(CodeCompanyNotFound)
}

func ErrValidation(field, reason string) *errx.Error {
	return ErrRegistry.New(CodeValidationFailed).WithDetail("field", field).WithDetail("reason", reason)
}

func ErrNotOwner() *errx.Error {
	return ErrRegistry.New(CodeNotOwner)
}

// ErrQuery converts a store failure into a query error
func ErrQuery(err error) *errx.Error {
	return tablex.ToErrx(ErrRegistry, queryCodes, err)
}
