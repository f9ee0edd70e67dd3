package errx

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"sync"
)

// Type classifies an error independently of the domain that raised it
type Type string

const (
	TypeValidation     Type = "VALIDATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeBusiness       Type = "BUSINESS"
	TypeExternal       Type = "EXTERNAL"
	TypeTimeout        Type = "TIMEOUT"
	TypeInternal       Type = "INTERNAL"
)

// HTTPStatus returns the default HTTP status for an error type
func (t Type) HTTPStatus() int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthentication:
		return http.StatusUnauthorized
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeExternal:
		return http.StatusBadGateway
	case TypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Code is a fully qualified error code, e.g. "JOB.NOT_FOUND"
type Code string

func (c Code) String() string { return string(c) }

type codeInfo struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error codes of one domain
type Registry struct {
	prefix string
	mu     sync.RWMutex
	codes  map[Code]codeInfo
}

// NewRegistry creates a registry whose codes are prefixed with prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[Code]codeInfo),
	}
}

// Register adds a code to the registry and returns its qualified form
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) Code {
	qualified := Code(r.prefix + "." + code)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[qualified] = codeInfo{
		errType:    errType,
		httpStatus: httpStatus,
		message:    message,
	}
	return qualified
}

// New builds an error for a registered code
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	info, ok := r.codes[code]
	r.mu.RUnlock()

	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	return &Error{
		Code:       code,
		Type:       info.errType,
		Message:    info.message,
		HTTPStatus: info.httpStatus,
	}
}

// NewWithCause builds an error for a registered code carrying an underlying cause
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	e := r.New(code)
	e.Cause = cause
	return e
}

// Error is the error value returned across package boundaries
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a single detail
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches several details at once
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithCause sets the underlying cause
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// ToHTTPResponse renders the error body sent to clients
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"error":   e.Message,
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// Wrap annotates err. A wrapped *Error keeps its code, type and status so
// domain errors survive service layers unchanged.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var inner *Error
	if errors.As(err, &inner) {
		wrapped := *inner
		wrapped.Details = maps.Clone(inner.Details)
		return wrapped.WithDetail("context", message)
	}

	return &Error{
		Code:       Code(errType),
		Type:       errType,
		Message:    message,
		HTTPStatus: errType.HTTPStatus(),
		Cause:      err,
	}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries code
func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
