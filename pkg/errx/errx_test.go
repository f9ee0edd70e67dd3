package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_New(t *testing.T) {
	reg := NewRegistry("TEST")
	code := reg.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Thing not found")

	err := reg.New(code)

	assert.Equal(t, Code("TEST.NOT_FOUND"), err.Code)
	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "[TEST.NOT_FOUND] Thing not found", err.Error())
}

func TestRegistry_UnregisteredCode(t *testing.T) {
	reg := NewRegistry("TEST")
	err := reg.New(Code("TEST.MISSING"))

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

func TestError_DetailsAndCause(t *testing.T) {
	reg := NewRegistry("TEST")
	code := reg.Register("FAILED", TypeExternal, http.StatusBadGateway, "Failed")
	cause := errors.New("boom")

	err := reg.NewWithCause(code, cause).
		WithDetail("kind", "NETWORK").
		WithDetails(map[string]any{"table": "jobs"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NETWORK", err.Details["kind"])
	assert.Equal(t, "jobs", err.Details["table"])

	resp := err.ToHTTPResponse()
	assert.Equal(t, code, resp["code"])
	assert.NotNil(t, resp["details"])
}

func TestWrap_PreservesDomainError(t *testing.T) {
	reg := NewRegistry("TEST")
	code := reg.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Thing not found")
	inner := reg.New(code).WithDetail("id", "1")

	wrapped := Wrap(inner, "failed to load thing", TypeInternal)

	require.NotNil(t, wrapped)
	assert.Equal(t, code, wrapped.Code)
	assert.Equal(t, http.StatusNotFound, wrapped.HTTPStatus)
	assert.Equal(t, "failed to load thing", wrapped.Details["context"])
	assert.NotContains(t, inner.Details, "context")
	assert.True(t, IsCode(wrapped, code))
}

func TestWrap_PlainError(t *testing.T) {
	cause := errors.New("disk on fire")
	wrapped := Wrap(cause, "failed to save", TypeInternal)

	assert.Equal(t, TypeInternal, wrapped.Type)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, Wrap(nil, "nothing", TypeInternal))
}
