package tablex

import (
	"errors"

	"github.com/growindia/jobs/pkg/errx"
)

// StatusClientClosedRequest is the HTTP status for a query abandoned by its caller
const StatusClientClosedRequest = 499

// QueryCodes names the domain error codes a store failure maps onto.
// Zero codes fall back to Failed.
type QueryCodes struct {
	Failed    errx.Code
	Timeout   errx.Code
	Canceled  errx.Code
	Forbidden errx.Code
	Conflict  errx.Code
	Invalid   errx.Code
}

// ToErrx converts a store error into a domain error carrying the store kind
// as the "kind" detail. An *errx.Error passes through unchanged.
func ToErrx(reg *errx.Registry, codes QueryCodes, err error) *errx.Error {
	if err == nil {
		return nil
	}
	if e, ok := errx.As(err); ok {
		return e
	}

	kind := KindOf(err)
	code := codes.Failed
	switch kind {
	case KindTimeout:
		code = pick(codes.Timeout, codes.Failed)
	case KindCanceled:
		code = pick(codes.Canceled, codes.Failed)
	case KindPermissionDenied:
		code = pick(codes.Forbidden, codes.Failed)
	case KindConflict:
		code = pick(codes.Conflict, codes.Failed)
	case KindInvalid:
		code = pick(codes.Invalid, codes.Failed)
	}

	out := reg.NewWithCause(code, err).WithDetail("kind", string(kind))
	var te *Error
	if errors.As(err, &te) && te.Column != "" {
		out = out.WithDetail("column", te.Column)
	}
	return out
}

func pick(code, fallback errx.Code) errx.Code {
	if code == "" {
		return fallback
	}
	return code
}
