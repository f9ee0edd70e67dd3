package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/growindia/jobs/pkg/logx"
)

const sessionLocalKey = "auth_session"

// TokenForwarder derives a context carrying the caller's token for
// downstream store calls
type TokenForwarder func(ctx context.Context, token string) context.Context

// Middleware resolves the bearer token into a session. Requests without a
// valid token continue anonymously; gated routes add RequireAuth.
type Middleware struct {
	verifier *Verifier
	forward  TokenForwarder
}

// NewMiddleware creates the session middleware. forward may be nil.
func NewMiddleware(verifier *Verifier, forward TokenForwarder) *Middleware {
	return &Middleware{verifier: verifier, forward: forward}
}

// Authenticate attaches the session, if any, to the request
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		session, err := m.verifier.Verify(token)
		if err != nil {
			logx.Debugf("ignoring session token: %v", err)
			return c.Next()
		}

		ctx := WithSession(c.UserContext(), session)
		if m.forward != nil {
			ctx = m.forward(ctx, session.AccessToken)
		}
		c.SetUserContext(ctx)
		c.Locals(sessionLocalKey, session)
		return c.Next()
	}
}

// RequireAuth rejects requests without a session
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetSession(c); !ok {
			return ErrAuthRequired()
		}
		return c.Next()
	}
}

// RequireScope rejects sessions lacking every one of scopes
func (m *Middleware) RequireScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := GetSession(c)
		if !ok {
			return ErrAuthRequired()
		}
		if !session.HasAnyScope(scopes...) {
			return ErrInsufficientScope().WithDetail("required_scope", strings.Join(scopes, "|"))
		}
		return c.Next()
	}
}

// GetSession returns the session resolved for this request
func GetSession(c *fiber.Ctx) (*Session, bool) {
	s, ok := c.Locals(sessionLocalKey).(*Session)
	return s, ok && s != nil
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
