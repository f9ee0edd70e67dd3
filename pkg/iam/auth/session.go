package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/growindia/jobs/pkg/kernel"
)

// Session is the signed-in user as asserted by the hosted auth module
type Session struct {
	UserID      kernel.UserID `json:"user_id"`
	Email       kernel.Email  `json:"email"`
	Role        string        `json:"role"`
	AccessToken string        `json:"-"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// Scopes returns the scopes granted to the session role
func (s *Session) Scopes() []string {
	return RoleScopes[s.Role]
}

// HasAnyScope reports whether any of scopes is granted
func (s *Session) HasAnyScope(scopes ...string) bool {
	granted := s.Scopes()
	for _, scope := range scopes {
		if grants(granted, scope) {
			return true
		}
	}
	return false
}

// Claims are the session token claims
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 session tokens
type Verifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

// NewVerifier creates a verifier. An empty audience skips the aud check.
func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify parses token and returns the session it carries
func (v *Verifier) Verify(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrAuthRequired()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken().WithCause(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken().WithCause(errors.New("token has no subject"))
	}

	role := claims.Role
	if role == "" {
		role = RoleAuthenticated
	}

	s := &Session{
		UserID:      kernel.NewUserID(claims.Subject),
		Email:       kernel.Email(strings.ToLower(strings.TrimSpace(claims.Email))),
		Role:        role,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

type sessionKey struct{}

// WithSession attaches s to ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx, if any
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
