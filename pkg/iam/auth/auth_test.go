package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/pkg/tablex/tablexmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		Email: " Owner@Example.com ",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated")

	s, err := v.Verify(signToken(t, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, kernel.UserID("user-1"), s.UserID)
	assert.Equal(t, kernel.Email("owner@example.com"), s.Email)
	assert.Equal(t, RoleAuthenticated, s.Role)
	assert.NotEmpty(t, s.AccessToken)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noSubject := validClaims()
	noSubject.Subject = ""

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other"}

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, expired)},
		{"no subject", signToken(t, noSubject)},
		{"wrong audience", signToken(t, wrongAudience)},
		{"no expiry", signToken(t, noExpiry)},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.True(t, errx.IsCode(err, CodeInvalidToken))
		})
	}

	_, err := v.Verify("  ")
	assert.True(t, errx.IsCode(err, CodeAuthRequired))
}

func TestVerifier_RejectsOtherSecret(t *testing.T) {
	token := signToken(t, validClaims())
	_, err := NewVerifier("another-secret", "").Verify(token)
	assert.Error(t, err)
}

func TestSession_HasAnyScope(t *testing.T) {
	user := &Session{Role: RoleAuthenticated}
	assert.True(t, user.HasAnyScope(ScopeJobsWrite))
	assert.False(t, user.HasAnyScope(ScopeApplicationsAll))

	admin := &Session{Role: RoleAdmin}
	assert.True(t, admin.HasAnyScope(ScopeApplicationsAll))

	assert.True(t, grants([]string{ScopeJobsAll}, ScopeJobsDelete))
	assert.False(t, (&Session{Role: "unknown"}).HasAnyScope(ScopeJobsWrite))
}

type forwardedKey struct{}

func newTestApp(m *Middleware) *fiber.App {
	app := fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := errx.As(err); ok {
				return c.Status(e.HTTPStatus).SendString(e.Code.String())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(m.Authenticate())
	app.Get("/open", func(c *fiber.Ctx) error {
		if s, ok := SessionFrom(c.UserContext()); ok {
			return c.SendString(s.UserID.String())
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", m.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(c.UserContext().Value(forwardedKey{}).(string))
	})
	app.Get("/admin", m.RequireScope(ScopeAll), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMiddleware(t *testing.T) {
	forward := func(ctx context.Context, token string) context.Context {
		return context.WithValue(ctx, forwardedKey{}, "forwarded")
	}
	app := newTestApp(NewMiddleware(NewVerifier(testSecret, ""), forward))
	token := signToken(t, validClaims())

	status, body := doRequest(t, app, "/open", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "anonymous", body)

	status, body = doRequest(t, app, "/open", "broken")
	assert.Equal(t, 200, status)
	assert.Equal(t, "anonymous", body)

	status, body = doRequest(t, app, "/open", token)
	assert.Equal(t, 200, status)
	assert.Equal(t, "user-1", body)

	status, body = doRequest(t, app, "/private", "")
	assert.Equal(t, 401, status)
	assert.Equal(t, CodeAuthRequired.String(), body)

	status, body = doRequest(t, app, "/private", token)
	assert.Equal(t, 200, status)
	assert.Equal(t, "forwarded", body)

	status, body = doRequest(t, app, "/admin", token)
	assert.Equal(t, 403, status)
	assert.Equal(t, CodeInsufficientScope.String(), body)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
}

func TestAdminChecker(t *testing.T) {
	store := tablexmem.New()
	store.CreateTable("admins", "user_id")
	store.Seed("admins", tablex.Row{"user_id": "boss"})
	checker := NewAdminChecker(store)
	ctx := context.Background()

	assert.True(t, checker.IsAdmin(ctx, "boss"))
	assert.False(t, checker.IsAdmin(ctx, "user-1"))
	assert.False(t, checker.IsAdmin(ctx, ""))
	assert.True(t, checker.IsAdminSession(ctx, &Session{Role: RoleAdmin}))

	store.SetHook(func(context.Context, string, string) error {
		return tablex.Errorf(tablex.KindPermissionDenied, "denied")
	})
	assert.False(t, checker.IsAdmin(ctx, "boss"), "store errors read as not admin")
}
