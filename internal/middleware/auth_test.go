package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithAuth(h http.Handler, authHeader string) int {
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

// Requests without a header are rejected whatever the method.
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)
	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(method string) bool {
			req := httptest.NewRequest(method, "/products", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w.Code == http.StatusUnauthorized
		},
		gen.OneConstOf("POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Valid tokens reach the handler with subject and role in context.
func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens allow request processing", prop.ForAll(
		func(subject string, role string) bool {
			tokenString, err := IssueToken(testSecret, subject, role, time.Hour)
			if err != nil {
				return false
			}

			var gotSubject, gotRole string
			handler := AuthMiddleware(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = GetSubject(r.Context())
				gotRole, _ = GetRole(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			code := serveWithAuth(handler, "Bearer "+tokenString)
			return code == http.StatusOK && gotSubject == subject && gotRole == role
		},
		gen.Identifier(),
		gen.OneConstOf("editor", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Garbage tokens are rejected.
func TestProperty_InvalidTokenFormatRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())

	properties.Property("invalid token formats are rejected", prop.ForAll(
		func(invalidToken string) bool {
			return serveWithAuth(handler, "Bearer "+invalidToken) == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_RejectsExpiredTokens(t *testing.T) {
	tokenString, err := IssueToken(testSecret, "ops", RoleAdmin, -time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
	assert.Equal(t, http.StatusUnauthorized, serveWithAuth(handler, "Bearer "+tokenString))
}

func TestAuthMiddleware_RejectsOtherSigningMethods(t *testing.T) {
	claims := Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"}}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
	assert.Equal(t, http.StatusUnauthorized, serveWithAuth(handler, "Bearer "+tokenString))
}

func TestAuthMiddleware_RejectsMissingBearerPrefix(t *testing.T) {
	tokenString, err := IssueToken(testSecret, "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
	assert.Equal(t, http.StatusUnauthorized, serveWithAuth(handler, tokenString))
	assert.Equal(t, http.StatusUnauthorized, serveWithAuth(handler, "Token "+tokenString))
}

func TestAdminOnly(t *testing.T) {
	adminToken, err := IssueToken(testSecret, "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	editorToken, err := IssueToken(testSecret, "ed", "editor", time.Hour)
	require.NoError(t, err)

	t.Run("open when no secret is configured", func(t *testing.T) {
		handler := AdminOnly("", zap.NewNop())(okHandler())
		assert.Equal(t, http.StatusOK, serveWithAuth(handler, ""))
	})

	t.Run("admin passes", func(t *testing.T) {
		handler := AdminOnly(testSecret, zap.NewNop())(okHandler())
		assert.Equal(t, http.StatusOK, serveWithAuth(handler, "Bearer "+adminToken))
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		handler := AdminOnly(testSecret, zap.NewNop())(okHandler())
		assert.Equal(t, http.StatusForbidden, serveWithAuth(handler, "Bearer "+editorToken))
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		handler := AdminOnly(testSecret, zap.NewNop())(okHandler())
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(handler, ""))
	})
}
