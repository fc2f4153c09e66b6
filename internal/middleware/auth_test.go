package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-signing-key"

func signedToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   role,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func protectedEndpoint(t *testing.T, adminOnly bool) http.Handler {
	t.Helper()
	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(RoleKey).(string)
		_, _ = w.Write([]byte(role))
	})
	if adminOnly {
		inner = RequireAdmin(inner)
	}
	return RequireAuth(testJWTSecret)(inner)
}

func TestRequireAuthInjectsRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user", time.Hour))
	rec := httptest.NewRecorder()

	protectedEndpoint(t, false).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", rec.Body.String())
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	protectedEndpoint(t, false).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user", -time.Minute))
	rec := httptest.NewRecorder()

	protectedEndpoint(t, false).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user", time.Hour))
	rec := httptest.NewRecorder()

	protectedEndpoint(t, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer "+signedToken(t, "admin", time.Hour))
	rec = httptest.NewRecorder()

	protectedEndpoint(t, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
