package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuntv/service/internal/config"
)

func testService() *Service {
	return NewService(&config.Config{
		UserSecret:  "user-word",
		AdminSecret: "admin-word",
		JWTSecret:   "signing-key",
	})
}

func TestLoginMapsSecretsToRoles(t *testing.T) {
	svc := testService()

	_, role, err := svc.Login("user-word")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	token, role, err := svc.Login("admin-word")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("signing-key"), nil
	})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, sub)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	_, _, err := testService().Login("guess")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestLoginRejectsEmptyConfiguredSecret(t *testing.T) {
	svc := NewService(&config.Config{JWTSecret: "signing-key"})

	// Neither role is configured; an empty input must not match.
	_, _, err := svc.Login("")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}
