// Package auth exchanges shared secrets for signed JWTs. There are no user
// accounts: a caller who knows the user or admin secret gets a token carrying
// that role.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kuntv/service/internal/config"
)

// Roles carried in the JWT subject claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const tokenTTL = 7 * 24 * time.Hour

// ErrInvalidSecret is returned when the presented secret matches neither
// configured role.
var ErrInvalidSecret = errors.New("invalid secret")

// Service contains the business logic for secret-based authentication.
type Service struct {
	userSecret  string
	adminSecret string
	jwtSecret   string
}

// NewService creates a new auth Service from configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		userSecret:  cfg.UserSecret,
		adminSecret: cfg.AdminSecret,
		jwtSecret:   cfg.JWTSecret,
	}
}

// Login maps the shared secret to a role and issues a JWT for it.
func (s *Service) Login(secret string) (token, role string, err error) {
	role, err = s.verifySecret(secret)
	if err != nil {
		return "", "", err
	}
	token, err = s.issueToken(role)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return token, role, nil
}

func (s *Service) verifySecret(secret string) (string, error) {
	switch {
	case secretEqual(secret, s.userSecret):
		return RoleUser, nil
	case secretEqual(secret, s.adminSecret):
		return RoleAdmin, nil
	default:
		return "", ErrInvalidSecret
	}
}

// secretEqual compares in constant time and rejects empty configured secrets,
// so an unset role can never be logged into.
func secretEqual(input, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(configured)) == 1
}

func (s *Service) issueToken(role string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   role,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
