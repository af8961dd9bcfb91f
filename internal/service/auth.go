package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"forum_backend/internal/config"
)

// AuthService issues the access tokens the HTTP layer authenticates with.
// Session/refresh-token management lives outside this core.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// GenerateAccessToken signs a short-lived HMAC token carrying the user id.
func (s *AuthService) GenerateAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// AccessTokenMaxAge exposes the configured token lifetime in seconds.
func (s *AuthService) AccessTokenMaxAge() int {
	return s.config.AccessTokenMaxAge
}
