package server

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// WebhookJWTService validates bearer tokens on webhook endpoints. Tokens are
// HS256-signed with a shared secret; callers mint them out of band.
type WebhookJWTService struct {
	secret []byte
}

// NewWebhookJWTService creates a validator for the given shared secret.
func NewWebhookJWTService(secret string) *WebhookJWTService {
	return &WebhookJWTService{secret: []byte(secret)}
}

// GenerateToken signs a token with the given registered claims. Used by
// operators to mint webhook credentials and by tests.
func (s *WebhookJWTService) GenerateToken(claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a bearer token. Implements
// middleware.TokenValidator.
func (s *WebhookJWTService) ValidateToken(tokenString string) error {
	if tokenString == "" {
		return fmt.Errorf("token string is empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}
