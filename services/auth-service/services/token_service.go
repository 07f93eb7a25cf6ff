package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenService is responsible for creating and validating JWTs.
type TokenService struct {
	secretKey []byte
	tokenTTL  time.Duration
}

func NewTokenService(secret string, tokenTTL time.Duration) *TokenService {
	if tokenTTL == 0 {
		tokenTTL = 15 * time.Minute
	}
	return &TokenService{secretKey: []byte(secret), tokenTTL: tokenTTL}
}

// GenerateAccessToken creates a signed access token for the user.
func (s *TokenService) GenerateAccessToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"typ":   "access",
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses and validates any given token string.
func (s *TokenService) ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}
