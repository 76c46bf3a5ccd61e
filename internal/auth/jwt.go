// Package auth protects the bridge's own API surface with short-lived
// bearer tokens. This is unrelated to the cloud identity service, which
// the bridge never talks to directly.
package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// TokenService exchanges a configured access key for HS256 JWTs and
// validates them on every protected request.
type TokenService struct {
	secretKey []byte
	accessKey string
	tokenTTL  time.Duration
}

func NewTokenService(secretKey, accessKey string, tokenTTL time.Duration) *TokenService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &TokenService{
		secretKey: []byte(secretKey),
		accessKey: accessKey,
		tokenTTL:  tokenTTL,
	}
}

// IssueToken validates the access key and mints a bearer token for the
// named client.
func (t *TokenService) IssueToken(accessKey, clientName string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(accessKey), []byte(t.accessKey)) != 1 {
		return "", fmt.Errorf("invalid access key")
	}

	now := time.Now()
	claims := Claims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenTTL)),
			Issuer:    "devicebridge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secretKey)
}

// ValidateToken validates and parses a bearer token.
func (t *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
