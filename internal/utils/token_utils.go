package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAdminToken signs an HS256 token whose subject is the admin id.
func GenerateAdminToken(adminID string, secret string, expiryDuration time.Duration, issuer string, now time.Time) (string, error) {
	if adminID == "" {
		return "", fmt.Errorf("admin id is required")
	}
	if secret == "" {
		return "", fmt.Errorf("signing secret is required")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   adminID,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
