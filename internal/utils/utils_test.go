package utils_test

import (
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"80", "$80.00"},
		{"1080.5", "$1,080.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-250", "-$250.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.FormatUSD(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestGenerateAccessCode(t *testing.T) {
	code, err := utils.GenerateAccessCode(4)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Regexp(t, "^[0-9A-F]{8}$", code)

	_, err = utils.GenerateAccessCode(0)
	assert.Error(t, err)
}

func TestGenerateAdminToken(t *testing.T) {
	now := time.Now()
	signed, err := utils.GenerateAdminToken("42", "secret", time.Hour, "roi-admin", now)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "roi-admin", claims.Issuer)

	_, err = utils.GenerateAdminToken("", "secret", time.Hour, "", now)
	assert.Error(t, err)
}
