package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCode_Lifecycle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	code := &domain.AccessCode{Code: "ABC", InitialBalance: decimal.NewFromInt(500)}
	assert.True(t, code.IsValid(now))
	require.NoError(t, code.Use("u1", now))
	assert.False(t, code.IsValid(now))
	assert.Equal(t, "u1", code.UsedBy)
	assert.ErrorIs(t, code.Use("u2", now), apperrors.ErrCodeAlreadyUsed)

	expired := &domain.AccessCode{Code: "OLD", ExpiresAt: &past}
	assert.True(t, expired.IsExpired(now))
	assert.ErrorIs(t, expired.Use("u1", now), apperrors.ErrCodeExpired)

	atExpiry := &domain.AccessCode{Code: "EDGE", ExpiresAt: &now}
	assert.False(t, atExpiry.IsExpired(now))

	assigned := &domain.AccessCode{Code: "VIP", PreassignedUserID: "u9"}
	assert.ErrorIs(t, assigned.Use("u1", now), apperrors.ErrInvalidCode)
	assert.NoError(t, assigned.Use("u9", now))
}
