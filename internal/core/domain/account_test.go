package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_IsROIDue(t *testing.T) {
	next := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		next *time.Time
		now  time.Time
		want bool
	}{
		{"no next date is never due", nil, next.Add(1000 * time.Hour), false},
		{"before next date", &next, next.Add(-time.Nanosecond), false},
		{"exactly at next date", &next, next, true},
		{"after next date", &next, next.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := domain.Account{NextROIDate: tt.next}
			assert.Equal(t, tt.want, acc.IsROIDue(tt.now))
		})
	}
}

func TestAccount_AdvanceROICycleLatchesWithdrawal(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour
	acc := &domain.Account{MaxROICycles: 4}

	for i := 1; i <= 3; i++ {
		acc.AdvanceROICycle(now, week)
		assert.False(t, acc.CanWithdraw, "cycle %d", i)
		assert.False(t, acc.CanWithdrawNow())
	}
	assert.Equal(t, 1, acc.CyclesRemaining())

	acc.AdvanceROICycle(now, week)
	assert.True(t, acc.CanWithdraw)
	assert.True(t, acc.CanWithdrawNow())
	assert.Equal(t, 0, acc.CyclesRemaining())

	acc.AdvanceROICycle(now, week)
	assert.True(t, acc.CanWithdraw)
	assert.Equal(t, 5, acc.ROICyclesCompleted)
	assert.Equal(t, 0, acc.CyclesRemaining())
	require.NotNil(t, acc.NextROIDate)
	assert.Equal(t, now.Add(week), *acc.NextROIDate)
}

func TestROIPolicy_AmountFor(t *testing.T) {
	policy := domain.DefaultROIPolicy()
	acc := &domain.Account{InitialBalance: decimal.NewFromInt(1000), CurrentBalance: decimal.NewFromInt(5000)}

	assert.Equal(t, "80", policy.AmountFor(acc).String())

	acc.InitialBalance = decimal.RequireFromString("123.45")
	assert.Equal(t, "9.88", policy.AmountFor(acc).String())
}

func TestROIPolicy_Project(t *testing.T) {
	policy := domain.DefaultROIPolicy()
	acc := &domain.Account{InitialBalance: decimal.NewFromInt(1000), CurrentBalance: decimal.NewFromInt(1080)}

	proj := policy.Project(acc, 3)
	assert.True(t, proj.CurrentBalance.Equal(decimal.NewFromInt(1080)))
	assert.True(t, proj.WeeklyAmount.Equal(decimal.NewFromInt(80)))
	assert.True(t, proj.TotalProjected.Equal(decimal.NewFromInt(1320)))
	require.Len(t, proj.Breakdown, 3)
	assert.Equal(t, 2, proj.Breakdown[1].Week)
	assert.True(t, proj.Breakdown[1].Total.Equal(decimal.NewFromInt(1240)))
}
