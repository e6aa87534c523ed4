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

func TestTransactionKind_Direction(t *testing.T) {
	tests := []struct {
		kind   domain.TransactionKind
		credit bool
		debit  bool
	}{
		{domain.InitialDeposit, true, false},
		{domain.ROIPayment, true, false},
		{domain.AdminCredit, true, false},
		{domain.TransferIn, true, false},
		{domain.Withdrawal, false, true},
		{domain.AdminDebit, false, true},
		{domain.TransferOut, false, true},
		{domain.Reinvestment, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.credit, tt.kind.IsCredit())
			assert.Equal(t, tt.debit, tt.kind.IsDebit())
			assert.True(t, tt.kind.Valid())
		})
	}
	assert.False(t, domain.TransactionKind("bonus").Valid())
}

func TestLedgerRecord_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		rec     domain.LedgerRecord
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid credit",
			rec: domain.LedgerRecord{
				UserID:        "u1",
				Kind:          domain.ROIPayment,
				Amount:        decimal.NewFromInt(80),
				BalanceBefore: decimal.NewFromInt(1000),
				BalanceAfter:  decimal.NewFromInt(1080),
				CreatedAt:     now,
			},
		},
		{
			name: "valid debit",
			rec: domain.LedgerRecord{
				Kind:          domain.AdminDebit,
				Amount:        decimal.NewFromInt(30),
				BalanceBefore: decimal.NewFromInt(100),
				BalanceAfter:  decimal.NewFromInt(70),
			},
		},
		{
			name: "valid reinvestment keeps balance",
			rec: domain.LedgerRecord{
				Kind:          domain.Reinvestment,
				Amount:        decimal.NewFromInt(240),
				BalanceBefore: decimal.NewFromInt(1240),
				BalanceAfter:  decimal.NewFromInt(1240),
			},
		},
		{
			name: "debit recorded with credit arithmetic",
			rec: domain.LedgerRecord{
				Kind:          domain.Withdrawal,
				Amount:        decimal.NewFromInt(30),
				BalanceBefore: decimal.NewFromInt(100),
				BalanceAfter:  decimal.NewFromInt(130),
			},
			wantErr: true,
			errMsg:  "does not match",
		},
		{
			name: "zero amount",
			rec: domain.LedgerRecord{
				Kind:   domain.AdminCredit,
				Amount: decimal.Zero,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "unknown kind",
			rec: domain.LedgerRecord{
				Kind:   "bonus",
				Amount: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "unknown transaction kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPosting_Apply(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	t.Run("credit moves balance and builds record", func(t *testing.T) {
		acc := &domain.Account{UserID: "u1", CurrentBalance: decimal.NewFromInt(100)}
		p := &domain.Posting{Kind: domain.AdminCredit, Amount: decimal.NewFromInt(25), Description: "bonus", Actor: "admin"}

		rec, err := p.Apply(acc, now)
		require.NoError(t, err)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(125)))
		assert.True(t, rec.BalanceBefore.Equal(decimal.NewFromInt(100)))
		assert.True(t, rec.BalanceAfter.Equal(decimal.NewFromInt(125)))
		assert.Equal(t, "admin", rec.CreatedBy)
		assert.Equal(t, "admin", acc.LastUpdatedBy)
		assert.NoError(t, rec.Validate())
	})

	t.Run("debit beyond balance is rejected untouched", func(t *testing.T) {
		acc := &domain.Account{UserID: "u1", CurrentBalance: decimal.NewFromInt(50)}
		p := &domain.Posting{Kind: domain.AdminDebit, Amount: decimal.NewFromInt(100)}

		_, err := p.Apply(acc, now)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(50)))
	})

	t.Run("prepare may reject", func(t *testing.T) {
		acc := &domain.Account{UserID: "u1", CurrentBalance: decimal.NewFromInt(50)}
		p := &domain.Posting{
			Kind:    domain.ROIPayment,
			Prepare: func(*domain.Account, *domain.Posting) error { return apperrors.ErrNotDue },
		}

		_, err := p.Apply(acc, now)
		assert.ErrorIs(t, err, apperrors.ErrNotDue)
	})

	t.Run("prepare fills amount", func(t *testing.T) {
		acc := &domain.Account{UserID: "u1", CurrentBalance: decimal.NewFromInt(50)}
		p := &domain.Posting{
			Kind: domain.ROIPayment,
			Prepare: func(a *domain.Account, p *domain.Posting) error {
				p.Amount = decimal.NewFromInt(4)
				return nil
			},
		}

		rec, err := p.Apply(acc, now)
		require.NoError(t, err)
		assert.True(t, rec.Amount.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, domain.SystemActor, rec.CreatedBy)
	})
}

func TestReplayBalance(t *testing.T) {
	records := []domain.LedgerRecord{
		{Kind: domain.InitialDeposit, Amount: decimal.NewFromInt(1000)},
		{Kind: domain.ROIPayment, Amount: decimal.NewFromInt(80)},
		{Kind: domain.AdminDebit, Amount: decimal.NewFromInt(30)},
		{Kind: domain.Reinvestment, Amount: decimal.NewFromInt(50)},
		{Kind: domain.TransferOut, Amount: decimal.NewFromInt(10)},
	}
	assert.True(t, domain.ReplayBalance(records).Equal(decimal.NewFromInt(1040)))
}

func TestIsMoneyAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"100", true},
		{"0.01", true},
		{"12.50", true},
		{"1.100", true},
		{"0.001", false},
		{"50.004", false},
		{"0", false},
		{"-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsMoneyAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}
