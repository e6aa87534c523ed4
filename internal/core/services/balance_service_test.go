package services_test

import (
	"sync"
	"testing"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BalanceServiceTestSuite struct {
	suite.Suite
	env *testEnv
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.env = newTestEnv(suite.T())
	suite.env.open(suite.T(), "alice", 1000)
	suite.env.open(suite.T(), "bob", 50)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}

func (suite *BalanceServiceTestSuite) credit(userID, amount string) (*domain.Account, error) {
	return suite.env.svc.Balance.Credit(suite.env.ctx, dto.BalanceChangeRequest{UserID: userID, Amount: dec(amount)}, "admin")
}

func (suite *BalanceServiceTestSuite) debit(userID, amount string) (*domain.Account, error) {
	return suite.env.svc.Balance.Debit(suite.env.ctx, dto.BalanceChangeRequest{UserID: userID, Amount: dec(amount)}, "admin")
}

func (suite *BalanceServiceTestSuite) TestBalanceConservation() {
	t := suite.T()
	ops := []struct {
		credit bool
		amount string
	}{
		{true, "25.50"}, {false, "100"}, {true, "0.01"}, {false, "925.51"}, {true, "300"}, {false, "1"},
	}

	for _, op := range ops {
		var err error
		if op.credit {
			_, err = suite.credit("alice", op.amount)
		} else {
			_, err = suite.debit("alice", op.amount)
		}
		suite.Require().NoError(err)

		acc := suite.env.account(t, "alice")
		records := suite.env.history(t, "alice")
		sinceOpening := decimal0()
		for _, rec := range records {
			if rec.Kind != domain.InitialDeposit {
				sinceOpening = sinceOpening.Add(rec.Delta())
			}
		}
		suite.True(acc.CurrentBalance.Equal(acc.InitialBalance.Add(sinceOpening)))
		suite.env.requireLedgerConsistent(t, "alice")
	}

	suite.Equal("299", suite.env.account(t, "alice").CurrentBalance.String())
	suite.Len(suite.env.history(t, "alice"), len(ops)+1)
}

func (suite *BalanceServiceTestSuite) TestDebit_InsufficientFunds() {
	before := suite.env.history(suite.T(), "bob")

	acc, err := suite.debit("bob", "100")

	suite.Nil(acc)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Equal("50", suite.env.account(suite.T(), "bob").CurrentBalance.String())
	suite.Len(suite.env.history(suite.T(), "bob"), len(before))
}

func (suite *BalanceServiceTestSuite) TestCreditDebit_Rejections() {
	_, err := suite.credit("ghost", "10")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.credit("alice", "0")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.debit("alice", "-5")
	suite.ErrorIs(err, apperrors.ErrValidation)

	before := len(suite.env.history(suite.T(), "alice"))
	for _, amount := range []string{"0.001", "50.004"} {
		_, err = suite.credit("alice", amount)
		suite.ErrorIs(err, apperrors.ErrValidation, amount)
		_, err = suite.debit("alice", amount)
		suite.ErrorIs(err, apperrors.ErrValidation, amount)
	}
	suite.Len(suite.env.history(suite.T(), "alice"), before)

	acc, err := suite.credit("alice", "0.010")
	suite.Require().NoError(err)
	suite.Equal("1000.01", acc.CurrentBalance.StringFixed(2))

	_, err = suite.env.svc.Balance.Credit(suite.env.ctx, dto.BalanceChangeRequest{
		UserID: "alice", Amount: dec("5"), Kind: domain.AdminDebit,
	}, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestCredit_RecordsKindAndActor() {
	_, err := suite.env.svc.Balance.Credit(suite.env.ctx, dto.BalanceChangeRequest{
		UserID: "alice", Amount: dec("12"), Description: "bonus", Kind: domain.AdminCredit,
	}, "admin-7")
	suite.Require().NoError(err)

	latest := suite.env.history(suite.T(), "alice")[0]
	suite.Equal(domain.AdminCredit, latest.Kind)
	suite.Equal("bonus", latest.Description)
	suite.Equal("admin-7", latest.CreatedBy)
	suite.Equal("1000", latest.BalanceBefore.String())
	suite.Equal("1012", latest.BalanceAfter.String())
}

func (suite *BalanceServiceTestSuite) TestTransfer_LinkedPair() {
	err := suite.env.svc.Balance.Transfer(suite.env.ctx, dto.TransferRequest{
		FromUserID: "alice", ToUserID: "bob", Amount: dec("200"),
	}, "admin")
	suite.Require().NoError(err)

	suite.Equal("800", suite.env.account(suite.T(), "alice").CurrentBalance.String())
	suite.Equal("250", suite.env.account(suite.T(), "bob").CurrentBalance.String())

	out := suite.env.history(suite.T(), "alice")[0]
	in := suite.env.history(suite.T(), "bob")[0]
	suite.Equal(domain.TransferOut, out.Kind)
	suite.Equal(domain.TransferIn, in.Kind)
	suite.Equal("bob", out.Metadata[domain.MetaTransferTo])
	suite.Equal("alice", in.Metadata[domain.MetaTransferFrom])
	suite.Equal("Transfer to bob", out.Description)
	suite.env.requireLedgerConsistent(suite.T(), "alice")
	suite.env.requireLedgerConsistent(suite.T(), "bob")
}

func (suite *BalanceServiceTestSuite) TestTransfer_IsAtomic() {
	err := suite.env.svc.Balance.Transfer(suite.env.ctx, dto.TransferRequest{
		FromUserID: "alice", ToUserID: "ghost", Amount: dec("200"),
	}, "admin")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Equal("1000", suite.env.account(suite.T(), "alice").CurrentBalance.String())
	suite.Len(suite.env.history(suite.T(), "alice"), 1)

	err = suite.env.svc.Balance.Transfer(suite.env.ctx, dto.TransferRequest{
		FromUserID: "bob", ToUserID: "alice", Amount: dec("51"),
	}, "admin")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Equal("1000", suite.env.account(suite.T(), "alice").CurrentBalance.String())
	suite.Equal("50", suite.env.account(suite.T(), "bob").CurrentBalance.String())

	err = suite.env.svc.Balance.Transfer(suite.env.ctx, dto.TransferRequest{
		FromUserID: "bob", ToUserID: "bob", Amount: dec("1"),
	}, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BalanceServiceTestSuite) TestWithdraw_GatedByCycles() {
	_, err := suite.env.svc.Balance.Withdraw(suite.env.ctx, dto.WithdrawRequest{UserID: "alice", Amount: dec("10")}, "admin")
	suite.ErrorIs(err, apperrors.ErrWithdrawalLocked)

	now := t0
	for i := 0; i < 4; i++ {
		now = now.Add(week)
		_, err := suite.env.svc.ROI.ProcessOne(suite.env.ctx, "alice", now)
		suite.Require().NoError(err)
	}

	acc, err := suite.env.svc.Balance.Withdraw(suite.env.ctx, dto.WithdrawRequest{UserID: "alice", Amount: dec("320"), Destination: "bc1qexample"}, "admin")
	suite.Require().NoError(err)
	suite.Equal("1000", acc.CurrentBalance.String())

	latest := suite.env.history(suite.T(), "alice")[0]
	suite.Equal(domain.Withdrawal, latest.Kind)
	suite.Equal("bc1qexample", latest.Metadata[domain.MetaDestination])

	_, err = suite.env.svc.Balance.Withdraw(suite.env.ctx, dto.WithdrawRequest{UserID: "alice", Amount: dec("5000")}, "admin")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *BalanceServiceTestSuite) TestReinvest() {
	_, err := suite.env.svc.Balance.Reinvest(suite.env.ctx, "alice", "alice")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.credit("alice", "240")
	suite.Require().NoError(err)

	acc, err := suite.env.svc.Balance.Reinvest(suite.env.ctx, "alice", "alice")
	suite.Require().NoError(err)
	suite.Equal("1240", acc.InitialBalance.String())
	suite.Equal("1240", acc.CurrentBalance.String())
	suite.Equal("99.2", suite.env.svc.ROI.NextAmount(acc).String())

	latest := suite.env.history(suite.T(), "alice")[0]
	suite.Equal(domain.Reinvestment, latest.Kind)
	suite.Equal("240", latest.Amount.String())
	suite.True(latest.BalanceBefore.Equal(latest.BalanceAfter))
	suite.Equal("1000", latest.Metadata[domain.MetaPreviousBase])
	suite.env.requireLedgerConsistent(suite.T(), "alice")
}

func (suite *BalanceServiceTestSuite) TestGetHistory_NewestFirstWithLimit() {
	for _, amount := range []string{"1", "2", "3"} {
		_, err := suite.credit("alice", amount)
		suite.Require().NoError(err)
	}

	records, err := suite.env.svc.Balance.GetHistory(suite.env.ctx, "alice", 2)
	suite.Require().NoError(err)
	suite.Require().Len(records, 2)
	suite.Equal("3", records[0].Amount.String())
	suite.Equal("2", records[1].Amount.String())

	records, err = suite.env.svc.Balance.GetHistory(suite.env.ctx, "ghost", 10)
	suite.NoError(err)
	suite.Empty(records)
}

func TestBalanceService_ConcurrentMutationsDoNotLoseUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.open(t, "hot", 100)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := dto.BalanceChangeRequest{UserID: "hot", Amount: dec("2")}
			if i%2 == 0 {
				_, err := env.svc.Balance.Credit(env.ctx, req, "admin")
				assert.NoError(t, err)
			} else {
				req.Amount = dec("1")
				_, err := env.svc.Balance.Debit(env.ctx, req, "admin")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	acc := env.account(t, "hot")
	require.Equal(t, "125", acc.CurrentBalance.String())
	require.Len(t, env.history(t, "hot"), workers+1)
	env.requireLedgerConsistent(t, "hot")
}
