package services_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/stretchr/testify/suite"
)

type AccessCodeServiceTestSuite struct {
	suite.Suite
	env *testEnv
}

func (suite *AccessCodeServiceTestSuite) SetupTest() {
	suite.env = newTestEnv(suite.T())
}

func TestAccessCodeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccessCodeServiceTestSuite))
}

func (suite *AccessCodeServiceTestSuite) create(req dto.CreateAccessCodeRequest) *domain.AccessCode {
	code, err := suite.env.svc.AccessCode.CreateAccessCode(suite.env.ctx, req, "admin")
	suite.Require().NoError(err)
	return code
}

func (suite *AccessCodeServiceTestSuite) redeem(code, userID string) (*domain.Account, error) {
	return suite.env.svc.AccessCode.RedeemAccessCode(suite.env.ctx, dto.RedeemAccessCodeRequest{Code: code, UserID: userID})
}

func (suite *AccessCodeServiceTestSuite) TestRedeem_SingleUse() {
	suite.create(dto.CreateAccessCodeRequest{Code: "welcome1", Name: "Gold plan", InitialBalance: dec("2500")})

	acc, err := suite.redeem(" WELCOME1 ", "alice")
	suite.Require().NoError(err)
	suite.Equal("Gold plan", acc.Name)
	suite.Equal("2500", acc.CurrentBalance.String())
	suite.Equal("2500", acc.InitialBalance.String())
	suite.Equal("alice", acc.CreatedBy)

	records := suite.env.history(suite.T(), "alice")
	suite.Require().Len(records, 1)
	suite.Equal(domain.InitialDeposit, records[0].Kind)
	suite.Equal("Initial deposit via access code WELCOME1", records[0].Description)
	suite.Equal("WELCOME1", records[0].Metadata["access_code"])

	code, err := suite.env.svc.AccessCode.GetAccessCode(suite.env.ctx, "welcome1")
	suite.Require().NoError(err)
	suite.True(code.IsUsed)
	suite.Equal("alice", code.UsedBy)
	suite.Equal(t0, *code.UsedAt)

	_, err = suite.redeem("WELCOME1", "bob")
	suite.ErrorIs(err, apperrors.ErrCodeAlreadyUsed)
	_, err = suite.env.svc.Account.GetAccount(suite.env.ctx, "bob")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccessCodeServiceTestSuite) TestRedeem_Rejections() {
	expiry := t0.Add(24 * time.Hour)
	suite.create(dto.CreateAccessCodeRequest{Code: "SOON", Name: "Short", InitialBalance: dec("100"), ExpiresAt: &expiry})
	suite.create(dto.CreateAccessCodeRequest{Code: "CAROL1", Name: "Carol", InitialBalance: dec("100"), PreassignedUserID: "carol"})

	_, err := suite.redeem("NOPE", "alice")
	suite.ErrorIs(err, apperrors.ErrInvalidCode)

	_, err = suite.redeem("CAROL1", "alice")
	suite.ErrorIs(err, apperrors.ErrInvalidCode)

	suite.env.clock.Set(expiry)
	_, err = suite.redeem("SOON", "alice")
	suite.NoError(err, "expiry boundary is still valid")

	suite.create(dto.CreateAccessCodeRequest{Code: "LATE", Name: "Late", InitialBalance: dec("100"), ExpiresAt: ptrTime(expiry.Add(time.Hour))})
	suite.env.clock.Set(expiry.Add(2 * time.Hour))
	_, err = suite.redeem("LATE", "bob")
	suite.ErrorIs(err, apperrors.ErrCodeExpired)

	_, err = suite.redeem("CAROL1", "carol")
	suite.NoError(err)
}

func (suite *AccessCodeServiceTestSuite) TestRedeem_ExistingAccountLeavesCodeUnused() {
	suite.env.open(suite.T(), "alice", 10)
	suite.create(dto.CreateAccessCodeRequest{Code: "SECOND", Name: "Second", InitialBalance: dec("100")})

	_, err := suite.redeem("SECOND", "alice")
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	code, err := suite.env.svc.AccessCode.GetAccessCode(suite.env.ctx, "SECOND")
	suite.Require().NoError(err)
	suite.False(code.IsUsed)
	suite.Equal("10", suite.env.account(suite.T(), "alice").CurrentBalance.String())
	suite.Len(suite.env.history(suite.T(), "alice"), 1)
}

func (suite *AccessCodeServiceTestSuite) TestCreate_GeneratesCode() {
	code := suite.create(dto.CreateAccessCodeRequest{Name: "Auto", InitialBalance: dec("50")})

	suite.Regexp(regexp.MustCompile(`^[0-9A-F]{8}$`), code.Code)
	suite.Equal("admin", code.CreatedBy)
	suite.False(code.IsUsed)

	codes, err := suite.env.svc.AccessCode.ListAccessCodes(suite.env.ctx)
	suite.Require().NoError(err)
	suite.Len(codes, 1)
}

func (suite *AccessCodeServiceTestSuite) TestCreate_Validation() {
	past := t0.Add(-time.Minute)
	tests := []struct {
		name string
		req  dto.CreateAccessCodeRequest
		want error
	}{
		{"missing name", dto.CreateAccessCodeRequest{InitialBalance: dec("10")}, apperrors.ErrValidation},
		{"zero balance", dto.CreateAccessCodeRequest{Name: "x", InitialBalance: dec("0")}, apperrors.ErrValidation},
		{"fractional cents", dto.CreateAccessCodeRequest{Name: "x", InitialBalance: dec("100.005")}, apperrors.ErrValidation},
		{"bad characters", dto.CreateAccessCodeRequest{Code: "AB-12", Name: "x", InitialBalance: dec("10")}, apperrors.ErrValidation},
		{"expired already", dto.CreateAccessCodeRequest{Name: "x", InitialBalance: dec("10"), ExpiresAt: &past}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.env.svc.AccessCode.CreateAccessCode(suite.env.ctx, tt.req, "admin")
			suite.ErrorIs(err, tt.want)
		})
	}

	suite.create(dto.CreateAccessCodeRequest{Code: "DUP1", Name: "x", InitialBalance: dec("10")})
	_, err := suite.env.svc.AccessCode.CreateAccessCode(suite.env.ctx, dto.CreateAccessCodeRequest{Code: "dup1", Name: "y", InitialBalance: dec("10")}, "admin")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
