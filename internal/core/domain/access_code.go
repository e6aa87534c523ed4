package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccessCode is a single-use token that seeds a new account.
type AccessCode struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	InitialBalance    decimal.Decimal `json:"initialBalance"`
	IsUsed            bool            `json:"isUsed"`
	UsedBy            string          `json:"usedBy,omitempty"`
	UsedAt            *time.Time      `json:"usedAt,omitempty"`
	PreassignedUserID string          `json:"preassignedUserID,omitempty"` // Empty means anyone may redeem
	ExpiresAt         *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy"`
}

// IsExpired reports whether the code is past its expiry. Codes without an expiry never expire.
func (c *AccessCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// IsValid reports whether the code can still be redeemed by someone.
func (c *AccessCode) IsValid(now time.Time) bool {
	return !c.IsUsed && !c.IsExpired(now)
}

// CheckRedeemable returns the reason userID cannot redeem the code, or nil.
func (c *AccessCode) CheckRedeemable(userID string, now time.Time) error {
	switch {
	case c.IsUsed:
		return fmt.Errorf("%w: %s", apperrors.ErrCodeAlreadyUsed, c.Code)
	case c.IsExpired(now):
		return fmt.Errorf("%w: %s", apperrors.ErrCodeExpired, c.Code)
	case c.PreassignedUserID != "" && c.PreassignedUserID != userID:
		return fmt.Errorf("%w: code %s is assigned to another user", apperrors.ErrInvalidCode, c.Code)
	}
	return nil
}

// Use consumes the code for userID. It is one-way.
func (c *AccessCode) Use(userID string, now time.Time) error {
	if err := c.CheckRedeemable(userID, now); err != nil {
		return err
	}
	c.IsUsed = true
	c.UsedBy = userID
	c.UsedAt = &now
	return nil
}
