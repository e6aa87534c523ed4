package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAccessCodeRequest defines a new access code. An empty Code is generated.
type CreateAccessCodeRequest struct {
	Code              string          `json:"code" validate:"omitempty,alphanum,min=4,max=32"`
	Name              string          `json:"name" validate:"required,max=100"`
	InitialBalance    decimal.Decimal `json:"initialBalance"` // Must be positive
	ExpiresAt         *time.Time      `json:"expiresAt"`
	PreassignedUserID string          `json:"preassignedUserID" validate:"omitempty,max=64"`
}

// RedeemAccessCodeRequest opens an account from an access code.
// Name falls back to the name stored on the code.
type RedeemAccessCodeRequest struct {
	Code    string `json:"code" validate:"required"`
	UserID  string `json:"userID" validate:"required,max=64"`
	Name    string `json:"name" validate:"max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Country string `json:"country" validate:"omitempty,max=64"`
}
