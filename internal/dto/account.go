package dto

import (
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open an account directly (admin registration).
type CreateAccountRequest struct {
	UserID         string          `json:"userID" validate:"required,max=64"`
	Name           string          `json:"name" validate:"required,max=100"`
	InitialBalance decimal.Decimal `json:"initialBalance"` // Must be positive
	Email          string          `json:"email" validate:"omitempty,email"`
	Phone          string          `json:"phone" validate:"omitempty,max=32"`
	Country        string          `json:"country" validate:"omitempty,max=64"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account plus derived withdrawal state.
type AccountResponse struct {
	UserID             string          `json:"userID"`
	Name               string          `json:"name"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Country            string          `json:"country,omitempty"`
	InitialBalance     decimal.Decimal `json:"initialBalance"`
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	ROICyclesCompleted int             `json:"roiCyclesCompleted"`
	MaxROICycles       int             `json:"maxROICycles"`
	CyclesRemaining    int             `json:"cyclesRemaining"`
	NextROIDate        *time.Time      `json:"nextROIDate"`
	CanWithdraw        bool            `json:"canWithdraw"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy      string          `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		UserID:             acc.UserID,
		Name:               acc.Name,
		Email:              acc.Email,
		Phone:              acc.Phone,
		Country:            acc.Country,
		InitialBalance:     acc.InitialBalance,
		CurrentBalance:     acc.CurrentBalance,
		ROICyclesCompleted: acc.ROICyclesCompleted,
		MaxROICycles:       acc.MaxROICycles,
		CyclesRemaining:    acc.CyclesRemaining(),
		NextROIDate:        acc.NextROIDate,
		CanWithdraw:        acc.CanWithdrawNow(),
		IsActive:           acc.IsActive,
		CreatedAt:          acc.CreatedAt,
		CreatedBy:          acc.CreatedBy,
		LastUpdatedAt:      acc.LastUpdatedAt,
		LastUpdatedBy:      acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// HistoryParams defines query parameters for ledger history.
type HistoryParams struct {
	Limit int `form:"limit,default=10"`
}

// ProjectionParams defines query parameters for earnings projections.
type ProjectionParams struct {
	Weeks int `form:"weeks,default=4"`
}
