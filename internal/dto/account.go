package dto

import (
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for adding an account to the chart.
type CreateAccountRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentCode  string `json:"parentCode"`
	Description string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	ParentCode  string          `json:"parentCode,omitempty"`
	Level       int             `json:"level"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		ParentCode:  a.ParentCode,
		Level:       a.Level,
		Balance:     a.Balance,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
