package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is a node in the chart of accounts, identified by its stable code
// (e.g. "1000"). Balance is a cache owned by the ledger engine: nothing else
// writes it, and it can be rebuilt from posted lines if suspected corrupt.
type Account struct {
	Code        string          `json:"code"`       // Primary key, stable identifier
	Name        string          `json:"name"`       // User-facing name
	AccountType AccountType     `json:"accountType"`
	ParentCode  string          `json:"parentCode"` // Empty for root accounts
	Level       int             `json:"level"`      // parent.Level + 1, 0 at the root
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"` // Accounts with history are deactivated, never deleted
	Balance     decimal.Decimal `json:"balance"`  // Running Σ(debit − credit) over effective posted lines
	AuditFields
}
