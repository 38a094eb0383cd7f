package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's net activity as of a date.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every account with nonzero activity plus totals.
// IsBalanced proves the ledger is internally balanced within tolerance.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// AccountAmount is an account's net amount within a report section.
type AccountAmount struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// PAndLReport summarizes revenue and expense activity for a period.
type PAndLReport struct {
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// FindingType classifies a structural-corruption finding from the integrity
// sweep. Findings are reported, never repaired: rewriting historical financial
// records automatically is exactly the defect class this design eliminates.
type FindingType string

const (
	FindingImbalancedEntry FindingType = "IMBALANCED_ENTRY"
	FindingBalanceDrift    FindingType = "BALANCE_DRIFT"
	FindingAmountDrift     FindingType = "AMOUNT_DRIFT"
	FindingOrphanBankTxn   FindingType = "ORPHAN_BANK_TXN"
)

// IntegrityFinding is one detected invariant violation found outside a live
// mutation.
type IntegrityFinding struct {
	Type     FindingType     `json:"type"`
	EntityID string          `json:"entityID"` // Entry id, account code, or bank txn id
	Detail   string          `json:"detail"`
	Delta    decimal.Decimal `json:"delta"` // Size of the discrepancy where applicable
}
