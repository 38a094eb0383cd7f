package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is one movement on a bank account's subledger. Its causing
// business event is the Reference on some journal entry; the two are separate
// aggregates that the posting rules keep numerically identical.
type BankTransaction struct {
	TxnID          string          `json:"txnID"` // Primary key (UUID)
	AccountCode    string          `json:"accountCode"`
	TxnDate        time.Time       `json:"txnDate"`
	Amount         decimal.Decimal `json:"amount"` // Signed: deposits positive, withdrawals negative
	Description    string          `json:"description"`
	Reference      string          `json:"reference"` // Originating business object id
	Reconciled     bool            `json:"reconciled"`
	Imported       bool            `json:"imported"` // Created from a bank statement, not a book event
	RunningBalance decimal.Decimal `json:"runningBalance"`
	// ReconciliationID links the transaction to the period that cleared it.
	ReconciliationID *string `json:"reconciliationID,omitempty"`
	AuditFields
}

// ReconciliationStatus is the lifecycle of a reconciliation period.
type ReconciliationStatus string

const (
	ReconciliationInProgress ReconciliationStatus = "IN_PROGRESS"
	ReconciliationCompleted  ReconciliationStatus = "COMPLETED" // Terminal
)

// Reconciliation proves a bank account's book records against an externally
// issued statement for one date window. ClearedBalance is derived:
// opening + Σ(reconciled transactions in window).
type Reconciliation struct {
	ReconID          string               `json:"reconID"` // Primary key (UUID)
	AccountCode      string               `json:"accountCode"`
	PeriodStart      time.Time            `json:"periodStart"`
	PeriodEnd        time.Time            `json:"periodEnd"`
	OpeningBalance   decimal.Decimal      `json:"openingBalance"`
	StatementBalance decimal.Decimal      `json:"statementBalance"`
	ClearedBalance   decimal.Decimal      `json:"clearedBalance"`
	Difference       decimal.Decimal      `json:"difference"` // statement − cleared, persisted for visibility
	Status           ReconciliationStatus `json:"status"`
	AuditFields
}

// StatementTransaction is one line of an externally supplied bank statement.
type StatementTransaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

// ImportResult summarizes a statement import for one reconciliation window.
type ImportResult struct {
	Matched int `json:"matched"`
	Created int `json:"created"`
	// MissingFromStatement lists existing book transactions in the window that
	// the statement did not contain: a likely duplicate or missing bank record.
	MissingFromStatement []BankTransaction `json:"missingFromStatement"`
}
