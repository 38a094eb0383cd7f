package dto

import (
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StartReconciliationRequest opens a reconciliation period for one account.
type StartReconciliationRequest struct {
	AccountCode      string          `json:"accountCode" binding:"required"`
	PeriodStart      time.Time       `json:"periodStart" binding:"required"`
	PeriodEnd        time.Time       `json:"periodEnd" binding:"required"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
}

// StatementLine is one external statement transaction in an import request.
type StatementLine struct {
	Date        time.Time       `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

// ImportStatementRequest carries the external statement lines to match.
type ImportStatementRequest struct {
	Transactions []StatementLine `json:"transactions" binding:"required,dive"`
}

// ToStatementTransactions converts the request lines to domain values.
func (r ImportStatementRequest) ToStatementTransactions() []domain.StatementTransaction {
	out := make([]domain.StatementTransaction, len(r.Transactions))
	for i, l := range r.Transactions {
		out[i] = domain.StatementTransaction{
			Date:        l.Date,
			Amount:      l.Amount,
			Description: l.Description,
			Reference:   l.Reference,
		}
	}
	return out
}

// MarkReconciledRequest flags transactions as cleared under a reconciliation.
type MarkReconciledRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// ForceAdjustmentRequest books the difference between the book balance and a
// target balance through the ledger.
type ForceAdjustmentRequest struct {
	AccountCode   string          `json:"accountCode" binding:"required"`
	TargetBalance decimal.Decimal `json:"targetBalance"`
	Reason        string          `json:"reason" binding:"required"`
}

// ReconciliationResponse defines the data returned for a reconciliation.
type ReconciliationResponse struct {
	ReconID          string          `json:"reconID"`
	AccountCode      string          `json:"accountCode"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	ClearedBalance   decimal.Decimal `json:"clearedBalance"`
	Difference       decimal.Decimal `json:"difference"`
	Status           string          `json:"status"`
}

// ToReconciliationResponse converts a domain.Reconciliation to its DTO.
func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ReconID:          r.ReconID,
		AccountCode:      r.AccountCode,
		PeriodStart:      r.PeriodStart,
		PeriodEnd:        r.PeriodEnd,
		OpeningBalance:   r.OpeningBalance,
		StatementBalance: r.StatementBalance,
		ClearedBalance:   r.ClearedBalance,
		Difference:       r.Difference,
		Status:           string(r.Status),
	}
}
