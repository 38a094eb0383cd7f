package services

import (
	"context"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// ReconciliationSvcFacade proves a bank account's book records against an
// external statement. Mismatches are returned as data, never thrown: surfacing
// them is the whole point of the subsystem.
type ReconciliationSvcFacade interface {
	// Start opens an IN_PROGRESS reconciliation for one account and window.
	Start(ctx context.Context, req dto.StartReconciliationRequest, userID string) (*domain.Reconciliation, error)

	// ImportStatement matches external statement lines against unreconciled
	// book transactions in the window (date equality, amount within tolerance,
	// description similarity as tie-breaker only). Unmatched lines become new
	// imported transactions.
	ImportStatement(ctx context.Context, reconID string, statement []domain.StatementTransaction, userID string) (*domain.ImportResult, error)

	// MarkReconciled flags transactions as cleared, recomputes the cleared
	// balance, and completes the reconciliation when statement − cleared is
	// within tolerance; otherwise the period stays IN_PROGRESS with the
	// difference persisted.
	MarkReconciled(ctx context.Context, reconID string, txnIDs []string, userID string) (*domain.Reconciliation, error)

	// ForceAdjustment books the delta between the account's book balance and
	// targetBalance as a reconciled adjustment transaction AND posts the
	// matching journal entry, so the general ledger and the bank subledger
	// never diverge.
	ForceAdjustment(ctx context.Context, req dto.ForceAdjustmentRequest, userID string) (*domain.BankTransaction, error)

	// GetStatus retrieves the most recent reconciliation for an account.
	GetStatus(ctx context.Context, accountCode string) (*domain.Reconciliation, error)

	// ListUnreconciled retrieves an account's unreconciled transactions.
	ListUnreconciled(ctx context.Context, accountCode string) ([]domain.BankTransaction, error)
}
