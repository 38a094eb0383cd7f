package repositories

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BankTransactionReader defines read operations for the bank subledger.
type BankTransactionReader interface {
	// FindTransactionsInWindow retrieves an account's transactions within a
	// date window, ordered by date.
	FindTransactionsInWindow(ctx context.Context, accountCode string, start, end time.Time) ([]domain.BankTransaction, error)

	// ListUnreconciled retrieves an account's unreconciled transactions.
	ListUnreconciled(ctx context.Context, accountCode string) ([]domain.BankTransaction, error)
}

// BankTransactionWriter defines write operations for the bank subledger.
type BankTransactionWriter interface {
	// SaveTransaction inserts a bank transaction.
	SaveTransaction(ctx context.Context, txn domain.BankTransaction) error

	// SaveTransactionInTx inserts a bank transaction within an existing
	// database transaction; used by the journal repository to keep the mirror
	// atomic with its entry.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction) error
}

// BankTransactionRepositoryFacade combines the bank subledger interfaces.
type BankTransactionRepositoryFacade interface {
	BankTransactionReader
	BankTransactionWriter
}

// ReconciliationRepositoryFacade persists reconciliation periods. Mutations
// serialize on the reconciliation row and reject COMPLETED periods.
type ReconciliationRepositoryFacade interface {
	// SaveReconciliation inserts a new IN_PROGRESS reconciliation.
	SaveReconciliation(ctx context.Context, recon domain.Reconciliation) error

	// FindReconciliationByID retrieves one reconciliation.
	FindReconciliationByID(ctx context.Context, reconID string) (*domain.Reconciliation, error)

	// FindLatestByAccount retrieves the most recent reconciliation for a bank
	// account, or apperrors.ErrNotFound when none exists.
	FindLatestByAccount(ctx context.Context, accountCode string) (*domain.Reconciliation, error)

	// MarkReconciled flags the given transactions as reconciled under the
	// period, recomputes the cleared balance and difference, transitions the
	// period to COMPLETED when the difference is within tolerance, and returns
	// the updated reconciliation. The reconciliation row is locked for the
	// duration; a COMPLETED period fails with ErrReconciliationCompleted.
	MarkReconciled(ctx context.Context, reconID string, txnIDs []string, userID string, now time.Time) (*domain.Reconciliation, error)
}
