package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
)

type PgxBankTransactionRepository struct {
	BaseRepository
}

// newPgxBankTransactionRepository creates a new repository for the bank
// subledger.
func newPgxBankTransactionRepository(pool *pgxpool.Pool) portsrepo.BankTransactionRepositoryFacade {
	return &PgxBankTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BankTransactionRepositoryFacade = (*PgxBankTransactionRepository)(nil)

const bankTxnColumns = `txn_id, account_code, txn_date, amount, description, reference, reconciled, imported, running_balance, reconciliation_id, created_at, created_by, last_updated_at, last_updated_by`

func scanBankTransaction(row pgx.Row) (*domain.BankTransaction, error) {
	var txn domain.BankTransaction
	var reconciliationID sql.NullString
	err := row.Scan(
		&txn.TxnID,
		&txn.AccountCode,
		&txn.TxnDate,
		&txn.Amount,
		&txn.Description,
		&txn.Reference,
		&txn.Reconciled,
		&txn.Imported,
		&txn.RunningBalance,
		&reconciliationID,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if reconciliationID.Valid {
		txn.ReconciliationID = &reconciliationID.String
	}
	return &txn, nil
}

// SaveTransaction inserts a bank transaction in its own transaction.
func (r *PgxBankTransactionRepository) SaveTransaction(ctx context.Context, txn domain.BankTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveTransactionInTx inserts a bank transaction within an existing database
// transaction, deriving the running balance from the account's latest one.
func (r *PgxBankTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction) error {
	latestQuery := `
		SELECT running_balance
		FROM bank_transactions
		WHERE account_code = $1
		ORDER BY txn_date DESC, created_at DESC
		LIMIT 1
		FOR UPDATE;
	`
	previous := decimal.Zero
	err := tx.QueryRow(ctx, latestQuery, txn.AccountCode).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewAppError(500, "failed to read latest running balance for "+txn.AccountCode, err)
	}
	txn.RunningBalance = previous.Add(txn.Amount)

	query := `
		INSERT INTO bank_transactions (` + bankTxnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	var reconciliationID sql.NullString
	if txn.ReconciliationID != nil {
		reconciliationID = sql.NullString{String: *txn.ReconciliationID, Valid: true}
	}

	_, err = tx.Exec(ctx, query,
		txn.TxnID,
		txn.AccountCode,
		txn.TxnDate,
		txn.Amount,
		txn.Description,
		txn.Reference,
		txn.Reconciled,
		txn.Imported,
		txn.RunningBalance,
		reconciliationID,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert bank transaction "+txn.TxnID, err)
	}
	return nil
}

// FindTransactionsInWindow retrieves an account's transactions within a date
// window, ordered by date.
func (r *PgxBankTransactionRepository) FindTransactionsInWindow(ctx context.Context, accountCode string, start, end time.Time) ([]domain.BankTransaction, error) {
	query := `
		SELECT ` + bankTxnColumns + `
		FROM bank_transactions
		WHERE account_code = $1 AND txn_date >= $2 AND txn_date <= $3
		ORDER BY txn_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, accountCode, start, end)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions in window for "+accountCode, err)
	}
	defer rows.Close()
	return collectBankTransactions(rows)
}

// ListUnreconciled retrieves an account's unreconciled transactions.
func (r *PgxBankTransactionRepository) ListUnreconciled(ctx context.Context, accountCode string) ([]domain.BankTransaction, error) {
	query := `
		SELECT ` + bankTxnColumns + `
		FROM bank_transactions
		WHERE account_code = $1 AND reconciled = FALSE
		ORDER BY txn_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, accountCode)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unreconciled transactions for "+accountCode, err)
	}
	defer rows.Close()
	return collectBankTransactions(rows)
}

func collectBankTransactions(rows pgx.Rows) ([]domain.BankTransaction, error) {
	txns := make([]domain.BankTransaction, 0)
	for rows.Next() {
		txn, err := scanBankTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction row", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bank transaction rows", err)
	}
	return txns, nil
}
