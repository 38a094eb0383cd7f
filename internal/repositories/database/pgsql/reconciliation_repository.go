package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for reconciliation
// periods.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const reconColumns = `recon_id, account_code, period_start, period_end, opening_balance, statement_balance, cleared_balance, difference, status, created_at, created_by, last_updated_at, last_updated_by`

func scanReconciliation(row pgx.Row) (*domain.Reconciliation, error) {
	var recon domain.Reconciliation
	err := row.Scan(
		&recon.ReconID,
		&recon.AccountCode,
		&recon.PeriodStart,
		&recon.PeriodEnd,
		&recon.OpeningBalance,
		&recon.StatementBalance,
		&recon.ClearedBalance,
		&recon.Difference,
		&recon.Status,
		&recon.CreatedAt,
		&recon.CreatedBy,
		&recon.LastUpdatedAt,
		&recon.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &recon, nil
}

// SaveReconciliation inserts a new reconciliation period.
func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, recon domain.Reconciliation) error {
	query := `
		INSERT INTO reconciliations (` + reconColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		recon.ReconID,
		recon.AccountCode,
		recon.PeriodStart,
		recon.PeriodEnd,
		recon.OpeningBalance,
		recon.StatementBalance,
		recon.ClearedBalance,
		recon.Difference,
		recon.Status,
		recon.CreatedAt,
		recon.CreatedBy,
		recon.LastUpdatedAt,
		recon.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert reconciliation "+recon.ReconID, err)
	}
	return nil
}

// FindReconciliationByID retrieves one reconciliation.
func (r *PgxReconciliationRepository) FindReconciliationByID(ctx context.Context, reconID string) (*domain.Reconciliation, error) {
	query := `SELECT ` + reconColumns + ` FROM reconciliations WHERE recon_id = $1;`
	recon, err := scanReconciliation(r.Pool.QueryRow(ctx, query, reconID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("reconciliation " + reconID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query reconciliation "+reconID, err)
	}
	return recon, nil
}

// FindLatestByAccount retrieves the most recent reconciliation for an account.
func (r *PgxReconciliationRepository) FindLatestByAccount(ctx context.Context, accountCode string) (*domain.Reconciliation, error) {
	query := `
		SELECT ` + reconColumns + `
		FROM reconciliations
		WHERE account_code = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`
	recon, err := scanReconciliation(r.Pool.QueryRow(ctx, query, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no reconciliation for account " + accountCode)
		}
		return nil, apperrors.NewAppError(500, "failed to query latest reconciliation for "+accountCode, err)
	}
	return recon, nil
}

// MarkReconciled flags the given transactions as reconciled under the period
// and recomputes the cleared balance and difference. The reconciliation row is
// locked first so concurrent calls serialize and each recomputation sees the
// other's flags.
func (r *PgxReconciliationRepository) MarkReconciled(ctx context.Context, reconID string, txnIDs []string, userID string, now time.Time) (*domain.Reconciliation, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + reconColumns + ` FROM reconciliations WHERE recon_id = $1 FOR UPDATE;`
	recon, err := scanReconciliation(tx.QueryRow(ctx, lockQuery, reconID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("reconciliation " + reconID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to lock reconciliation "+reconID, err)
	}
	if recon.Status == domain.ReconciliationCompleted {
		return nil, apperrors.NewAppError(409, "reconciliation "+reconID+" is completed", apperrors.ErrReconciliationCompleted)
	}

	flagQuery := `
		UPDATE bank_transactions
		SET reconciled = TRUE, reconciliation_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE txn_id = ANY($1) AND account_code = $5 AND reconciled = FALSE;
	`
	tag, err := tx.Exec(ctx, flagQuery, txnIDs, reconID, now, userID, recon.AccountCode)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to flag transactions reconciled", err)
	}
	if int(tag.RowsAffected()) != len(txnIDs) {
		// Some id was unknown, already reconciled, or belongs to a different
		// account. Partial clearing would leave the caller guessing which.
		return nil, apperrors.NewAppError(404, "only "+strconv.FormatInt(tag.RowsAffected(), 10)+" of "+strconv.Itoa(len(txnIDs))+" transactions were eligible", apperrors.ErrNotFound)
	}

	sumQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM bank_transactions
		WHERE account_code = $1 AND reconciled = TRUE AND txn_date >= $2 AND txn_date <= $3;
	`
	var clearedSum decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, recon.AccountCode, recon.PeriodStart, recon.PeriodEnd).Scan(&clearedSum); err != nil {
		return nil, apperrors.NewAppError(500, "failed to recompute cleared balance", err)
	}

	var completed bool
	recon.ClearedBalance, recon.Difference, completed = accounting.ClearedPosition(recon.OpeningBalance, recon.StatementBalance, clearedSum)
	if completed {
		recon.Status = domain.ReconciliationCompleted
	}
	recon.LastUpdatedAt = now
	recon.LastUpdatedBy = userID

	updateQuery := `
		UPDATE reconciliations
		SET cleared_balance = $2, difference = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE recon_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, reconID, recon.ClearedBalance, recon.Difference, recon.Status, now, userID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update reconciliation "+reconID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return recon, nil
}
