package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_code, name, account_type, parent_code, level, description, is_active, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var parentCode sql.NullString
	err := row.Scan(
		&account.Code,
		&account.Name,
		&account.AccountType,
		&parentCode,
		&account.Level,
		&account.Description,
		&account.IsActive,
		&account.Balance,
		&account.CreatedAt,
		&account.CreatedBy,
		&account.LastUpdatedAt,
		&account.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if parentCode.Valid {
		account.ParentCode = parentCode.String
	}
	return &account, nil
}

// SaveAccount inserts a new account into the chart.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	var parentCode sql.NullString
	if account.ParentCode != "" {
		parentCode = sql.NullString{String: account.ParentCode, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		account.Code,
		account.Name,
		account.AccountType,
		parentCode,
		account.Level,
		account.Description,
		account.IsActive,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewAppError(409, "account code "+account.Code+" already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert account "+account.Code, err)
	}
	return nil
}

// FindAccountByCode retrieves a single account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + code + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query account "+code, err)
	}
	return account, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by codes", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts[account.Code] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

// ListAccounts retrieves active accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active = TRUE
		ORDER BY account_code
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

// HasDependents reports whether the account has child accounts or posted
// journal lines.
func (r *PgxAccountRepository) HasDependents(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_code = $1)
		    OR EXISTS (SELECT 1 FROM journal_lines WHERE account_code = $1);
	`
	var hasDependents bool
	if err := r.Pool.QueryRow(ctx, query, code).Scan(&hasDependents); err != nil {
		return false, apperrors.NewAppError(500, "failed to check dependents for account "+code, err)
	}
	return hasDependents, nil
}

// UpdateAccount updates the mutable metadata of an account. Balance is off
// limits here: only the journal repository writes balances.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_code = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.Code,
		account.Name,
		account.Description,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update account "+account.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + account.Code + " not found")
	}
	return nil
}

// DeactivateAccount marks an account inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, code string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_code = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, code, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account "+code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + code + " not found")
	}
	return nil
}

// FindAccountsByCodesForUpdate locks the account rows for the duration of the
// surrounding transaction and returns them.
func (r *PgxAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = ANY($1) FOR UPDATE;`
	rows, err := tx.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		accounts[account.Code] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating locked account rows", err)
	}
	for _, code := range codes {
		if _, found := accounts[code]; !found {
			return nil, apperrors.NewNotFoundError("account " + code + " not found")
		}
	}
	return accounts, nil
}

// UpdateAccountBalancesInTx applies balance deltas to already-locked accounts.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_code = $1;
	`
	batch := &pgx.Batch{}
	for code, delta := range balanceChanges {
		batch.Queue(query, code, delta, now, userID)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply balance changes", err)
	}
	return nil
}
