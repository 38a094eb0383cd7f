package repositories

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByCode retrieves a single account by its code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Codes with
	// no matching account are simply absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves active accounts ordered by code.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// HasDependents reports whether the account has child accounts or posted
	// lines; such accounts may only be deactivated, never deleted.
	HasDependents(ctx context.Context, code string) (bool, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates name/description/active flag of an account.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive.
	DeactivateAccount(ctx context.Context, code string, userID string, now time.Time) error
}

// AccountTxOperations are the operations the journal repository runs inside
// its own database transaction: they are the only path that writes balances.
type AccountTxOperations interface {
	// FindAccountsByCodesForUpdate locks the account rows for update and
	// returns them. Fails with apperrors.ErrNotFound if any code is missing.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas to the locked accounts.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOperations
}
