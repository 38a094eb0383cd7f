package services

import (
	"context"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts operations.
type AccountSvcFacade interface {
	// CreateAccount adds an account to the chart. Parent resolution sets the
	// account's level.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// GetAccountByCode retrieves one account.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves active accounts ordered by code.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// DeactivateAccount soft-deletes an account. Accounts with children or
	// posted lines can never be hard-deleted.
	DeactivateAccount(ctx context.Context, code string, userID string) error
}
