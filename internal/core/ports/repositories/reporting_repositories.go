package repositories

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
)

// ReportingRepository provides the aggregate reads behind the trial balance,
// profit and loss, and the integrity sweep. All reads consider only POSTED,
// non-reversal-linked entries: posted lines are the single source of truth.
type ReportingRepository interface {
	// GetTrialBalanceData nets debit/credit per account over entries dated on
	// or before asOf.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData nets revenue and expense activity within a period.
	GetProfitAndLossData(ctx context.Context, from, to time.Time) (revenue []domain.AccountAmount, expenses []domain.AccountAmount, err error)

	// GetEntryImbalances finds POSTED entries whose line sums differ by more
	// than tolerance.
	GetEntryImbalances(ctx context.Context) ([]domain.IntegrityFinding, error)

	// GetAccountBalanceDrift finds accounts whose cached balance differs from
	// the sum of their effective posted lines.
	GetAccountBalanceDrift(ctx context.Context) ([]domain.IntegrityFinding, error)

	// GetBankAmountDrift finds bank transactions whose amount differs from the
	// journal entry sharing their reference.
	GetBankAmountDrift(ctx context.Context) ([]domain.IntegrityFinding, error)

	// GetOrphanBankTransactions finds non-imported bank transactions with no
	// active journal entry for their reference.
	GetOrphanBankTransactions(ctx context.Context) ([]domain.IntegrityFinding, error)
}
