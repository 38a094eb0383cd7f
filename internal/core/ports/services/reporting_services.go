package services

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
)

// ReportingSvcFacade reads exclusively from posted entries: reports never fall
// back to raw business objects, eliminating dual counting.
type ReportingSvcFacade interface {
	// TrialBalance nets debit/credit per account as of a date and proves the
	// ledger balances within tolerance.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// ProfitAndLoss summarizes revenue and expense activity for a period.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)

	// CheckIntegrity sweeps for structural corruption: imbalanced posted
	// entries, balance drift, bank/journal amount drift, orphaned bank
	// transactions. Findings are reported, never repaired.
	CheckIntegrity(ctx context.Context) ([]domain.IntegrityFinding, error)
}
