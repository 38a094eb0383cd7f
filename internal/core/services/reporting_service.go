package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

// reportingService aggregates posted lines into reports. It never reads the
// originating business objects, so a figure can only appear through the entry
// that posted it.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get trial balance data")
		return nil, fmt.Errorf("failed to get trial balance data: %w", err)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		IsBalanced:  accounting.EqualWithinTolerance(totalDebit, totalCredit),
	}
	if !report.IsBalanced {
		// A posted ledger can only get here through corruption the sweep
		// should also see. Loud, not fatal: the report itself is the evidence.
		s.LogWarn(ctx, "Trial balance does not balance",
			slog.String("total_debit", totalDebit.String()),
			slog.String("total_credit", totalCredit.String()),
		)
	}
	return report, nil
}

func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	revenue, expenses, err := s.reportingRepo.GetProfitAndLossData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to get profit and loss data")
		return nil, fmt.Errorf("failed to get profit and loss data: %w", err)
	}

	totalRevenue := decimal.Zero
	for _, r := range revenue {
		totalRevenue = totalRevenue.Add(r.NetAmount)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.NetAmount)
	}

	return &domain.PAndLReport{
		Revenue:   revenue,
		Expenses:  expenses,
		NetProfit: totalRevenue.Sub(totalExpenses),
	}, nil
}

func (s *reportingService) CheckIntegrity(ctx context.Context) ([]domain.IntegrityFinding, error) {
	findings := make([]domain.IntegrityFinding, 0)

	sweeps := []struct {
		name string
		run  func(context.Context) ([]domain.IntegrityFinding, error)
	}{
		{"entry_imbalances", s.reportingRepo.GetEntryImbalances},
		{"account_balance_drift", s.reportingRepo.GetAccountBalanceDrift},
		{"bank_amount_drift", s.reportingRepo.GetBankAmountDrift},
		{"orphan_bank_transactions", s.reportingRepo.GetOrphanBankTransactions},
	}
	for _, sweep := range sweeps {
		found, err := sweep.run(ctx)
		if err != nil {
			s.LogError(ctx, err, "Integrity sweep failed", slog.String("sweep", sweep.name))
			return nil, fmt.Errorf("integrity sweep %s failed: %w", sweep.name, err)
		}
		findings = append(findings, found...)
	}

	if len(findings) > 0 {
		s.LogWarn(ctx, "Integrity sweep found violations", slog.Int("findings", len(findings)))
	} else {
		s.LogInfo(ctx, "Integrity sweep clean")
	}
	return findings, nil
}
