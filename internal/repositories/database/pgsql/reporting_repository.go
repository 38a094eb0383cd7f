package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

type ReportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new repository for aggregate report reads.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &ReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// effectiveEntryFilter limits reads to the effective ledger: posted entries
// that are not reversals. Voided originals and their reversing entries cancel
// each other in the balances, so the reports drop the pair entirely.
const effectiveEntryFilter = `e.status = 'POSTED' AND e.original_entry_id IS NULL`

// GetTrialBalanceData nets debit/credit per account over effective entries
// dated on or before asOf. Each account lands on one side: its net.
func (r *ReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0) AS total_debit,
		       COALESCE(SUM(l.credit), 0) AS total_credit
		FROM accounts a
		JOIN journal_lines l ON l.account_code = a.account_code
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE ` + effectiveEntryFilter + ` AND e.entry_date <= $1
		GROUP BY a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	result := make([]domain.TrialBalanceRow, 0)
	for rows.Next() {
		var row domain.TrialBalanceRow
		var totalDebit, totalCredit decimal.Decimal
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &row.AccountType, &totalDebit, &totalCredit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		// Present the net on a single side.
		net := totalDebit.Sub(totalCredit)
		if net.IsZero() {
			continue
		}
		if net.IsPositive() {
			row.Debit = net
			row.Credit = decimal.Zero
		} else {
			row.Debit = decimal.Zero
			row.Credit = net.Neg()
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}

// GetProfitAndLossData nets revenue and expense activity within a period.
// Revenue is credit-normal, expenses debit-normal.
func (r *ReportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT a.account_code, a.name, a.account_type,
		       COALESCE(SUM(CASE WHEN a.account_type = 'REVENUE' THEN l.credit - l.debit ELSE l.debit - l.credit END), 0) AS net_amount
		FROM accounts a
		JOIN journal_lines l ON l.account_code = a.account_code
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE ` + effectiveEntryFilter + `
		  AND a.account_type IN ('REVENUE', 'EXPENSE')
		  AND e.entry_date >= $1 AND e.entry_date <= $2
		GROUP BY a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query profit and loss data", err)
	}
	defer rows.Close()

	revenue := make([]domain.AccountAmount, 0)
	expenses := make([]domain.AccountAmount, 0)
	for rows.Next() {
		var amount domain.AccountAmount
		var accountType domain.AccountType
		if err := rows.Scan(&amount.AccountCode, &amount.Name, &accountType, &amount.NetAmount); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan profit and loss row", err)
		}
		if accountType == domain.Revenue {
			revenue = append(revenue, amount)
		} else {
			expenses = append(expenses, amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating profit and loss rows", err)
	}
	return revenue, expenses, nil
}

// GetEntryImbalances finds POSTED entries whose line sums differ by tolerance
// or more. A healthy ledger returns nothing: posting rejects imbalance.
func (r *ReportingRepository) GetEntryImbalances(ctx context.Context) ([]domain.IntegrityFinding, error) {
	query := `
		SELECT e.entry_id, SUM(l.debit) - SUM(l.credit) AS delta
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.entry_id
		WHERE e.status = 'POSTED'
		GROUP BY e.entry_id
		HAVING ABS(SUM(l.debit) - SUM(l.credit)) >= $1;
	`
	return r.collectFindings(ctx, query, domain.FindingImbalancedEntry, "entry debits and credits differ", accounting.Tolerance)
}

// GetAccountBalanceDrift finds accounts whose cached balance differs from the
// sum of their effective posted lines.
func (r *ReportingRepository) GetAccountBalanceDrift(ctx context.Context) ([]domain.IntegrityFinding, error) {
	query := `
		SELECT a.account_code,
		       a.balance - COALESCE(SUM(CASE WHEN ` + effectiveEntryFilter + ` THEN l.debit - l.credit ELSE 0 END), 0) AS delta
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_code = a.account_code
		LEFT JOIN journal_entries e ON e.entry_id = l.entry_id
		GROUP BY a.account_code, a.balance
		HAVING ABS(a.balance - COALESCE(SUM(CASE WHEN ` + effectiveEntryFilter + ` THEN l.debit - l.credit ELSE 0 END), 0)) >= $1;
	`
	return r.collectFindings(ctx, query, domain.FindingBalanceDrift, "cached balance differs from posted lines", accounting.Tolerance)
}

// GetBankAmountDrift finds non-imported bank transactions whose magnitude
// differs from the effective journal entry sharing their reference.
func (r *ReportingRepository) GetBankAmountDrift(ctx context.Context) ([]domain.IntegrityFinding, error) {
	query := `
		SELECT t.txn_id, ABS(t.amount) - e.amount AS delta
		FROM bank_transactions t
		JOIN journal_entries e ON e.reference = t.reference AND ` + effectiveEntryFilter + `
		WHERE t.imported = FALSE
		  AND ABS(ABS(t.amount) - e.amount) >= $1;
	`
	return r.collectFindings(ctx, query, domain.FindingAmountDrift, "bank transaction amount differs from journal entry", accounting.Tolerance)
}

// GetOrphanBankTransactions finds non-imported bank transactions with no
// effective journal entry for their reference.
func (r *ReportingRepository) GetOrphanBankTransactions(ctx context.Context) ([]domain.IntegrityFinding, error) {
	query := `
		SELECT t.txn_id, t.amount AS delta
		FROM bank_transactions t
		WHERE t.imported = FALSE
		  AND NOT EXISTS (
		      SELECT 1 FROM journal_entries e
		      WHERE e.reference = t.reference AND ` + effectiveEntryFilter + `
		  );
	`
	return r.collectFindings(ctx, query, domain.FindingOrphanBankTxn, "bank transaction has no active journal entry")
}

// collectFindings runs an (entity_id, delta) query and wraps the rows as
// findings of one type.
func (r *ReportingRepository) collectFindings(ctx context.Context, query string, findingType domain.FindingType, detail string, args ...any) ([]domain.IntegrityFinding, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query "+string(findingType)+" findings", err)
	}
	defer rows.Close()

	findings := make([]domain.IntegrityFinding, 0)
	for rows.Next() {
		finding := domain.IntegrityFinding{Type: findingType, Detail: detail}
		if err := rows.Scan(&finding.EntityID, &finding.Delta); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan finding row", err)
		}
		findings = append(findings, finding)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating finding rows", err)
	}
	return findings, nil
}
