package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

// reconciliationService proves the bank subledger against external statements.
// It reports discrepancies as data; the only write path that touches the
// general ledger is ForceAdjustment, and that goes through the ledger engine
// like every other posting.
type reconciliationService struct {
	BaseService
	reconRepo  portsrepo.ReconciliationRepositoryFacade
	bankRepo   portsrepo.BankTransactionRepositoryFacade
	ledgerSvc  portssvc.LedgerSvcFacade
	accountSvc portssvc.AccountSvcFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepositoryFacade,
	bankRepo portsrepo.BankTransactionRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	accountSvc portssvc.AccountSvcFacade,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:  reconRepo,
		bankRepo:   bankRepo,
		ledgerSvc:  ledgerSvc,
		accountSvc: accountSvc,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) Start(ctx context.Context, req dto.StartReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, fmt.Errorf("%w: period end must be after period start", apperrors.ErrValidation)
	}

	account, err := s.accountSvc.GetAccountByCode(ctx, req.AccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, req.AccountCode)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrUnknownAccount, req.AccountCode)
	}

	// One open period per account: a second reconciliation on the same account
	// must wait until the first completes.
	latest, err := s.reconRepo.FindLatestByAccount(ctx, req.AccountCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if latest != nil && latest.Status == domain.ReconciliationInProgress {
		return nil, fmt.Errorf("%w: reconciliation %s is still in progress for account %s", apperrors.ErrConflict, latest.ReconID, req.AccountCode)
	}

	now := time.Now().UTC()
	recon := domain.Reconciliation{
		ReconID:          uuid.NewString(),
		AccountCode:      req.AccountCode,
		PeriodStart:      req.PeriodStart,
		PeriodEnd:        req.PeriodEnd,
		OpeningBalance:   req.OpeningBalance,
		StatementBalance: req.StatementBalance,
		ClearedBalance:   req.OpeningBalance,
		Difference:       req.StatementBalance.Sub(req.OpeningBalance),
		Status:           domain.ReconciliationInProgress,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.reconRepo.SaveReconciliation(ctx, recon); err != nil {
		s.LogError(ctx, err, "Failed to save reconciliation", slog.String("account_code", req.AccountCode))
		return nil, err
	}

	s.LogInfo(ctx, "Reconciliation started",
		slog.String("recon_id", recon.ReconID),
		slog.String("account_code", recon.AccountCode),
	)
	return &recon, nil
}

func (s *reconciliationService) ImportStatement(ctx context.Context, reconID string, statement []domain.StatementTransaction, userID string) (*domain.ImportResult, error) {
	recon, err := s.reconRepo.FindReconciliationByID(ctx, reconID)
	if err != nil {
		return nil, err
	}
	if recon.Status == domain.ReconciliationCompleted {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrReconciliationCompleted, reconID)
	}

	bookTxns, err := s.bankRepo.FindTransactionsInWindow(ctx, recon.AccountCode, recon.PeriodStart, recon.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for window: %w", err)
	}

	matchedBook := make(map[string]bool, len(bookTxns))
	result := &domain.ImportResult{}
	now := time.Now().UTC()

	for _, line := range statement {
		idx := s.matchStatementLine(line, bookTxns, matchedBook)
		if idx >= 0 {
			matchedBook[bookTxns[idx].TxnID] = true
			result.Matched++
			continue
		}

		// No book record for this statement line: create it as imported so the
		// period can still converge. Imported transactions have no journal
		// entry; the integrity sweep deliberately ignores them.
		imported := domain.BankTransaction{
			TxnID:       uuid.NewString(),
			AccountCode: recon.AccountCode,
			TxnDate:     line.Date,
			Amount:      line.Amount,
			Description: line.Description,
			Reference:   line.Reference,
			Imported:    true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.bankRepo.SaveTransaction(ctx, imported); err != nil {
			return nil, fmt.Errorf("failed to save imported transaction: %w", err)
		}
		result.Created++
	}

	for _, txn := range bookTxns {
		if !matchedBook[txn.TxnID] && !txn.Reconciled {
			result.MissingFromStatement = append(result.MissingFromStatement, txn)
		}
	}

	s.LogInfo(ctx, "Statement imported",
		slog.String("recon_id", reconID),
		slog.Int("matched", result.Matched),
		slog.Int("created", result.Created),
		slog.Int("missing_from_statement", len(result.MissingFromStatement)),
	)
	return result, nil
}

// matchStatementLine finds the unconsumed book transaction matching a
// statement line: same calendar date and amount within tolerance. Description
// similarity only breaks ties between several date/amount candidates; it never
// qualifies or disqualifies a match on its own.
func (s *reconciliationService) matchStatementLine(line domain.StatementTransaction, bookTxns []domain.BankTransaction, consumed map[string]bool) int {
	best := -1
	bestScore := -1
	for i, txn := range bookTxns {
		if consumed[txn.TxnID] {
			continue
		}
		if !sameDay(txn.TxnDate, line.Date) {
			continue
		}
		if !accounting.EqualWithinTolerance(txn.Amount, line.Amount) {
			continue
		}
		score := tokenOverlap(txn.Description, line.Description)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func (s *reconciliationService) MarkReconciled(ctx context.Context, reconID string, txnIDs []string, userID string) (*domain.Reconciliation, error) {
	if len(txnIDs) == 0 {
		return nil, fmt.Errorf("%w: no transaction ids given", apperrors.ErrValidation)
	}

	recon, err := s.reconRepo.MarkReconciled(ctx, reconID, txnIDs, userID, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to mark transactions reconciled", slog.String("recon_id", reconID))
		return nil, err
	}

	if recon.Status == domain.ReconciliationCompleted {
		s.LogInfo(ctx, "Reconciliation completed",
			slog.String("recon_id", reconID),
			slog.String("cleared_balance", recon.ClearedBalance.String()),
		)
	} else {
		s.LogInfo(ctx, "Reconciliation still open",
			slog.String("recon_id", reconID),
			slog.String("difference", recon.Difference.String()),
		)
	}
	return recon, nil
}

// ForceAdjustment books the gap between the account's book balance and the
// target as a pre-reconciled bank transaction plus the matching journal entry
// against the adjustments account. The delta flows through the ledger engine,
// so the general ledger and the subledger move together.
func (s *reconciliationService) ForceAdjustment(ctx context.Context, req dto.ForceAdjustmentRequest, userID string) (*domain.BankTransaction, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: adjustment reason is required", apperrors.ErrValidation)
	}

	bookBalance, err := s.ledgerSvc.GetAccountBalance(ctx, req.AccountCode)
	if err != nil {
		return nil, err
	}

	delta := req.TargetBalance.Sub(bookBalance)
	if delta.Abs().LessThan(accounting.Tolerance) {
		return nil, fmt.Errorf("%w: book balance %s already matches target %s", apperrors.ErrValidation, bookBalance.String(), req.TargetBalance.String())
	}

	if err := s.ensureAdjustmentAccount(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reference := "adjustment-" + uuid.NewString()
	description := fmt.Sprintf("Reconciliation adjustment: %s", req.Reason)
	magnitude := delta.Abs()

	var lines []dto.LineDraft
	if delta.IsPositive() {
		lines = []dto.LineDraft{
			{AccountCode: req.AccountCode, Debit: magnitude},
			{AccountCode: ReconciliationAdjustmentCode, Credit: magnitude},
		}
	} else {
		lines = []dto.LineDraft{
			{AccountCode: ReconciliationAdjustmentCode, Debit: magnitude},
			{AccountCode: req.AccountCode, Credit: magnitude},
		}
	}

	mirror := &domain.BankTransaction{
		TxnID:       uuid.NewString(),
		AccountCode: req.AccountCode,
		TxnDate:     now,
		Amount:      delta,
		Description: description,
		Reference:   reference,
		Reconciled:  true, // Adjustments are born reconciled: they exist to close the gap
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	draft := dto.EntryDraft{
		Date:        now,
		Description: description,
		Reference:   reference,
		Lines:       lines,
	}
	if _, err := s.ledgerSvc.PostLinked(ctx, draft, &portsrepo.SaveEntryExtras{Mirror: mirror}, userID); err != nil {
		s.LogError(ctx, err, "Failed to post adjustment", slog.String("account_code", req.AccountCode))
		return nil, err
	}

	s.LogInfo(ctx, "Adjustment booked",
		slog.String("account_code", req.AccountCode),
		slog.String("delta", delta.String()),
		slog.String("reason", req.Reason),
	)
	return mirror, nil
}

func (s *reconciliationService) GetStatus(ctx context.Context, accountCode string) (*domain.Reconciliation, error) {
	return s.reconRepo.FindLatestByAccount(ctx, accountCode)
}

func (s *reconciliationService) ListUnreconciled(ctx context.Context, accountCode string) ([]domain.BankTransaction, error) {
	return s.bankRepo.ListUnreconciled(ctx, accountCode)
}

// ensureAdjustmentAccount recreates the seeded adjustments account if the
// chart has lost it.
func (s *reconciliationService) ensureAdjustmentAccount(ctx context.Context, userID string) error {
	_, err := s.accountSvc.GetAccountByCode(ctx, ReconciliationAdjustmentCode)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	_, err = s.accountSvc.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:        ReconciliationAdjustmentCode,
		Name:        "Reconciliation Adjustments",
		AccountType: string(domain.Equity),
	}, userID)
	if err != nil {
		return fmt.Errorf("failed to create adjustments account: %w", err)
	}
	return nil
}

// sameDay compares calendar dates, ignoring the time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// tokenOverlap counts lowercase whitespace-separated tokens two descriptions
// share.
func tokenOverlap(a, b string) int {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(a)) {
		tokens[t] = true
	}
	count := 0
	for _, t := range strings.Fields(strings.ToLower(b)) {
		if tokens[t] {
			count++
			tokens[t] = false
		}
	}
	return count
}
