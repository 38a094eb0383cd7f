package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ledgerService is the single writer of account balances. Every mutation goes
// through Post, Reverse or Resync, each executed as one atomic unit by the
// repository.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) Post(ctx context.Context, draft dto.EntryDraft, userID string) (*domain.JournalEntry, error) {
	return s.PostLinked(ctx, draft, nil, userID)
}

func (s *ledgerService) PostLinked(ctx context.Context, draft dto.EntryDraft, extras *portsrepo.SaveEntryExtras, userID string) (*domain.JournalEntry, error) {
	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(draft.Lines))
	codes := make([]string, 0, len(draft.Lines))
	for i, l := range draft.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			LineNumber:  i + 1,
			Memo:        l.Memo,
		}
		codes = append(codes, l.AccountCode)
	}

	if err := accounting.ValidateLines(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := accounting.ValidateBalanced(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImbalancedEntry, err)
	}

	// Every referenced account must exist and be active. Create-on-demand is
	// the posting rules' privilege, exercised before reaching this point.
	accountsMap, err := s.accountSvc.GetAccountsByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for posting")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrUnknownAccount, code)
		}
	}

	// A reference must identify at most one active entry so that reverse and
	// resync stay unambiguous.
	if draft.Reference != "" {
		existing, err := s.journalRepo.FindActiveEntriesByReference(ctx, draft.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: reference %s already carried by entry %s", apperrors.ErrDuplicate, draft.Reference, existing[0].EntryID)
		}
	}

	debits, _ := accounting.SumSides(lines)
	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   draft.Date,
		Description: draft.Description,
		Reference:   draft.Reference,
		Status:      domain.Posted,
		Amount:      debits,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	entryNumber, err := s.journalRepo.SaveEntry(ctx, entry, lines, balanceChanges(lines), extras)
	if err != nil {
		s.LogError(ctx, err, "Failed to save entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	entry.EntryNumber = entryNumber
	entry.Lines = lines
	s.LogInfo(ctx, "Entry posted",
		slog.String("entry_id", entryID),
		slog.Int64("entry_number", entryNumber),
		slog.String("amount", entry.Amount.String()),
	)
	return &entry, nil
}

func (s *ledgerService) Reverse(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to retrieve entry %s: %w", entryID, err)
	}
	if original.Status == domain.Void {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadyVoided, entryID)
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}

	now := time.Now().UTC()
	reversingID := uuid.NewString()

	reversingLines := make([]domain.JournalLine, len(originalLines))
	for i, l := range originalLines {
		reversingLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversingID,
			AccountCode: l.AccountCode,
			Debit:       l.Credit, // Sides swapped: equal and opposite effect
			Credit:      l.Debit,
			LineNumber:  l.LineNumber,
			Memo:        l.Memo,
		}
	}

	reversing := domain.JournalEntry{
		EntryID:         reversingID,
		EntryDate:       original.EntryDate,
		Description:     fmt.Sprintf("Reversal of: %s", original.Description),
		Status:          domain.Posted,
		Amount:          original.Amount,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	entryNumber, err := s.journalRepo.ReverseEntry(ctx, original.EntryID, reversing, reversingLines, balanceChanges(reversingLines))
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to reverse entry %s: %w", entryID, err)
	}

	reversing.EntryNumber = entryNumber
	reversing.Lines = reversingLines
	s.LogInfo(ctx, "Entry reversed",
		slog.String("original_entry_id", entryID),
		slog.String("reversing_entry_id", reversingID),
	)
	return &reversing, nil
}

func (s *ledgerService) ReverseByReference(ctx context.Context, reference string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.findUniqueByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.Reverse(ctx, entry.EntryID, userID)
}

func (s *ledgerService) Resync(ctx context.Context, reference string, newAmount decimal.Decimal, userID string) (*domain.JournalEntry, error) {
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: resync amount must be positive, got %s", apperrors.ErrValidation, newAmount.String())
	}

	entry, err := s.findUniqueByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	updated, err := s.journalRepo.ResyncEntry(ctx, entry.EntryID, newAmount, userID, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to resync entry",
			slog.String("reference", reference),
			slog.String("entry_id", entry.EntryID),
		)
		return nil, err
	}

	s.LogInfo(ctx, "Entry resynced",
		slog.String("reference", reference),
		slog.String("entry_id", entry.EntryID),
		slog.String("new_amount", newAmount.String()),
	)
	return updated, nil
}

// findUniqueByReference resolves a business-object reference to exactly one
// non-VOID entry. Multiple matches are a corruption signal and are surfaced,
// never silently picked from.
func (s *ledgerService) findUniqueByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	matches, err := s.journalRepo.FindActiveEntriesByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reference %s: %w", reference, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no active entry for reference %s", apperrors.ErrEntryNotFound, reference)
	case 1:
		return &matches[0], nil
	default:
		s.LogWarn(ctx, "Reference matched multiple active entries",
			slog.String("reference", reference),
			slog.Int("matches", len(matches)),
		)
		return nil, fmt.Errorf("%w: reference %s matched %d active entries", apperrors.ErrEntryNotFound, reference, len(matches))
	}
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	return s.journalRepo.ListEntries(ctx, limit, offset, includeReversals)
}

func (s *ledgerService) GetAccountBalance(ctx context.Context, code string) (decimal.Decimal, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// balanceChanges nets each line's debit − credit effect per account.
func balanceChanges(lines []domain.JournalLine) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for _, l := range lines {
		changes[l.AccountCode] = changes[l.AccountCode].Add(l.Delta())
	}
	return changes
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
