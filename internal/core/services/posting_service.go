package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

// postingService translates business events into balanced entries. Each event
// kind has exactly one posting shape; the category keyword table picks the
// revenue or expense side.
type postingService struct {
	BaseService
	ledgerSvc   portssvc.LedgerSvcFacade
	accountSvc  portssvc.AccountSvcFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// NewPostingService creates a new PostingService.
func NewPostingService(ledgerSvc portssvc.LedgerSvcFacade, accountSvc portssvc.AccountSvcFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade) portssvc.PostingSvcFacade {
	return &postingService{
		ledgerSvc:   ledgerSvc,
		accountSvc:  accountSvc,
		invoiceRepo: invoiceRepo,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func (s *postingService) PostEvent(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if event.Reference == "" {
		return nil, fmt.Errorf("%w: event reference is required", apperrors.ErrValidation)
	}

	switch event.Kind {
	case domain.EventIncome:
		return s.postIncome(ctx, event, userID)
	case domain.EventExpense:
		return s.postExpense(ctx, event, userID)
	case domain.EventInvoiceIssued:
		return s.postInvoiceIssued(ctx, event, userID)
	case domain.EventPaymentReceived:
		return s.postPaymentReceived(ctx, event, userID)
	case domain.EventObjectDeleted:
		return s.ledgerSvc.ReverseByReference(ctx, event.Reference, userID)
	default:
		return nil, fmt.Errorf("%w: unknown event kind %q", apperrors.ErrValidation, event.Kind)
	}
}

// postIncome books money received: debit bank, credit revenue, and mirror the
// inflow into the bank subledger atomically.
func (s *postingService) postIncome(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if err := requirePositiveAmount(event); err != nil {
		return nil, err
	}

	bankCode, err := s.resolveBankAccount(ctx, event.BankAccountCode)
	if err != nil {
		return nil, err
	}
	revenueCode, err := s.resolveCategoryAccount(ctx, incomeRules, incomeFallback, event.Category, userID)
	if err != nil {
		return nil, err
	}

	draft := dto.EntryDraft{
		Date:        event.Date,
		Description: event.Description,
		Reference:   event.Reference,
		Lines: []dto.LineDraft{
			{AccountCode: bankCode, Debit: event.Amount},
			{AccountCode: revenueCode, Credit: event.Amount},
		},
	}
	extras := &portsrepo.SaveEntryExtras{
		Mirror: s.buildMirror(bankCode, event, event.Amount, userID),
	}
	return s.ledgerSvc.PostLinked(ctx, draft, extras, userID)
}

// postExpense books money spent: debit the category's expense account, credit
// bank, and mirror the outflow as a negative bank transaction.
func (s *postingService) postExpense(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if err := requirePositiveAmount(event); err != nil {
		return nil, err
	}

	bankCode, err := s.resolveBankAccount(ctx, event.BankAccountCode)
	if err != nil {
		return nil, err
	}
	expenseCode, err := s.resolveCategoryAccount(ctx, expenseRules, expenseFallback, event.Category, userID)
	if err != nil {
		return nil, err
	}

	draft := dto.EntryDraft{
		Date:        event.Date,
		Description: event.Description,
		Reference:   event.Reference,
		Lines: []dto.LineDraft{
			{AccountCode: expenseCode, Debit: event.Amount},
			{AccountCode: bankCode, Credit: event.Amount},
		},
	}
	extras := &portsrepo.SaveEntryExtras{
		Mirror: s.buildMirror(bankCode, event, event.Amount.Neg(), userID),
	}
	return s.ledgerSvc.PostLinked(ctx, draft, extras, userID)
}

// postInvoiceIssued recognizes revenue at issuance: debit receivables, credit
// revenue. The invoice transitions to ISSUED in the same transaction. No bank
// movement happens yet, so no mirror is written.
func (s *postingService) postInvoiceIssued(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if event.InvoiceID == "" {
		return nil, fmt.Errorf("%w: invoiceID is required for issuance", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, event.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: invoice %s is already issued", apperrors.ErrConflict, invoice.InvoiceID)
	}
	if invoice.Total.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: invoice %s has non-positive total %s", apperrors.ErrValidation, invoice.InvoiceID, invoice.Total.String())
	}

	revenueCode, err := s.resolveCategoryAccount(ctx, incomeRules, incomeFallback, event.Category, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireActiveAccount(ctx, AccountsReceivableCode); err != nil {
		return nil, err
	}

	description := event.Description
	if description == "" {
		description = fmt.Sprintf("Invoice %s issued", invoice.InvoiceNumber)
	}

	draft := dto.EntryDraft{
		Date:        event.Date,
		Description: description,
		Reference:   event.Reference,
		Lines: []dto.LineDraft{
			{AccountCode: AccountsReceivableCode, Debit: invoice.Total},
			{AccountCode: revenueCode, Credit: invoice.Total},
		},
	}
	extras := &portsrepo.SaveEntryExtras{IssueInvoiceID: invoice.InvoiceID}
	return s.ledgerSvc.PostLinked(ctx, draft, extras, userID)
}

// postPaymentReceived settles a receivable: debit bank, credit receivables.
// A payment exceeding the invoice's remaining balance is rejected; paying
// exactly the remaining balance settles the invoice.
func (s *postingService) postPaymentReceived(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if err := requirePositiveAmount(event); err != nil {
		return nil, err
	}
	if event.InvoiceID == "" {
		return nil, fmt.Errorf("%w: invoiceID is required for payments", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, event.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceIssued {
		return nil, fmt.Errorf("%w: invoice %s is not issued", apperrors.ErrConflict, invoice.InvoiceID)
	}

	remaining := invoice.RemainingBalance()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: invoice %s is fully settled", apperrors.ErrOverpaymentRejected, invoice.InvoiceID)
	}
	if event.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: payment %s exceeds remaining balance %s on invoice %s",
			apperrors.ErrOverpaymentRejected, event.Amount.String(), remaining.String(), invoice.InvoiceID)
	}
	applied := event.Amount

	bankCode, err := s.resolveBankAccount(ctx, event.BankAccountCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireActiveAccount(ctx, AccountsReceivableCode); err != nil {
		return nil, err
	}

	description := event.Description
	if description == "" {
		description = fmt.Sprintf("Payment on invoice %s", invoice.InvoiceNumber)
	}

	draft := dto.EntryDraft{
		Date:        event.Date,
		Description: description,
		Reference:   event.Reference,
		Lines: []dto.LineDraft{
			{AccountCode: bankCode, Debit: applied},
			{AccountCode: AccountsReceivableCode, Credit: applied},
		},
	}
	extras := &portsrepo.SaveEntryExtras{
		Mirror:  s.buildMirror(bankCode, event, applied, userID),
		Payment: &portsrepo.PaymentApplication{InvoiceID: invoice.InvoiceID, Amount: applied},
	}
	return s.ledgerSvc.PostLinked(ctx, draft, extras, userID)
}

// ResyncEvent propagates an amount edit on the originating business object.
// Category or account changes are out of resync's reach: those require a
// delete event followed by a fresh posting.
func (s *postingService) ResyncEvent(ctx context.Context, reference string, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error) {
	if event.Kind != domain.EventIncome && event.Kind != domain.EventExpense {
		return nil, fmt.Errorf("%w: only income and expense events support resync, got %q", apperrors.ErrValidation, event.Kind)
	}
	if err := requirePositiveAmount(event); err != nil {
		return nil, err
	}
	return s.ledgerSvc.Resync(ctx, reference, event.Amount, userID)
}

func (s *postingService) RegisterInvoice(ctx context.Context, req dto.RegisterInvoiceRequest, userID string) (*domain.Invoice, error) {
	if req.Total.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: invoice total must be positive, got %s", apperrors.ErrValidation, req.Total.String())
	}

	now := time.Now().UTC()
	invoiceID := req.InvoiceID
	if invoiceID == "" {
		invoiceID = uuid.NewString()
	}

	invoice := domain.Invoice{
		InvoiceID:     invoiceID,
		InvoiceNumber: req.InvoiceNumber,
		CustomerName:  req.CustomerName,
		Total:         req.Total,
		Paid:          decimal.Zero,
		Status:        domain.InvoiceDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice registered",
		slog.String("invoice_id", invoiceID),
		slog.String("number", invoice.InvoiceNumber),
		slog.String("total", invoice.Total.String()),
	)
	return &invoice, nil
}

func (s *postingService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

// resolveBankAccount validates the event's bank account override or falls
// back to the default cash/bank account.
func (s *postingService) resolveBankAccount(ctx context.Context, override string) (string, error) {
	code := override
	if code == "" {
		code = DefaultBankAccountCode
	}
	if _, err := s.requireActiveAccount(ctx, code); err != nil {
		return "", err
	}
	return code, nil
}

// resolveCategoryAccount matches the category against the keyword table and
// guarantees the target account exists, creating it when the chart has never
// seen it. Fallback hits are logged so miscategorized objects stay visible.
func (s *postingService) resolveCategoryAccount(ctx context.Context, rules []categoryRule, fallback categoryRule, category string, userID string) (string, error) {
	rule, matched := matchCategory(rules, fallback, category)
	if !matched && category != "" {
		s.LogWarn(ctx, "Category did not match any keyword, using fallback account",
			slog.String("category", category),
			slog.String("account_code", rule.accountCode),
		)
	}

	_, err := s.accountSvc.GetAccountByCode(ctx, rule.accountCode)
	if err == nil {
		return rule.accountCode, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	created, err := s.accountSvc.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:        rule.accountCode,
		Name:        rule.accountName,
		AccountType: string(rule.accountType),
	}, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create account %s on demand: %w", rule.accountCode, err)
	}
	s.LogInfo(ctx, "Account created on demand",
		slog.String("code", created.Code),
		slog.String("name", created.Name),
	)
	return created.Code, nil
}

func (s *postingService) requireActiveAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, code)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrUnknownAccount, code)
	}
	return account, nil
}

func (s *postingService) buildMirror(bankCode string, event domain.BusinessEvent, signedAmount decimal.Decimal, userID string) *domain.BankTransaction {
	now := time.Now().UTC()
	return &domain.BankTransaction{
		TxnID:       uuid.NewString(),
		AccountCode: bankCode,
		TxnDate:     event.Date,
		Amount:      signedAmount,
		Description: event.Description,
		Reference:   event.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

func requirePositiveAmount(event domain.BusinessEvent) error {
	if event.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s events require a positive amount, got %s", apperrors.ErrValidation, event.Kind, event.Amount.String())
	}
	// Amounts finer than the tolerance grain would make entry-level balance
	// checks meaningless.
	if event.Amount.LessThan(accounting.Tolerance) {
		return fmt.Errorf("%w: amount %s is below the representable grain", apperrors.ErrValidation, event.Amount.String())
	}
	return nil
}
