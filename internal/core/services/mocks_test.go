package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasDependents(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, code string, userID string, now time.Time) error {
	args := m.Called(ctx, code, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindActiveEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset, includeReversals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, extras *portsrepo.SaveEntryExtras) (int64, error) {
	args := m.Called(ctx, entry, lines, balanceChanges, extras)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) ReverseEntry(ctx context.Context, originalEntryID string, reversing domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (int64, error) {
	args := m.Called(ctx, originalEntryID, reversing, lines, balanceChanges)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) ResyncEntry(ctx context.Context, entryID string, newAmount decimal.Decimal, updatedBy string, now time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, newAmount, updatedBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, code string, userID string) error {
	args := m.Called(ctx, code, userID)
	return args.Error(0)
}

// --- Mock LedgerService ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Post(ctx context.Context, draft dto.EntryDraft, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, draft, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) PostLinked(ctx context.Context, draft dto.EntryDraft, extras *portsrepo.SaveEntryExtras, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, draft, extras, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) Reverse(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseByReference(ctx context.Context, reference string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, reference, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) Resync(ctx context.Context, reference string, newAmount decimal.Decimal, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, reference, newAmount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset, includeReversals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetAccountBalance(ctx context.Context, code string) (decimal.Decimal, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock InvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ApplyPaymentInTx(ctx context.Context, tx pgx.Tx, invoiceID string, amount decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, invoiceID, amount, userID, now)
	return args.Error(0)
}

// --- Mock BankTransactionRepository ---

type MockBankRepository struct {
	mock.Mock
}

var _ portsrepo.BankTransactionRepositoryFacade = (*MockBankRepository)(nil)

func (m *MockBankRepository) FindTransactionsInWindow(ctx context.Context, accountCode string, start, end time.Time) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, accountCode, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) ListUnreconciled(ctx context.Context, accountCode string) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) SaveTransaction(ctx context.Context, txn domain.BankTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockBankRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

// --- Mock ReconciliationRepository ---

type MockReconRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconRepository)(nil)

func (m *MockReconRepository) SaveReconciliation(ctx context.Context, recon domain.Reconciliation) error {
	args := m.Called(ctx, recon)
	return args.Error(0)
}

func (m *MockReconRepository) FindReconciliationByID(ctx context.Context, reconID string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, reconID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

func (m *MockReconRepository) FindLatestByAccount(ctx context.Context, accountCode string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

func (m *MockReconRepository) MarkReconciled(ctx context.Context, reconID string, txnIDs []string, userID string, now time.Time) (*domain.Reconciliation, error) {
	args := m.Called(ctx, reconID, txnIDs, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.AccountAmount), args.Get(1).([]domain.AccountAmount), args.Error(2)
}

func (m *MockReportingRepository) GetEntryImbalances(ctx context.Context) ([]domain.IntegrityFinding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrityFinding), args.Error(1)
}

func (m *MockReportingRepository) GetAccountBalanceDrift(ctx context.Context) ([]domain.IntegrityFinding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrityFinding), args.Error(1)
}

func (m *MockReportingRepository) GetBankAmountDrift(ctx context.Context) ([]domain.IntegrityFinding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrityFinding), args.Error(1)
}

func (m *MockReportingRepository) GetOrphanBankTransactions(ctx context.Context) ([]domain.IntegrityFinding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrityFinding), args.Error(1)
}
