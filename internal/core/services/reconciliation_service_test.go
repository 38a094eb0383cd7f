package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/core/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockReconRepo  *MockReconRepository
	mockBankRepo   *MockBankRepository
	mockLedgerSvc  *MockLedgerService
	mockAccountSvc *MockAccountService
	reconSvc       portssvc.ReconciliationSvcFacade
	ctx            context.Context
	userID         string
	periodStart    time.Time
	periodEnd      time.Time
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.mockReconRepo = new(MockReconRepository)
	s.mockBankRepo = new(MockBankRepository)
	s.mockLedgerSvc = new(MockLedgerService)
	s.mockAccountSvc = new(MockAccountService)
	s.reconSvc = services.NewReconciliationService(s.mockReconRepo, s.mockBankRepo, s.mockLedgerSvc, s.mockAccountSvc)
	s.ctx = context.Background()
	s.userID = "user-1"
	s.periodStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.periodEnd = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func (s *ReconciliationServiceTestSuite) startRequest() dto.StartReconciliationRequest {
	return dto.StartReconciliationRequest{
		AccountCode:      "1000",
		PeriodStart:      s.periodStart,
		PeriodEnd:        s.periodEnd,
		OpeningBalance:   decimal.NewFromInt(1000),
		StatementBalance: decimal.NewFromInt(1500),
	}
}

func (s *ReconciliationServiceTestSuite) bookTxn(id string, day int, amount float64, description string) domain.BankTransaction {
	return domain.BankTransaction{
		TxnID:       id,
		AccountCode: "1000",
		TxnDate:     time.Date(2024, 3, day, 14, 30, 0, 0, time.UTC),
		Amount:      decimal.NewFromFloat(amount),
		Description: description,
	}
}

func (s *ReconciliationServiceTestSuite) TestStartSuccess() {
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "1000").
		Return(&domain.Account{Code: "1000", IsActive: true}, nil)
	s.mockReconRepo.On("FindLatestByAccount", s.ctx, "1000").
		Return(nil, apperrors.NewNotFoundError("no reconciliation"))
	s.mockReconRepo.On("SaveReconciliation", s.ctx, mock.AnythingOfType("domain.Reconciliation")).
		Return(nil).
		Run(func(args mock.Arguments) {
			recon := args.Get(1).(domain.Reconciliation)
			assert.Equal(s.T(), domain.ReconciliationInProgress, recon.Status)
			assert.True(s.T(), recon.ClearedBalance.Equal(decimal.NewFromInt(1000)))
			assert.True(s.T(), recon.Difference.Equal(decimal.NewFromInt(500)))
		})

	recon, err := s.reconSvc.Start(s.ctx, s.startRequest(), s.userID)

	s.Require().NoError(err)
	s.Equal(domain.ReconciliationInProgress, recon.Status)
	s.mockReconRepo.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestStartRejectsInvertedPeriod() {
	req := s.startRequest()
	req.PeriodStart, req.PeriodEnd = req.PeriodEnd, req.PeriodStart

	_, err := s.reconSvc.Start(s.ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestStartRejectsSecondOpenPeriod() {
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "1000").
		Return(&domain.Account{Code: "1000", IsActive: true}, nil)
	s.mockReconRepo.On("FindLatestByAccount", s.ctx, "1000").
		Return(&domain.Reconciliation{ReconID: "r-open", Status: domain.ReconciliationInProgress}, nil)

	_, err := s.reconSvc.Start(s.ctx, s.startRequest(), s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *ReconciliationServiceTestSuite) TestStartAllowsNewPeriodAfterCompleted() {
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "1000").
		Return(&domain.Account{Code: "1000", IsActive: true}, nil)
	s.mockReconRepo.On("FindLatestByAccount", s.ctx, "1000").
		Return(&domain.Reconciliation{ReconID: "r-done", Status: domain.ReconciliationCompleted}, nil)
	s.mockReconRepo.On("SaveReconciliation", s.ctx, mock.Anything).Return(nil)

	_, err := s.reconSvc.Start(s.ctx, s.startRequest(), s.userID)

	s.NoError(err)
}

func (s *ReconciliationServiceTestSuite) TestStartRejectsUnknownAccount() {
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "1000").
		Return(nil, apperrors.NewNotFoundError("account 1000 not found"))

	_, err := s.reconSvc.Start(s.ctx, s.startRequest(), s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (s *ReconciliationServiceTestSuite) openRecon() *domain.Reconciliation {
	return &domain.Reconciliation{
		ReconID:          "r-1",
		AccountCode:      "1000",
		PeriodStart:      s.periodStart,
		PeriodEnd:        s.periodEnd,
		OpeningBalance:   decimal.NewFromInt(1000),
		StatementBalance: decimal.NewFromInt(1500),
		ClearedBalance:   decimal.NewFromInt(1000),
		Difference:       decimal.NewFromInt(500),
		Status:           domain.ReconciliationInProgress,
	}
}

func (s *ReconciliationServiceTestSuite) TestImportMatchesSameDayAndAmount() {
	book := []domain.BankTransaction{
		s.bookTxn("t-1", 5, 300, "Deposito venta mostrador"),
		s.bookTxn("t-2", 12, -80, "Pago combustible"),
	}
	statement := []domain.StatementTransaction{
		{Date: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(300), Description: "DEP VENTA"},
		{Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-80), Description: "COMBUSTIBLE SHELL"},
	}

	s.mockReconRepo.On("FindReconciliationByID", s.ctx, "r-1").Return(s.openRecon(), nil)
	s.mockBankRepo.On("FindTransactionsInWindow", s.ctx, "1000", s.periodStart, s.periodEnd).Return(book, nil)

	result, err := s.reconSvc.ImportStatement(s.ctx, "r-1", statement, s.userID)

	s.Require().NoError(err)
	s.Equal(2, result.Matched)
	s.Equal(0, result.Created)
	s.Empty(result.MissingFromStatement)
	s.mockBankRepo.AssertNotCalled(s.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestImportCreatesUnmatchedStatementLines() {
	book := []domain.BankTransaction{
		s.bookTxn("t-1", 5, 300, "Deposito"),
	}
	// Bank fee the books never saw.
	statement := []domain.StatementTransaction{
		{Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromFloat(-12.50), Description: "COMISION MANTENIMIENTO", Reference: "stmt-77"},
	}

	s.mockReconRepo.On("FindReconciliationByID", s.ctx, "r-1").Return(s.openRecon(), nil)
	s.mockBankRepo.On("FindTransactionsInWindow", s.ctx, "1000", s.periodStart, s.periodEnd).Return(book, nil)
	s.mockBankRepo.On("SaveTransaction", s.ctx, mock.AnythingOfType("domain.BankTransaction")).
		Return(nil).
		Run(func(args mock.Arguments) {
			txn := args.Get(1).(domain.BankTransaction)
			assert.True(s.T(), txn.Imported)
			assert.False(s.T(), txn.Reconciled)
			assert.Equal(s.T(), "1000", txn.AccountCode)
			assert.Equal(s.T(), "stmt-77", txn.Reference)
			assert.True(s.T(), txn.Amount.Equal(decimal.NewFromFloat(-12.50)))
		})

	result, err := s.reconSvc.ImportStatement(s.ctx, "r-1", statement, s.userID)

	s.Require().NoError(err)
	s.Equal(0, result.Matched)
	s.Equal(1, result.Created)
	// The unmatched book deposit is flagged for review.
	s.Require().Len(result.MissingFromStatement, 1)
	s.Equal("t-1", result.MissingFromStatement[0].TxnID)
}

func (s *ReconciliationServiceTestSuite) TestImportBreaksTiesByDescription() {
	// Two book transactions, same day, same amount. The statement line should
	// pair with the one sharing description tokens.
	book := []domain.BankTransaction{
		s.bookTxn("t-rent", 10, -500, "Alquiler deposito central"),
		s.bookTxn("t-salary", 10, -500, "Anticipo salarios"),
	}
	statement := []domain.StatementTransaction{
		{Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-500), Description: "TRANSF anticipo salarios marzo"},
	}

	s.mockReconRepo.On("FindReconciliationByID", s.ctx, "r-1").Return(s.openRecon(), nil)
	s.mockBankRepo.On("FindTransactionsInWindow", s.ctx, "1000", s.periodStart, s.periodEnd).Return(book, nil)

	result, err := s.reconSvc.ImportStatement(s.ctx, "r-1", statement, s.userID)

	s.Require().NoError(err)
	s.Equal(1, result.Matched)
	s.Require().Len(result.MissingFromStatement, 1)
	s.Equal("t-rent", result.MissingFromStatement[0].TxnID)
}

func (s *ReconciliationServiceTestSuite) TestImportDoesNotConsumeBookTxnTwice() {
	book := []domain.BankTransaction{
		s.bookTxn("t-1", 10, -500, "Pago proveedor"),
	}
	statement := []domain.StatementTransaction{
		{Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-500), Description: "PAGO proveedor"},
		{Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-500), Description: "PAGO proveedor"},
	}

	s.mockReconRepo.On("FindReconciliationByID", s.ctx, "r-1").Return(s.openRecon(), nil)
	s.mockBankRepo.On("FindTransactionsInWindow", s.ctx, "1000", s.periodStart, s.periodEnd).Return(book, nil)
	s.mockBankRepo.On("SaveTransaction", s.ctx, mock.Anything).Return(nil)

	result, err := s.reconSvc.ImportStatement(s.ctx, "r-1", statement, s.userID)

	s.Require().NoError(err)
	s.Equal(1, result.Matched)
	s.Equal(1, result.Created)
}

func (s *ReconciliationServiceTestSuite) TestImportRejectsCompletedPeriod() {
	done := s.openRecon()
	done.Status = domain.ReconciliationCompleted

	s.mockReconRepo.On("FindReconciliationByID", s.ctx, "r-1").Return(done, nil)

	_, err := s.reconSvc.ImportStatement(s.ctx, "r-1", nil, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrReconciliationCompleted)
}

func (s *ReconciliationServiceTestSuite) TestMarkReconciledRequiresIDs() {
	_, err := s.reconSvc.MarkReconciled(s.ctx, "r-1", nil, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestMarkReconciledDelegates() {
	updated := s.openRecon()
	updated.ClearedBalance = decimal.NewFromInt(1500)
	updated.Difference = decimal.Zero
	updated.Status = domain.ReconciliationCompleted

	s.mockReconRepo.On("MarkReconciled", s.ctx, "r-1", []string{"t-1", "t-2"}, s.userID, mock.AnythingOfType("time.Time")).
		Return(updated, nil)

	recon, err := s.reconSvc.MarkReconciled(s.ctx, "r-1", []string{"t-1", "t-2"}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.ReconciliationCompleted, recon.Status)
	s.True(recon.Difference.IsZero())
	s.mockReconRepo.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestForceAdjustmentRequiresReason() {
	req := dto.ForceAdjustmentRequest{AccountCode: "1000", TargetBalance: decimal.NewFromInt(900), Reason: "  "}

	_, err := s.reconSvc.ForceAdjustment(s.ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestForceAdjustmentRejectsZeroDelta() {
	req := dto.ForceAdjustmentRequest{AccountCode: "1000", TargetBalance: decimal.NewFromInt(900), Reason: "statement says so"}

	s.mockLedgerSvc.On("GetAccountBalance", s.ctx, "1000").Return(decimal.NewFromInt(900), nil)

	_, err := s.reconSvc.ForceAdjustment(s.ctx, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockLedgerSvc.AssertNotCalled(s.T(), "PostLinked", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestForceAdjustmentPositiveDelta() {
	req := dto.ForceAdjustmentRequest{AccountCode: "1000", TargetBalance: decimal.NewFromInt(1100), Reason: "bank shows extra deposit"}
	delta := decimal.NewFromInt(100)

	s.mockLedgerSvc.On("GetAccountBalance", s.ctx, "1000").Return(decimal.NewFromInt(1000), nil)
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "3900").
		Return(&domain.Account{Code: "3900", IsActive: true}, nil)
	s.mockLedgerSvc.On("PostLinked", s.ctx, mock.AnythingOfType("dto.EntryDraft"), mock.AnythingOfType("*repositories.SaveEntryExtras"), s.userID).
		Return(&domain.JournalEntry{EntryID: "e-adj"}, nil).
		Run(func(args mock.Arguments) {
			draft := args.Get(1).(dto.EntryDraft)
			extras := args.Get(2).(*portsrepo.SaveEntryExtras)

			assert.Equal(s.T(), "1000", draft.Lines[0].AccountCode)
			assert.True(s.T(), draft.Lines[0].Debit.Equal(delta))
			assert.Equal(s.T(), "3900", draft.Lines[1].AccountCode)
			assert.True(s.T(), draft.Lines[1].Credit.Equal(delta))

			assert.True(s.T(), extras.Mirror.Reconciled)
			assert.True(s.T(), extras.Mirror.Amount.Equal(delta))
		})

	txn, err := s.reconSvc.ForceAdjustment(s.ctx, req, s.userID)

	s.Require().NoError(err)
	s.True(txn.Reconciled)
	s.True(txn.Amount.Equal(delta))
	s.Contains(txn.Description, "bank shows extra deposit")
	s.mockLedgerSvc.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestForceAdjustmentNegativeDelta() {
	req := dto.ForceAdjustmentRequest{AccountCode: "1000", TargetBalance: decimal.NewFromInt(950), Reason: "unexplained fee"}
	magnitude := decimal.NewFromInt(50)

	s.mockLedgerSvc.On("GetAccountBalance", s.ctx, "1000").Return(decimal.NewFromInt(1000), nil)
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "3900").
		Return(&domain.Account{Code: "3900", IsActive: true}, nil)
	s.mockLedgerSvc.On("PostLinked", s.ctx, mock.Anything, mock.Anything, s.userID).
		Return(&domain.JournalEntry{EntryID: "e-adj"}, nil).
		Run(func(args mock.Arguments) {
			draft := args.Get(1).(dto.EntryDraft)
			extras := args.Get(2).(*portsrepo.SaveEntryExtras)

			assert.Equal(s.T(), "3900", draft.Lines[0].AccountCode)
			assert.True(s.T(), draft.Lines[0].Debit.Equal(magnitude))
			assert.Equal(s.T(), "1000", draft.Lines[1].AccountCode)
			assert.True(s.T(), draft.Lines[1].Credit.Equal(magnitude))

			assert.True(s.T(), extras.Mirror.Amount.Equal(magnitude.Neg()))
		})

	txn, err := s.reconSvc.ForceAdjustment(s.ctx, req, s.userID)

	s.Require().NoError(err)
	s.True(txn.Amount.Equal(magnitude.Neg()))
}

func (s *ReconciliationServiceTestSuite) TestForceAdjustmentRecreatesMissingAccount() {
	req := dto.ForceAdjustmentRequest{AccountCode: "1000", TargetBalance: decimal.NewFromInt(1100), Reason: "missing deposit"}

	s.mockLedgerSvc.On("GetAccountBalance", s.ctx, "1000").Return(decimal.NewFromInt(1000), nil)
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "3900").
		Return(nil, apperrors.NewNotFoundError("account 3900 not found"))
	s.mockAccountSvc.On("CreateAccount", s.ctx, mock.AnythingOfType("dto.CreateAccountRequest"), s.userID).
		Return(&domain.Account{Code: "3900", IsActive: true}, nil).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(dto.CreateAccountRequest)
			assert.Equal(s.T(), "3900", created.Code)
			assert.Equal(s.T(), "EQUITY", created.AccountType)
		})
	s.mockLedgerSvc.On("PostLinked", s.ctx, mock.Anything, mock.Anything, s.userID).
		Return(&domain.JournalEntry{EntryID: "e-adj"}, nil)

	_, err := s.reconSvc.ForceAdjustment(s.ctx, req, s.userID)

	s.Require().NoError(err)
	s.mockAccountSvc.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestGetStatusDelegates() {
	s.mockReconRepo.On("FindLatestByAccount", s.ctx, "1000").Return(s.openRecon(), nil)

	recon, err := s.reconSvc.GetStatus(s.ctx, "1000")

	s.Require().NoError(err)
	s.Equal("r-1", recon.ReconID)
}

func (s *ReconciliationServiceTestSuite) TestListUnreconciledDelegates() {
	txns := []domain.BankTransaction{s.bookTxn("t-1", 5, 300, "Deposito")}
	s.mockBankRepo.On("ListUnreconciled", s.ctx, "1000").Return(txns, nil)

	out, err := s.reconSvc.ListUnreconciled(s.ctx, "1000")

	s.Require().NoError(err)
	s.Len(out, 1)
}
