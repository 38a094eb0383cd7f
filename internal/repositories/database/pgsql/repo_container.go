package pgsql

import (
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	bankRepo := newPgxBankTransactionRepository(dbPool)
	invoiceRepo := newPgxInvoiceRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, bankRepo, invoiceRepo)
	reconRepo := newPgxReconciliationRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		BankRepo:      bankRepo,
		ReconRepo:     reconRepo,
		InvoiceRepo:   invoiceRepo,
		ReportingRepo: reportingRepo,
	}
}
