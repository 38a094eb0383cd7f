package services

import (
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
)

// NewServiceContainer wires every service on top of the repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	ledgerSvc := NewLedgerService(repos.JournalRepo, accountSvc)
	postingSvc := NewPostingService(ledgerSvc, accountSvc, repos.InvoiceRepo)
	reconSvc := NewReconciliationService(repos.ReconRepo, repos.BankRepo, ledgerSvc, accountSvc)
	reportingSvc := NewReportingService(repos.ReportingRepo)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Ledger:         ledgerSvc,
		Posting:        postingSvc,
		Reconciliation: reconSvc,
		Reporting:      reportingSvc,
	}
}
