package services

// ServiceContainer holds instances of all the application services.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Ledger         LedgerSvcFacade
	Posting        PostingSvcFacade
	Reconciliation ReconciliationSvcFacade
	Reporting      ReportingSvcFacade
}
