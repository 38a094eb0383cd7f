package repositories

// RepositoryProvider bundles every repository facade for injection into the
// service layer.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	BankRepo      BankTransactionRepositoryFacade
	ReconRepo     ReconciliationRepositoryFacade
	InvoiceRepo   InvoiceRepositoryFacade
	ReportingRepo ReportingRepository
}
