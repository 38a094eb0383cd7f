package services

import (
	"context"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// PostingSvcFacade maps business events onto balanced ledger mutations. It is
// the only component allowed to create accounts on demand (the keyword
// fallback), and it keeps bank-subledger mirrors numerically identical to
// their journal entries.
type PostingSvcFacade interface {
	// PostEvent translates one business event into its ledger mutation.
	// Income/Expense post a bank/revenue-or-expense pair and mirror a bank
	// transaction; InvoiceIssued recognizes revenue; PaymentReceived settles
	// receivables, failing when the payment exceeds the remaining balance;
	// ObjectDeleted reverses the entry referencing the object.
	PostEvent(ctx context.Context, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error)

	// ResyncEvent propagates an edit of the originating business object,
	// rewriting the entry and its bank mirror to the new amount.
	ResyncEvent(ctx context.Context, reference string, event domain.BusinessEvent, userID string) (*domain.JournalEntry, error)

	// RegisterInvoice records an invoice in DRAFT state. Nothing is posted:
	// revenue recognition follows issuance, not creation.
	RegisterInvoice(ctx context.Context, req dto.RegisterInvoiceRequest, userID string) (*domain.Invoice, error)

	// GetInvoice retrieves one invoice.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}
