package repositories

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InvoiceRepositoryFacade persists the minimal receivable records the posting
// rules need: recognition state and the paid amount that caps payments.
type InvoiceRepositoryFacade interface {
	// SaveInvoice inserts a new invoice record.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// FindInvoiceByID retrieves one invoice.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ApplyPaymentInTx advances the invoice's paid amount within an existing
	// database transaction. The update is guarded: it fails with
	// ErrOverpaymentRejected when paid + amount would exceed the total beyond
	// tolerance, so a concurrent payment cannot overshoot.
	ApplyPaymentInTx(ctx context.Context, tx pgx.Tx, invoiceID string, amount decimal.Decimal, userID string, now time.Time) error
}
