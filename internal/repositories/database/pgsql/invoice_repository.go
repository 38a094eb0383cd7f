package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice records.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, customer_name, total, paid, status, issue_date, created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := row.Scan(
		&invoice.InvoiceID,
		&invoice.InvoiceNumber,
		&invoice.CustomerName,
		&invoice.Total,
		&invoice.Paid,
		&invoice.Status,
		&invoice.IssueDate,
		&invoice.CreatedAt,
		&invoice.CreatedBy,
		&invoice.LastUpdatedAt,
		&invoice.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// SaveInvoice inserts a new invoice record.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.InvoiceNumber,
		invoice.CustomerName,
		invoice.Total,
		invoice.Paid,
		invoice.Status,
		invoice.IssueDate,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewAppError(409, "invoice "+invoice.InvoiceID+" already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert invoice "+invoice.InvoiceID, err)
	}
	return nil
}

// FindInvoiceByID retrieves one invoice.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	invoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query invoice "+invoiceID, err)
	}
	return invoice, nil
}

// ApplyPaymentInTx advances the invoice's paid amount within an existing
// database transaction. The WHERE guard rechecks the remaining balance under
// the row lock, so two racing payments cannot jointly overshoot the total.
func (r *PgxInvoiceRepository) ApplyPaymentInTx(ctx context.Context, tx pgx.Tx, invoiceID string, amount decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE invoices
		SET paid = paid + $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1 AND status = $5 AND paid + $2 <= total + $6;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, amount, now, userID, domain.InvoiceIssued, accounting.Tolerance)
	if err != nil {
		return apperrors.NewAppError(500, "failed to apply payment to invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "payment of "+amount.String()+" would exceed the balance of invoice "+invoiceID, apperrors.ErrOverpaymentRejected)
	}
	return nil
}
