package dto

import (
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEventRequest is the inbound boundary payload for business events.
type PostEventRequest struct {
	Kind            string          `json:"kind" binding:"required,oneof=INCOME EXPENSE INVOICE_ISSUED PAYMENT_RECEIVED OBJECT_DELETED"`
	Reference       string          `json:"reference" binding:"required"`
	Date            time.Time       `json:"date" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	BankAccountCode string          `json:"bankAccountCode"`
	InvoiceID       string          `json:"invoiceID"`
}

// ToBusinessEvent converts the request into the domain event.
func (r PostEventRequest) ToBusinessEvent() domain.BusinessEvent {
	return domain.BusinessEvent{
		Kind:            domain.EventKind(r.Kind),
		Reference:       r.Reference,
		Date:            r.Date,
		Amount:          r.Amount,
		Description:     r.Description,
		Category:        r.Category,
		BankAccountCode: r.BankAccountCode,
		InvoiceID:       r.InvoiceID,
	}
}

// RegisterInvoiceRequest records an invoice in DRAFT state.
type RegisterInvoiceRequest struct {
	InvoiceID     string          `json:"invoiceID" binding:"required"`
	InvoiceNumber string          `json:"invoiceNumber" binding:"required"`
	CustomerName  string          `json:"customerName"`
	Total         decimal.Decimal `json:"total" binding:"required"`
}
