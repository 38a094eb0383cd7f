package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus indicates whether an invoice has been issued. Revenue is
// recognized at issuance, never at creation.
type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "DRAFT"
	InvoiceIssued InvoiceStatus = "ISSUED"
)

// Invoice is the minimal receivable record the ledger core needs: enough to
// recognize revenue at issuance and to cap payments at the remaining balance.
// Paid is advanced only inside the same transaction that posts a payment entry.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"` // Primary key, business object id
	InvoiceNumber string          `json:"invoiceNumber"`
	CustomerName  string          `json:"customerName"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     time.Time       `json:"issueDate"`
	AuditFields
}

// RemainingBalance returns total − Σpayments applied so far.
func (i Invoice) RemainingBalance() decimal.Decimal {
	return i.Total.Sub(i.Paid)
}
