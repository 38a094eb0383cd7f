package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind enumerates the business events the posting rules translate into
// balanced ledger mutations.
type EventKind string

const (
	EventIncome          EventKind = "INCOME"
	EventExpense         EventKind = "EXPENSE"
	EventInvoiceIssued   EventKind = "INVOICE_ISSUED"
	EventPaymentReceived EventKind = "PAYMENT_RECEIVED"
	EventObjectDeleted   EventKind = "OBJECT_DELETED"
)

// BusinessEvent is the inbound boundary payload: amount, category/account
// hints, date, and a stable business-object id used as the entry reference.
type BusinessEvent struct {
	Kind        EventKind       `json:"kind"`
	Reference   string          `json:"reference"` // Business object id, becomes JournalEntry.Reference
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	// Category is matched against the keyword table for income/expense events.
	Category string `json:"category"`
	// BankAccountCode overrides the default cash/bank account when set.
	BankAccountCode string `json:"bankAccountCode"`
	// InvoiceID targets invoice events (issuance and payments).
	InvoiceID string `json:"invoiceID"`
}
