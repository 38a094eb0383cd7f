package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Void   EntryStatus = "VOID"
)

// JournalEntry is a single balanced financial event composed of multiple lines.
// EntryNumber is a gap-free, strictly increasing human-readable sequence within
// the ledger scope. Reference carries the id of the business object that caused
// the entry (an expense id, transaction id, invoice number) and is unique among
// non-VOID entries.
type JournalEntry struct {
	EntryID     string      `json:"entryID"` // Primary key (UUID)
	EntryNumber int64       `json:"entryNumber"`
	EntryDate   time.Time   `json:"entryDate"`
	Description string      `json:"description"`
	Reference   string      `json:"reference"` // Empty when not caused by a business object
	Status      EntryStatus `json:"status"`
	// Amount is the total of the debit side; for a balanced entry this is the
	// economic value of the event.
	Amount decimal.Decimal `json:"amount"`
	// Reversal links. A VOID entry keeps its lines for audit and points at the
	// entry that neutralized it; the reversing entry points back.
	OriginalEntryID  *string `json:"originalEntryID,omitempty"`
	ReversingEntryID *string `json:"reversingEntryID,omitempty"`
	AuditFields

	// Lines are loaded on demand; nil when only the header was fetched.
	Lines []JournalLine `json:"lines,omitempty"`
}

// IsReversal reports whether this entry was created to neutralize another.
func (e *JournalEntry) IsReversal() bool {
	return e.OriginalEntryID != nil
}

// JournalLine is one side-effect of an entry on a single account. Exactly one
// of Debit/Credit is non-zero; both are non-negative.
type JournalLine struct {
	LineID      string          `json:"lineID"` // Primary key (UUID)
	EntryID     string          `json:"entryID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	LineNumber  int             `json:"lineNumber"` // Stable ordering within the entry
	Memo        string          `json:"memo"`
}

// Delta returns the line's effect on its account balance (debit − credit).
func (l JournalLine) Delta() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}
