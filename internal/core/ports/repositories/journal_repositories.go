package repositories

import (
	"context"
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentApplication advances an invoice's paid amount inside the same
// database transaction that posts the payment entry. The update is guarded so
// a concurrent payment can never push paid past the invoice total.
type PaymentApplication struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// SaveEntryExtras are side-writes committed atomically with a posted entry.
type SaveEntryExtras struct {
	// Mirror inserts the bank-subledger transaction that mirrors the entry.
	Mirror *domain.BankTransaction
	// Payment advances the paid amount of the referenced invoice.
	Payment *PaymentApplication
	// IssueInvoiceID transitions the invoice from DRAFT to ISSUED together with
	// the recognition entry.
	IssueInvoiceID string
}

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryByID retrieves an entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindActiveEntriesByReference retrieves all non-VOID, non-reversal entries
	// carrying the given business-object reference. The caller decides what a
	// non-unique result means.
	FindActiveEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error)

	// ListEntries retrieves posted entries ordered by entry number descending.
	ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal data. Every method is a
// single atomic unit against the backing store: entry, lines, sequence number
// and balance updates all succeed together or not at all.
type JournalWriter interface {
	// SaveEntry persists an entry and its lines as POSTED, assigns the next
	// gap-free entry number, applies balance deltas, and commits any extras in
	// the same transaction. Returns the assigned entry number.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, extras *SaveEntryExtras) (int64, error)

	// ReverseEntry persists the reversing entry and its lines, marks the
	// original VOID with links both ways, applies the offsetting balance
	// deltas, and removes any unreconciled mirrored bank transaction carrying
	// the original's reference. Returns the reversing entry number.
	ReverseEntry(ctx context.Context, originalEntryID string, reversing domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (int64, error)

	// ResyncEntry rewrites every line of the entry to newAmount on its existing
	// debit/credit side, re-applies the balance delta, and updates the mirrored
	// bank transaction amount. The entry row is locked for the duration so a
	// concurrent reverse cannot void it mid-update. Returns the updated entry
	// with lines.
	ResyncEntry(ctx context.Context, entryID string, newAmount decimal.Decimal, updatedBy string, now time.Time) (*domain.JournalEntry, error)
}

// LineReader defines read operations for journal lines.
type LineReader interface {
	// FindLinesByEntryID retrieves the lines of one entry in line order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
}
