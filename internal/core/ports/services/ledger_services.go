package services

import (
	"context"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/contalibre/contalibre_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the single writer of account balances: post, reverse and
// resync are the only operations that mutate the ledger, each one atomic.
type LedgerSvcFacade interface {
	// Post validates and persists a balanced entry, assigning the next
	// sequential entry number and applying balance += debit − credit per
	// account. Fails with ErrImbalancedEntry or ErrUnknownAccount and performs
	// no partial writes.
	Post(ctx context.Context, draft dto.EntryDraft, userID string) (*domain.JournalEntry, error)

	// PostLinked is Post with side-writes (bank mirror, invoice payment or
	// issuance) committed in the same transaction. Reserved for the posting
	// rules; ad hoc callers use Post.
	PostLinked(ctx context.Context, draft dto.EntryDraft, extras *portsrepo.SaveEntryExtras, userID string) (*domain.JournalEntry, error)

	// Reverse neutralizes a posted entry by posting an equal-and-opposite
	// entry and marking the original VOID. The only supported delete path:
	// posted financial history is never silently removed.
	Reverse(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseByReference reverses the unique non-VOID entry carrying the given
	// business-object reference.
	ReverseByReference(ctx context.Context, reference string, userID string) (*domain.JournalEntry, error)

	// Resync rewrites the unique non-VOID entry carrying the reference so that
	// every line holds newAmount on its existing side, shifting balances by
	// the delta. Zero or multiple matches fail with ErrEntryNotFound; multiple
	// matches are a corruption signal surfaced in the error.
	Resync(ctx context.Context, reference string, newAmount decimal.Decimal, userID string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves posted entries, newest first.
	ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error)

	// GetAccountBalance returns the engine-owned balance of one account.
	GetAccountBalance(ctx context.Context, code string) (decimal.Decimal, error)
}
