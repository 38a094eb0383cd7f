package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/core/domain"
	portsrepo "github.com/contalibre/contalibre_app/internal/core/ports/repositories"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	bankRepo    portsrepo.BankTransactionRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry data. The
// account, bank and invoice repositories are injected so their in-transaction
// operations run inside this repository's transaction.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, bankRepo portsrepo.BankTransactionRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		bankRepo:       bankRepo,
		invoiceRepo:    invoiceRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, description, reference, status, amount, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var reference, originalID, reversingID sql.NullString
	err := row.Scan(
		&entry.EntryID,
		&entry.EntryNumber,
		&entry.EntryDate,
		&entry.Description,
		&reference,
		&entry.Status,
		&entry.Amount,
		&originalID,
		&reversingID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if reference.Valid {
		entry.Reference = reference.String
	}
	if originalID.Valid {
		entry.OriginalEntryID = &originalID.String
	}
	if reversingID.Valid {
		entry.ReversingEntryID = &reversingID.String
	}
	return &entry, nil
}

// nextEntryNumber claims the next gap-free entry number. The sequence lives in
// a table row rather than a database sequence because sequences leave gaps on
// rollback; the row update participates in the transaction, so an aborted
// posting returns its number.
func nextEntryNumber(ctx context.Context, tx pgx.Tx, now time.Time) (int64, error) {
	query := `
		UPDATE ledger_sequences
		SET next_value = next_value + 1, last_updated_at = $2
		WHERE sequence_name = $1
		RETURNING next_value - 1;
	`
	var number int64
	if err := tx.QueryRow(ctx, query, "journal_entry", now).Scan(&number); err != nil {
		return 0, apperrors.NewAppError(500, "failed to claim next entry number", err)
	}
	return number, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	var reference sql.NullString
	if entry.Reference != "" {
		reference = sql.NullString{String: entry.Reference, Valid: true}
	}
	var originalID sql.NullString
	if entry.OriginalEntryID != nil {
		originalID = sql.NullString{String: *entry.OriginalEntryID, Valid: true}
	}
	var reversingID sql.NullString
	if entry.ReversingEntryID != nil {
		reversingID = sql.NullString{String: *entry.ReversingEntryID, Valid: true}
	}

	_, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		reference,
		entry.Status,
		entry.Amount,
		originalID,
		reversingID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+entry.EntryID, err)
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	query := `
		INSERT INTO journal_lines (line_id, entry_id, account_code, debit, credit, line_number, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.LineID, l.EntryID, l.AccountCode, l.Debit, l.Credit, l.LineNumber, l.Memo)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert entry lines", err)
	}
	return nil
}

// applyBalances locks the touched accounts and applies the deltas.
func (r *PgxJournalRepository) applyBalances(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	codes := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		codes = append(codes, code)
	}
	if _, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes); err != nil {
		return err
	}
	return r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now)
}

// SaveEntry persists an entry, its lines, the sequence claim, the balance
// deltas and any extras as one transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, extras *portsrepo.SaveEntryExtras) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	now := entry.CreatedAt
	userID := entry.CreatedBy

	entryNumber, err := nextEntryNumber(ctx, tx, now)
	if err != nil {
		return 0, err
	}
	entry.EntryNumber = entryNumber

	if err := insertEntry(ctx, tx, entry); err != nil {
		return 0, err
	}
	if err := r.applyBalances(ctx, tx, balanceChanges, userID, now); err != nil {
		return 0, err
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return 0, err
	}

	if extras != nil {
		if extras.Mirror != nil {
			if err := r.bankRepo.SaveTransactionInTx(ctx, tx, *extras.Mirror); err != nil {
				return 0, err
			}
		}
		if extras.Payment != nil {
			if err := r.invoiceRepo.ApplyPaymentInTx(ctx, tx, extras.Payment.InvoiceID, extras.Payment.Amount, userID, now); err != nil {
				return 0, err
			}
		}
		if extras.IssueInvoiceID != "" {
			if err := issueInvoiceInTx(ctx, tx, extras.IssueInvoiceID, entry.EntryDate, userID, now); err != nil {
				return 0, err
			}
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return entryNumber, nil
}

// issueInvoiceInTx transitions the invoice DRAFT→ISSUED together with its
// recognition entry. The guard on status makes a double issuance fail even if
// two requests race past the service-level check.
func issueInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string, issueDate time.Time, userID string, now time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, issue_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, domain.InvoiceIssued, issueDate, now, userID, domain.InvoiceDraft)
	if err != nil {
		return apperrors.NewAppError(500, "failed to issue invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "invoice "+invoiceID+" is not in draft state", apperrors.ErrConflict)
	}
	return nil
}

// ReverseEntry voids the original and posts the reversing entry atomically.
// The original row is locked first so two concurrent reversals serialize and
// the loser sees the VOID status.
func (r *PgxJournalRepository) ReverseEntry(ctx context.Context, originalEntryID string, reversing domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	now := reversing.CreatedAt
	userID := reversing.CreatedBy

	lockQuery := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	original, err := scanEntry(tx.QueryRow(ctx, lockQuery, originalEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFoundError("entry " + originalEntryID + " not found")
		}
		return 0, apperrors.NewAppError(500, "failed to lock entry "+originalEntryID, err)
	}
	if original.Status != domain.Posted {
		return 0, apperrors.NewAppError(409, "entry "+originalEntryID+" is already voided", apperrors.ErrAlreadyVoided)
	}

	entryNumber, err := nextEntryNumber(ctx, tx, now)
	if err != nil {
		return 0, err
	}
	reversing.EntryNumber = entryNumber

	if err := insertEntry(ctx, tx, reversing); err != nil {
		return 0, err
	}

	voidQuery := `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, voidQuery, originalEntryID, domain.Void, reversing.EntryID, now, userID); err != nil {
		return 0, apperrors.NewAppError(500, "failed to void entry "+originalEntryID, err)
	}

	if err := r.applyBalances(ctx, tx, balanceChanges, userID, now); err != nil {
		return 0, err
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return 0, err
	}

	// The book-side mirror of the reversed event disappears with it. Imported
	// and reconciled transactions survive: the bank says they happened.
	if original.Reference != "" {
		deleteQuery := `
			DELETE FROM bank_transactions
			WHERE reference = $1 AND reconciled = FALSE AND imported = FALSE;
		`
		if _, err := tx.Exec(ctx, deleteQuery, original.Reference); err != nil {
			return 0, apperrors.NewAppError(500, "failed to remove mirrored bank transaction for "+original.Reference, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return entryNumber, nil
}

// ResyncEntry rewrites every line of the entry to newAmount on its existing
// side and re-applies the resulting balance deltas. The entry row stays locked
// for the duration so a concurrent reverse cannot void it mid-update.
func (r *PgxJournalRepository) ResyncEntry(ctx context.Context, entryID string, newAmount decimal.Decimal, updatedBy string, now time.Time) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	entry, err := scanEntry(tx.QueryRow(ctx, lockQuery, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to lock entry "+entryID, err)
	}
	if entry.Status != domain.Posted {
		return nil, apperrors.NewAppError(409, "entry "+entryID+" is voided", apperrors.ErrAlreadyVoided)
	}

	lines, err := findLinesByEntryIDTx(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	// Each line keeps its side; only the magnitude changes.
	lines, balanceChanges := accounting.RescaleLines(lines, newAmount)

	if err := r.applyBalances(ctx, tx, balanceChanges, updatedBy, now); err != nil {
		return nil, err
	}

	lineQuery := `UPDATE journal_lines SET debit = $2, credit = $3 WHERE line_id = $1;`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(lineQuery, l.LineID, l.Debit, l.Credit)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update entry lines", err)
	}

	entryQuery := `
		UPDATE journal_entries
		SET amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, entryQuery, entryID, newAmount, now, updatedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update entry amount for "+entryID, err)
	}

	// Keep the bank mirror numerically identical, preserving its sign.
	if entry.Reference != "" {
		mirrorQuery := `
			UPDATE bank_transactions
			SET amount = SIGN(amount) * $2, last_updated_at = $3, last_updated_by = $4
			WHERE reference = $1 AND imported = FALSE AND reconciled = FALSE;
		`
		if _, err := tx.Exec(ctx, mirrorQuery, entry.Reference, newAmount, now, updatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to update mirrored bank transaction for "+entry.Reference, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Amount = newAmount
	entry.Lines = lines
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = updatedBy
	return entry, nil
}

// FindEntryByID retrieves an entry header by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query entry "+entryID, err)
	}
	return entry, nil
}

// FindActiveEntriesByReference retrieves all non-VOID, non-reversal entries
// carrying the given business-object reference.
func (r *PgxJournalRepository) FindActiveEntriesByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE reference = $1 AND status = $2 AND original_entry_id IS NULL
		ORDER BY entry_number;
	`
	rows, err := r.Pool.Query(ctx, query, reference, domain.Posted)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries by reference "+reference, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}
	return entries, nil
}

// ListEntries retrieves entries ordered by entry number descending. With
// includeReversals false, voided originals and their reversing entries are
// filtered out, leaving only the effective ledger.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE ($3 OR (status = 'POSTED' AND original_entry_id IS NULL))
		ORDER BY entry_number DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset, includeReversals)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}
	return entries, nil
}

const lineColumns = `line_id, entry_id, account_code, debit, credit, line_number, memo`

func scanLine(row pgx.Row) (*domain.JournalLine, error) {
	var line domain.JournalLine
	err := row.Scan(
		&line.LineID,
		&line.EntryID,
		&line.AccountCode,
		&line.Debit,
		&line.Credit,
		&line.LineNumber,
		&line.Memo,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLinesByEntryID retrieves the lines of one entry in line order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_number;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

func findLinesByEntryIDTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_number;`
	rows, err := tx.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

func collectLines(rows pgx.Rows) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, 0)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row", err)
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows", err)
	}
	return lines, nil
}
