package dto

import (
	"time"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineDraft is one requested line of an entry draft. Exactly one of
// Debit/Credit must be non-zero.
type LineDraft struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// EntryDraft is the input to Ledger.Post: a date, description, optional
// business-object reference and a non-empty list of lines.
type EntryDraft struct {
	Date        time.Time   `json:"date" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Reference   string      `json:"reference"`
	Lines       []LineDraft `json:"lines" binding:"required,min=2,dive"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	LineNumber  int             `json:"lineNumber"`
	Memo        string          `json:"memo,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID     string          `json:"entryID"`
	EntryNumber int64           `json:"entryNumber"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Lines       []LineResponse  `json:"lines,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToEntryResponse converts a domain.JournalEntry to its response DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:     e.EntryID,
		EntryNumber: e.EntryNumber,
		Date:        e.EntryDate,
		Description: e.Description,
		Reference:   e.Reference,
		Status:      string(e.Status),
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			LineID:      l.LineID,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			LineNumber:  l.LineNumber,
			Memo:        l.Memo,
		})
	}
	return resp
}

// ToEntryResponses converts a slice of entries.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
