package accounting

import (
	"fmt"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the money rounding tolerance: one unit of the minor currency.
// Two amounts within Tolerance of each other are considered equal.
var Tolerance = decimal.New(1, -2) // 0.01

// EqualWithinTolerance reports whether |a − b| < Tolerance.
func EqualWithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// SumSides totals the debit and credit columns of a line set.
func SumSides(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// ValidateLines checks the per-line invariants: amounts non-negative, exactly
// one of debit/credit non-zero, and at least two lines so the entry can
// balance across accounts.
func ValidateLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d: debit and credit must be non-negative", i+1)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return fmt.Errorf("line %d: exactly one of debit or credit must be non-zero", i+1)
		}
	}
	return nil
}

// ValidateBalanced checks the double-entry invariant: Σdebit == Σcredit within
// Tolerance.
func ValidateBalanced(lines []domain.JournalLine) error {
	debits, credits := SumSides(lines)
	if !EqualWithinTolerance(debits, credits) {
		return fmt.Errorf("debits sum is %s and credits sum is %s", debits.String(), credits.String())
	}
	return nil
}

// ClearedPosition derives a reconciliation's figures from its opening balance,
// the statement balance, and the signed sum of reconciled transactions in the
// window: cleared = opening + clearedSum, difference = statement − cleared.
// The period is complete when the difference is within Tolerance.
func ClearedPosition(opening, statement, clearedSum decimal.Decimal) (cleared, difference decimal.Decimal, completed bool) {
	cleared = opening.Add(clearedSum)
	difference = statement.Sub(cleared)
	return cleared, difference, difference.Abs().LessThan(Tolerance)
}

// RescaleLines rewrites every line to newAmount on its existing side and
// returns the rewritten lines plus the per-account balance deltas
// (Σ(debit − credit) change) the rewrite causes.
func RescaleLines(lines []domain.JournalLine, newAmount decimal.Decimal) ([]domain.JournalLine, map[string]decimal.Decimal) {
	rescaled := make([]domain.JournalLine, len(lines))
	changes := make(map[string]decimal.Decimal, len(lines))
	for i, l := range lines {
		newLine := l
		if !l.Debit.IsZero() {
			newLine.Debit = newAmount
			changes[l.AccountCode] = changes[l.AccountCode].Add(newAmount.Sub(l.Debit))
		} else {
			newLine.Credit = newAmount
			changes[l.AccountCode] = changes[l.AccountCode].Sub(newAmount.Sub(l.Credit))
		}
		rescaled[i] = newLine
	}
	return rescaled, changes
}
