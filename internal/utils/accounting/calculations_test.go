package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/contalibre/contalibre_app/internal/core/domain"
	"github.com/contalibre/contalibre_app/internal/utils/accounting"
)

func line(debit, credit float64) domain.JournalLine {
	return domain.JournalLine{
		Debit:  decimal.NewFromFloat(debit),
		Credit: decimal.NewFromFloat(credit),
	}
}

func TestEqualWithinTolerance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  decimal.Decimal
		equal bool
	}{
		{"identical", decimal.NewFromInt(100), decimal.NewFromInt(100), true},
		{"sub-cent residue", decimal.NewFromFloat(100.005), decimal.NewFromInt(100), true},
		{"just under a cent", decimal.NewFromFloat(100.009), decimal.NewFromInt(100), true},
		{"exactly one cent", decimal.NewFromFloat(100.01), decimal.NewFromInt(100), false},
		{"one whole unit", decimal.NewFromInt(101), decimal.NewFromInt(100), false},
		{"symmetric", decimal.NewFromInt(100), decimal.NewFromFloat(100.005), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, accounting.EqualWithinTolerance(tt.a, tt.b))
		})
	}
}

func TestSumSides(t *testing.T) {
	debits, credits := accounting.SumSides([]domain.JournalLine{
		line(100, 0),
		line(50, 0),
		line(0, 150),
	})

	assert.True(t, debits.Equal(decimal.NewFromInt(150)))
	assert.True(t, credits.Equal(decimal.NewFromInt(150)))
}

func TestValidateLinesRejectsSingleLine(t *testing.T) {
	err := accounting.ValidateLines([]domain.JournalLine{line(100, 0)})
	assert.Error(t, err)
}

func TestValidateLinesRejectsNegativeAmounts(t *testing.T) {
	err := accounting.ValidateLines([]domain.JournalLine{line(-100, 0), line(0, 100)})
	assert.Error(t, err)
}

func TestValidateLinesRejectsBothSidesSet(t *testing.T) {
	err := accounting.ValidateLines([]domain.JournalLine{line(100, 100), line(0, 100)})
	assert.Error(t, err)
}

func TestValidateLinesRejectsEmptyLine(t *testing.T) {
	err := accounting.ValidateLines([]domain.JournalLine{line(0, 0), line(0, 100)})
	assert.Error(t, err)
}

func TestValidateLinesAcceptsBalancedPair(t *testing.T) {
	err := accounting.ValidateLines([]domain.JournalLine{line(100, 0), line(0, 100)})
	assert.NoError(t, err)
}

func TestClearedPosition(t *testing.T) {
	opening := decimal.NewFromInt(1000)

	tests := []struct {
		name       string
		statement  decimal.Decimal
		clearedSum decimal.Decimal
		cleared    decimal.Decimal
		difference decimal.Decimal
		completed  bool
	}{
		{
			name:       "converges at statement balance",
			statement:  decimal.NewFromInt(1500),
			clearedSum: decimal.NewFromInt(500),
			cleared:    decimal.NewFromInt(1500),
			difference: decimal.Zero,
			completed:  true,
		},
		{
			name:       "one unit short stays open",
			statement:  decimal.NewFromInt(1500),
			clearedSum: decimal.NewFromInt(499),
			cleared:    decimal.NewFromInt(1499),
			difference: decimal.NewFromInt(1),
			completed:  false,
		},
		{
			name:       "one unit over stays open",
			statement:  decimal.NewFromInt(1500),
			clearedSum: decimal.NewFromInt(501),
			cleared:    decimal.NewFromInt(1501),
			difference: decimal.NewFromInt(-1),
			completed:  false,
		},
		{
			name:       "sub-cent residue completes",
			statement:  decimal.NewFromInt(1500),
			clearedSum: decimal.NewFromFloat(500.005),
			cleared:    decimal.NewFromFloat(1500.005),
			difference: decimal.NewFromFloat(-0.005),
			completed:  true,
		},
		{
			name:       "net withdrawals converge downward",
			statement:  decimal.NewFromInt(700),
			clearedSum: decimal.NewFromInt(-300),
			cleared:    decimal.NewFromInt(700),
			difference: decimal.Zero,
			completed:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleared, difference, completed := accounting.ClearedPosition(opening, tt.statement, tt.clearedSum)
			assert.True(t, cleared.Equal(tt.cleared), "cleared = %s", cleared)
			assert.True(t, difference.Equal(tt.difference), "difference = %s", difference)
			assert.Equal(t, tt.completed, completed)
		})
	}
}

func TestRescaleLinesGrowsAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{LineID: "l-1", AccountCode: "5100", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{LineID: "l-2", AccountCode: "1000", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}

	rescaled, changes := accounting.RescaleLines(lines, decimal.NewFromInt(250))

	assert.True(t, rescaled[0].Debit.Equal(decimal.NewFromInt(250)))
	assert.True(t, rescaled[0].Credit.IsZero())
	assert.True(t, rescaled[1].Credit.Equal(decimal.NewFromInt(250)))
	assert.True(t, rescaled[1].Debit.IsZero())

	// Debited account moves up by the growth, credited account down.
	assert.True(t, changes["5100"].Equal(decimal.NewFromInt(150)))
	assert.True(t, changes["1000"].Equal(decimal.NewFromInt(-150)))

	// Inputs stay untouched.
	assert.True(t, lines[0].Debit.Equal(decimal.NewFromInt(100)))
}

func TestRescaleLinesShrinksAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{LineID: "l-1", AccountCode: "1000", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{LineID: "l-2", AccountCode: "4000", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}

	rescaled, changes := accounting.RescaleLines(lines, decimal.NewFromInt(40))

	assert.True(t, rescaled[0].Debit.Equal(decimal.NewFromInt(40)))
	assert.True(t, rescaled[1].Credit.Equal(decimal.NewFromInt(40)))
	assert.True(t, changes["1000"].Equal(decimal.NewFromInt(-60)))
	assert.True(t, changes["4000"].Equal(decimal.NewFromInt(60)))

	debits, credits := accounting.SumSides(rescaled)
	assert.True(t, debits.Equal(credits))
}

func TestValidateBalanced(t *testing.T) {
	assert.NoError(t, accounting.ValidateBalanced([]domain.JournalLine{line(100, 0), line(0, 100)}))
	assert.NoError(t, accounting.ValidateBalanced([]domain.JournalLine{line(100.005, 0), line(0, 100)}))
	assert.Error(t, accounting.ValidateBalanced([]domain.JournalLine{line(100.01, 0), line(0, 100)}))
	assert.Error(t, accounting.ValidateBalanced([]domain.JournalLine{line(100, 0), line(0, 99)}))
}
