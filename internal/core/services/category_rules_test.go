package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCategoryExpenseKeywords(t *testing.T) {
	tests := []struct {
		category string
		code     string
		matched  bool
	}{
		{"Salarios Choferes", SalariesExpenseCode, true},
		{"salaries march", SalariesExpenseCode, true},
		{"Sueldos administrativos", SalariesExpenseCode, true},
		{"Rent warehouse", RentExpenseCode, true},
		{"Alquiler oficina", RentExpenseCode, true},
		{"Luz y telefono", UtilitiesExpenseCode, true},
		{"Combustible ruta 9", FuelExpenseCode, true},
		{"Mantenimiento camion", MaintenanceExpenseCode, true},
		{"Repairs Q1", MaintenanceExpenseCode, true},
		{"Paperclips", OtherExpensesCode, false},
		{"", OtherExpensesCode, false},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			rule, matched := matchCategory(expenseRules, expenseFallback, tt.category)
			assert.Equal(t, tt.code, rule.accountCode)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestMatchCategoryIncomeKeywords(t *testing.T) {
	tests := []struct {
		category string
		code     string
		matched  bool
	}{
		{"Venta mostrador", SalesRevenueCode, true},
		{"Flete Asuncion-Encarnacion", SalesRevenueCode, true},
		{"Freight long haul", SalesRevenueCode, true},
		{"Intereses plazo fijo", OtherIncomeCode, true},
		{"Donation", SalesRevenueCode, false},
		{"", SalesRevenueCode, false},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			rule, matched := matchCategory(incomeRules, incomeFallback, tt.category)
			assert.Equal(t, tt.code, rule.accountCode)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestMatchCategoryTrimsAndLowercases(t *testing.T) {
	rule, matched := matchCategory(expenseRules, expenseFallback, "  SALARIOS  ")
	assert.Equal(t, SalariesExpenseCode, rule.accountCode)
	assert.True(t, matched)
}
