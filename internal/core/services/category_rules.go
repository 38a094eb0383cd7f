package services

import (
	"strings"

	"github.com/contalibre/contalibre_app/internal/core/domain"
)

// Well-known account codes the posting rules target. The migration seeds all
// of them; the keyword fallback can recreate a deactivated one on demand.
const (
	DefaultBankAccountCode       = "1000"
	AccountsReceivableCode       = "1100"
	ReconciliationAdjustmentCode = "3900"
	SalesRevenueCode             = "4000"
	OtherIncomeCode              = "4900"
	SalariesExpenseCode          = "5100"
	RentExpenseCode              = "5200"
	UtilitiesExpenseCode         = "5300"
	FuelExpenseCode              = "5400"
	MaintenanceExpenseCode       = "5500"
	OtherExpensesCode            = "5900"
)

// categoryRule maps a category keyword prefix onto a ledger account. Prefix
// matching keeps the table small: "salari" covers "Salaries", "Salarios" and
// "Salarios Choferes" alike.
type categoryRule struct {
	prefix      string
	accountCode string
	accountName string
	accountType domain.AccountType
}

// expenseRules is checked in order; the first prefix match wins.
var expenseRules = []categoryRule{
	{prefix: "salari", accountCode: SalariesExpenseCode, accountName: "Salaries Expense", accountType: domain.Expense},
	{prefix: "sueldo", accountCode: SalariesExpenseCode, accountName: "Salaries Expense", accountType: domain.Expense},
	{prefix: "rent", accountCode: RentExpenseCode, accountName: "Rent Expense", accountType: domain.Expense},
	{prefix: "alquiler", accountCode: RentExpenseCode, accountName: "Rent Expense", accountType: domain.Expense},
	{prefix: "util", accountCode: UtilitiesExpenseCode, accountName: "Utilities Expense", accountType: domain.Expense},
	{prefix: "luz", accountCode: UtilitiesExpenseCode, accountName: "Utilities Expense", accountType: domain.Expense},
	{prefix: "agua", accountCode: UtilitiesExpenseCode, accountName: "Utilities Expense", accountType: domain.Expense},
	{prefix: "fuel", accountCode: FuelExpenseCode, accountName: "Fuel Expense", accountType: domain.Expense},
	{prefix: "combustible", accountCode: FuelExpenseCode, accountName: "Fuel Expense", accountType: domain.Expense},
	{prefix: "gasolina", accountCode: FuelExpenseCode, accountName: "Fuel Expense", accountType: domain.Expense},
	{prefix: "mainten", accountCode: MaintenanceExpenseCode, accountName: "Maintenance Expense", accountType: domain.Expense},
	{prefix: "manten", accountCode: MaintenanceExpenseCode, accountName: "Maintenance Expense", accountType: domain.Expense},
	{prefix: "repair", accountCode: MaintenanceExpenseCode, accountName: "Maintenance Expense", accountType: domain.Expense},
}

var incomeRules = []categoryRule{
	{prefix: "sale", accountCode: SalesRevenueCode, accountName: "Sales Revenue", accountType: domain.Revenue},
	{prefix: "venta", accountCode: SalesRevenueCode, accountName: "Sales Revenue", accountType: domain.Revenue},
	{prefix: "flete", accountCode: SalesRevenueCode, accountName: "Sales Revenue", accountType: domain.Revenue},
	{prefix: "freight", accountCode: SalesRevenueCode, accountName: "Sales Revenue", accountType: domain.Revenue},
	{prefix: "interes", accountCode: OtherIncomeCode, accountName: "Other Income", accountType: domain.Revenue},
	{prefix: "interest", accountCode: OtherIncomeCode, accountName: "Other Income", accountType: domain.Revenue},
}

var expenseFallback = categoryRule{accountCode: OtherExpensesCode, accountName: "Other Expenses", accountType: domain.Expense}

var incomeFallback = categoryRule{accountCode: SalesRevenueCode, accountName: "Sales Revenue", accountType: domain.Revenue}

// matchCategory resolves a free-text category against the rule table. The
// second return reports whether a keyword matched or the fallback was used.
func matchCategory(rules []categoryRule, fallback categoryRule, category string) (categoryRule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return fallback, false
	}
	for _, r := range rules {
		if strings.HasPrefix(normalized, r.prefix) {
			return r, true
		}
	}
	return fallback, false
}
