// Package dictionary holds the curated default chart of accounts and sample
// inventory used when seeding a fresh book.
package dictionary

import "github.com/kasbuku/kasbuku/internal/ledger"

// AccountDef describes one default account before it is assigned an ID.
type AccountDef struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Category      ledger.Category    `json:"category"`
	NormalBalance ledger.Side        `json:"normal_balance"`
	Control       ledger.ControlRole `json:"control,omitempty"`
}

// DefaultChart is the starter chart of accounts for a small trading business.
// Codes follow the 1=asset .. 6=expense numbering convention and double as the
// canonical sort order.
var DefaultChart = []AccountDef{
	{Code: "1-1000", Name: "Cash", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit},
	{Code: "1-1100", Name: "Bank", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit},
	{Code: "1-1200", Name: "Accounts Receivable", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit, Control: ledger.ControlReceivables},
	{Code: "1-1300", Name: "Inventory", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit},
	{Code: "1-1400", Name: "Prepaid Rent", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit},
	{Code: "1-2000", Name: "Fixed Assets", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit},
	{Code: "1-2100", Name: "Accumulated Depreciation", Category: ledger.CategoryAsset, NormalBalance: ledger.SideCredit},
	{Code: "2-1000", Name: "Accounts Payable", Category: ledger.CategoryLiability, NormalBalance: ledger.SideCredit, Control: ledger.ControlPayables},
	{Code: "3-1000", Name: "Owner's Capital", Category: ledger.CategoryEquity, NormalBalance: ledger.SideCredit},
	{Code: "3-2000", Name: "Owner's Drawings", Category: ledger.CategoryEquity, NormalBalance: ledger.SideDebit},
	{Code: "4-1000", Name: "Sales", Category: ledger.CategoryRevenue, NormalBalance: ledger.SideCredit},
	{Code: "5-1000", Name: "Cost of Goods Sold", Category: ledger.CategoryCOGS, NormalBalance: ledger.SideDebit},
	{Code: "6-1000", Name: "Salaries Expense", Category: ledger.CategoryExpense, NormalBalance: ledger.SideDebit},
	{Code: "6-2000", Name: "Utilities Expense", Category: ledger.CategoryExpense, NormalBalance: ledger.SideDebit},
	{Code: "6-3000", Name: "Depreciation Expense", Category: ledger.CategoryExpense, NormalBalance: ledger.SideDebit},
	{Code: "6-4000", Name: "Rent Expense", Category: ledger.CategoryExpense, NormalBalance: ledger.SideDebit},
	{Code: "6-5000", Name: "Miscellaneous Expense", Category: ledger.CategoryExpense, NormalBalance: ledger.SideDebit},
}

// ProductDef describes one default product.
type ProductDef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultProducts seeds a single sample item so inventory flows can be tried
// immediately on a dev instance.
var DefaultProducts = []ProductDef{
	{Code: "ITM-001", Name: "Standard Feed"},
}
