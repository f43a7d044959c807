package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
)

// Side represents the accounting position of a journal line.
type Side string

const (
	// SideDebit records a value on the debit side of an account.
	SideDebit Side = "debit"
	// SideCredit records a value on the credit side of an account.
	SideCredit Side = "credit"
)

// Category enumerates the broad classification of an account in the books.
type Category string

const (
	// CategoryAsset holds resources owned by the business; normal balance debit.
	CategoryAsset Category = "asset"
	// CategoryLiability tracks obligations; normal balance credit.
	CategoryLiability Category = "liability"
	// CategoryEquity captures the owner's residual interest.
	CategoryEquity Category = "equity"
	// CategoryRevenue represents inflows that increase equity.
	CategoryRevenue Category = "revenue"
	// CategoryCOGS is the cost of goods sold, reported separately from other expenses.
	CategoryCOGS Category = "cogs"
	// CategoryExpense represents outflows that decrease equity.
	CategoryExpense Category = "expense"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryCOGS, CategoryExpense:
		return true
	}
	return false
}

// ControlRole marks an account as the control account behind a subsidiary ledger.
// Entries posted against a control account with a counterparty label are
// bucketed into the matching payables or receivables ledger.
type ControlRole string

const (
	ControlNone        ControlRole = "none"
	ControlPayables    ControlRole = "payables"
	ControlReceivables ControlRole = "receivables"
)

// TransactionKind classifies a transaction for bookkeeping workflows.
type TransactionKind string

const (
	KindGeneral    TransactionKind = "general"
	KindAdjustment TransactionKind = "adjustment"
	KindSale       TransactionKind = "sale"
	KindPurchase   TransactionKind = "purchase"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindGeneral, KindAdjustment, KindSale, KindPurchase:
		return true
	}
	return false
}

// MovementKind identifies the direction of an inventory movement.
type MovementKind string

const (
	// MovementPurchase adds stock and blends its cost into the moving average.
	MovementPurchase MovementKind = "purchase"
	// MovementSale draws stock down at the current average cost.
	MovementSale MovementKind = "sale"
)

// Account is one row of the chart of accounts.
type Account struct {
	ID   uuid.UUID
	Code string // unique; canonical ordering key for the chart of accounts
	Name string
	// Category drives report aggregation (income statement vs. balance sheet).
	Category Category
	// NormalBalance is the side on which the account's balance increases.
	NormalBalance Side
	// Control routes counterparty-labelled entries into a subsidiary ledger.
	Control ControlRole
}

// Product tracks on-hand stock valued at a moving-average unit cost.
type Product struct {
	ID   uuid.UUID
	Code string
	Name string
	Qty  decimal.Decimal
	// AvgCost is the moving-average unit cost; zero while Qty is zero.
	AvgCost money.Amount
}

// TotalValue returns Qty * AvgCost, the inventory value the product carries.
func (p Product) TotalValue() (money.Amount, error) {
	return p.AvgCost.Mul(p.Qty)
}

// Transaction is a dated, described set of journal entries. It owns its
// entries exclusively: they are created and deleted only with the transaction.
type Transaction struct {
	ID uuid.UUID
	// Seq is a storage-assigned insertion sequence, used as the newest-first
	// tie-break when transactions share a date.
	Seq         int64
	Date        time.Time
	DueDate     *time.Time
	Description string
	Kind        TransactionKind
	// ProofRef is an opaque reference to an uploaded proof document.
	ProofRef string
	Entries  []JournalEntry
}

// JournalEntry is a single debit or credit posted against an account.
// Both amounts are non-negative; clean postings have exactly one nonzero side.
type JournalEntry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Debit         money.Amount
	Credit        money.Amount
	// Counterparty labels the line for the payables/receivables subsidiary ledgers.
	Counterparty string
}

// SignedAmount returns the entry's balance contribution under the given
// normal-balance side: debit-credit for debit-normal accounts, else credit-debit.
func (e JournalEntry) SignedAmount(normal Side) (money.Amount, error) {
	if normal == SideDebit {
		return e.Debit.Sub(e.Credit)
	}
	return e.Credit.Sub(e.Debit)
}

// InventoryMovement is a stock event applied to one product, either standalone
// or attached to a transaction posting.
type InventoryMovement struct {
	ProductID uuid.UUID
	Kind      MovementKind
	Quantity  decimal.Decimal
	// TotalCost is the full purchase cost for the quantity; unused for sales.
	TotalCost money.Amount
}

// DateRange bounds a transaction listing or report window. Nil bounds are open;
// both bounds are inclusive.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// Wire formats for calendar dates and chart month keys.
const (
	DateFormat  = "2006-01-02"
	MonthFormat = "2006-01"
)

// MonthKey returns the YYYY-MM chart bucket for d.
func MonthKey(d time.Time) string { return d.Format(MonthFormat) }

// ZeroAmount returns a zero money amount in the given currency.
func ZeroAmount(currency string) money.Amount {
	return money.MustNewAmount(currency, 0, 0)
}
