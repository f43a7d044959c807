package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/service/journal"
	"github.com/kasbuku/kasbuku/internal/storage/memory"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("IDR", minor)
	require.NoError(t, err)
	return a
}

func qty(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.Parse(s)
	require.NoError(t, err)
	return d
}

func seedStore(t *testing.T) (*memory.Store, ledger.Account, ledger.Account, ledger.Product) {
	t.Helper()
	store := memory.New()
	cash := ledger.Account{ID: uuid.New(), Code: "1-1000", Name: "Cash", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit, Control: ledger.ControlNone}
	sales := ledger.Account{ID: uuid.New(), Code: "4-1000", Name: "Sales", Category: ledger.CategoryRevenue, NormalBalance: ledger.SideCredit, Control: ledger.ControlNone}
	store.SeedAccount(cash)
	store.SeedAccount(sales)
	prod := ledger.Product{ID: uuid.New(), Code: "ITM-001", Name: "Standard Feed", AvgCost: ledger.ZeroAmount("IDR")}
	store.SeedProduct(prod)
	return store, cash, sales, prod
}

func baseTrx(t *testing.T, cash, sales ledger.Account, debitMinor, creditMinor int64) ledger.Transaction {
	t.Helper()
	return ledger.Transaction{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "cash sale",
		Kind:        ledger.KindGeneral,
		Entries: []ledger.JournalEntry{
			{AccountID: cash.ID, Debit: amt(t, debitMinor), Credit: amt(t, 0)},
			{AccountID: sales.ID, Debit: amt(t, 0), Credit: amt(t, creditMinor)},
		},
	}
}

func TestValidatePost_Balanced(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	err := svc.ValidatePost(context.Background(), baseTrx(t, cash, sales, 1000, 1000), nil)
	assert.NoError(t, err)
}

func TestValidatePost_Unbalanced(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	err := svc.ValidatePost(context.Background(), baseTrx(t, cash, sales, 1000, 900), nil)
	assert.ErrorIs(t, err, errs.ErrUnbalanced)
}

func TestValidatePost_HeaderRules(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	trx := baseTrx(t, cash, sales, 1000, 1000)
	trx.Date = time.Time{}
	assert.ErrorIs(t, svc.ValidatePost(ctx, trx, nil), errs.ErrInvalid)

	trx = baseTrx(t, cash, sales, 1000, 1000)
	trx.Description = "   "
	assert.ErrorIs(t, svc.ValidatePost(ctx, trx, nil), errs.ErrInvalid)

	trx = baseTrx(t, cash, sales, 1000, 1000)
	trx.Kind = "refund"
	assert.ErrorIs(t, svc.ValidatePost(ctx, trx, nil), errs.ErrInvalid)

	trx = baseTrx(t, cash, sales, 1000, 1000)
	trx.Entries = nil
	assert.ErrorIs(t, svc.ValidatePost(ctx, trx, nil), errs.ErrNoLines)
}

func TestValidatePost_LineRules(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	// missing account id
	trx := baseTrx(t, cash, sales, 1000, 1000)
	trx.Entries[0].AccountID = uuid.Nil
	err := svc.ValidatePost(ctx, trx, nil)
	require.ErrorIs(t, err, errs.ErrInvalid)
	assert.Contains(t, err.Error(), "lines[0]")

	// a line with neither side set
	trx = baseTrx(t, cash, sales, 1000, 1000)
	trx.Entries[1].Debit = amt(t, 0)
	trx.Entries[1].Credit = amt(t, 0)
	err = svc.ValidatePost(ctx, trx, nil)
	require.ErrorIs(t, err, errs.ErrInvalid)
	assert.Contains(t, err.Error(), "lines[1]")

	// unknown account
	trx = baseTrx(t, cash, sales, 1000, 1000)
	trx.Entries[0].AccountID = uuid.New()
	err = svc.ValidatePost(ctx, trx, nil)
	require.ErrorIs(t, err, errs.ErrInvalid)
	assert.Contains(t, err.Error(), "account not found")
}

func TestValidatePost_MovementRules(t *testing.T) {
	store, cash, sales, prod := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	trx := baseTrx(t, cash, sales, 1000, 1000)

	// unknown product
	err := svc.ValidatePost(ctx, trx, []ledger.InventoryMovement{
		{ProductID: uuid.New(), Kind: ledger.MovementPurchase, Quantity: qty(t, "1"), TotalCost: amt(t, 100)},
	})
	require.ErrorIs(t, err, errs.ErrInvalid)
	assert.Contains(t, err.Error(), "movements[0]")

	// bad quantity
	err = svc.ValidatePost(ctx, trx, []ledger.InventoryMovement{
		{ProductID: prod.ID, Kind: ledger.MovementPurchase, Quantity: qty(t, "0"), TotalCost: amt(t, 100)},
	})
	require.ErrorIs(t, err, errs.ErrInvalid)

	// valid purchase
	err = svc.ValidatePost(ctx, trx, []ledger.InventoryMovement{
		{ProductID: prod.ID, Kind: ledger.MovementPurchase, Quantity: qty(t, "10"), TotalCost: amt(t, 50000)},
	})
	assert.NoError(t, err)
}

func TestPost_AssignsIdentitiesAndPersists(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	out, err := svc.Post(ctx, baseTrx(t, cash, sales, 1000, 1000), nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, out.ID)
	assert.NotZero(t, out.Seq)
	for _, e := range out.Entries {
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, out.ID, e.TransactionID)
	}

	got, err := svc.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
	assert.Len(t, got.Entries, 2)
}

func TestPost_AtomicWithOverdrawnMovement(t *testing.T) {
	store, cash, sales, prod := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	_, err := svc.Post(ctx, baseTrx(t, cash, sales, 1000, 1000), []ledger.InventoryMovement{
		{ProductID: prod.ID, Kind: ledger.MovementSale, Quantity: qty(t, "5"), TotalCost: amt(t, 0)},
	})
	require.ErrorIs(t, err, errs.ErrInsufficientStock)

	// Neither side of the posting landed.
	trxs, err := svc.List(ctx, ledger.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, trxs)

	got, err := store.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.True(t, got.Qty.IsZero(), "qty = %s", got.Qty)
}

func TestDelete_RemovesTransaction(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	out, err := svc.Post(ctx, baseTrx(t, cash, sales, 1000, 1000), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, out.ID))
	_, err = svc.Get(ctx, out.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, out.ID), errs.ErrNotFound)
}

func TestList_NewestFirstWithinWindow(t *testing.T) {
	store, cash, sales, _ := seedStore(t)
	svc := journal.New(store, store)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		trx := baseTrx(t, cash, sales, 100, 100)
		trx.Date = d
		_, err := svc.Post(ctx, trx, nil)
		require.NoError(t, err)
	}

	start := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	out, err := svc.List(ctx, ledger.DateRange{Start: &start})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Date.After(out[1].Date))

	// Same-day postings come back in reverse insertion order.
	sameDay := baseTrx(t, cash, sales, 100, 100)
	sameDay.Date = days[1]
	latest, err := svc.Post(ctx, sameDay, nil)
	require.NoError(t, err)
	out, err = svc.List(ctx, ledger.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, latest.ID, out[0].ID)
}
