package inventory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
	"github.com/kasbuku/kasbuku/internal/storage/memory"
)

func qty(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.Parse(s)
	require.NoError(t, err)
	return d
}

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("IDR", minor)
	require.NoError(t, err)
	return a
}

func TestValidateCreate(t *testing.T) {
	svc := inventory.New(nil, nil, "IDR")

	assert.NoError(t, svc.ValidateCreate(ledger.Product{Code: "ITM-001", Name: "Standard Feed"}))
	assert.ErrorIs(t, svc.ValidateCreate(ledger.Product{Name: "Standard Feed"}), errs.ErrInvalid)
	assert.ErrorIs(t, svc.ValidateCreate(ledger.Product{Code: "ITM-001", Name: "  "}), errs.ErrInvalid)
}

// Products always start empty: any quantity or valuation supplied at creation
// is discarded, and stock arrives through purchase movements.
func TestCreate_StartsEmpty(t *testing.T) {
	store := memory.New()
	svc := inventory.New(store, store, "IDR")
	ctx := context.Background()

	created, err := svc.Create(ctx, ledger.Product{
		Code:    "ITM-001",
		Name:    "Standard Feed",
		Qty:     qty(t, "25"),
		AvgCost: amt(t, 9999),
	})
	require.NoError(t, err)
	assert.True(t, created.Qty.IsZero(), "qty = %s", created.Qty)
	v, ok := created.AvgCost.MinorUnits()
	require.True(t, ok)
	assert.Equal(t, int64(0), v)

	got, err := store.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Qty.IsZero())
}

func TestCreate_DuplicateCode(t *testing.T) {
	store := memory.New()
	svc := inventory.New(store, store, "IDR")
	ctx := context.Background()

	_, err := svc.Create(ctx, ledger.Product{Code: "ITM-001", Name: "Standard Feed"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ledger.Product{Code: "ITM-001", Name: "Premium Feed"})
	assert.ErrorIs(t, err, inventory.ErrCodeExists)
}

func TestApply_ValidatesBeforeTouchingStock(t *testing.T) {
	store := memory.New()
	svc := inventory.New(store, store, "IDR")
	ctx := context.Background()

	created, err := svc.Create(ctx, ledger.Product{Code: "ITM-001", Name: "Standard Feed"})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, ledger.InventoryMovement{
		ProductID: created.ID, Kind: "transfer", Quantity: qty(t, "1"),
	})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = svc.Apply(ctx, ledger.InventoryMovement{
		ProductID: uuid.Nil, Kind: ledger.MovementPurchase, Quantity: qty(t, "1"), TotalCost: amt(t, 100),
	})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	p, err := svc.Apply(ctx, ledger.InventoryMovement{
		ProductID: created.ID, Kind: ledger.MovementPurchase, Quantity: qty(t, "10"), TotalCost: amt(t, 50000),
	})
	require.NoError(t, err)
	v, ok := p.AvgCost.MinorUnits()
	require.True(t, ok)
	assert.Equal(t, int64(5000), v)
}
