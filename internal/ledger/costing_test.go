package ledger

import (
	"testing"

	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
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

func minor(t *testing.T, a money.Amount) int64 {
	t.Helper()
	v, ok := a.MinorUnits()
	require.True(t, ok, "amount does not fit currency scale: %v", a)
	return v
}

func emptyProduct(t *testing.T) Product {
	return Product{Code: "ITM-001", Name: "Standard Feed", AvgCost: ZeroAmount("IDR")}
}

func TestApplyMovement_PurchaseIntoEmpty(t *testing.T) {
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind:      MovementPurchase,
		Quantity:  qty(t, "10"),
		TotalCost: amt(t, 50000), // 500.00
	})
	require.NoError(t, err)
	assert.True(t, p.Qty.Cmp(qty(t, "10")) == 0, "qty = %s", p.Qty)
	assert.Equal(t, int64(5000), minor(t, p.AvgCost)) // 50.00 per unit
}

func TestApplyMovement_SaleKeepsAverage(t *testing.T) {
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "10"), TotalCost: amt(t, 50000),
	})
	require.NoError(t, err)
	p, err = ApplyMovement(p, InventoryMovement{Kind: MovementSale, Quantity: qty(t, "4")})
	require.NoError(t, err)
	assert.True(t, p.Qty.Cmp(qty(t, "6")) == 0, "qty = %s", p.Qty)
	assert.Equal(t, int64(5000), minor(t, p.AvgCost))
}

func TestApplyMovement_SaleToZeroLeavesAverage(t *testing.T) {
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "7"), TotalCost: amt(t, 70000),
	})
	require.NoError(t, err)
	p, err = ApplyMovement(p, InventoryMovement{Kind: MovementSale, Quantity: qty(t, "7")})
	require.NoError(t, err)
	assert.True(t, p.Qty.IsZero(), "qty = %s", p.Qty)
	assert.Equal(t, int64(10000), minor(t, p.AvgCost))
}

func TestApplyMovement_PurchaseBlendsAverage(t *testing.T) {
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "10"), TotalCost: amt(t, 50000),
	})
	require.NoError(t, err)
	// 10 @ 50.00 on hand, buy 10 more for 1000.00 -> 20 @ 75.00
	p, err = ApplyMovement(p, InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "10"), TotalCost: amt(t, 100000),
	})
	require.NoError(t, err)
	assert.True(t, p.Qty.Cmp(qty(t, "20")) == 0, "qty = %s", p.Qty)
	assert.Equal(t, int64(7500), minor(t, p.AvgCost))
}

func TestApplyMovement_AverageRoundsToCurrency(t *testing.T) {
	// 3 units for 100.00 -> 33.3333... rounds to 33.33
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "3"), TotalCost: amt(t, 10000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3333), minor(t, p.AvgCost))
}

func TestApplyMovement_InsufficientStock(t *testing.T) {
	p, err := ApplyMovement(emptyProduct(t), InventoryMovement{
		Kind: MovementPurchase, Quantity: qty(t, "5"), TotalCost: amt(t, 25000),
	})
	require.NoError(t, err)
	_, err = ApplyMovement(p, InventoryMovement{Kind: MovementSale, Quantity: qty(t, "6")})
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)
}

func TestApplyMovement_RejectsBadInput(t *testing.T) {
	p := emptyProduct(t)
	_, err := ApplyMovement(p, InventoryMovement{Kind: MovementSale, Quantity: qty(t, "0")})
	assert.ErrorIs(t, err, errs.ErrInvalid)
	_, err = ApplyMovement(p, InventoryMovement{Kind: MovementPurchase, Quantity: qty(t, "-1"), TotalCost: amt(t, 100)})
	assert.ErrorIs(t, err, errs.ErrInvalid)
	_, err = ApplyMovement(p, InventoryMovement{Kind: MovementPurchase, Quantity: qty(t, "1"), TotalCost: amt(t, -100)})
	assert.ErrorIs(t, err, errs.ErrInvalid)
	_, err = ApplyMovement(p, InventoryMovement{Kind: "transfer", Quantity: qty(t, "1")})
	assert.ErrorIs(t, err, errs.ErrInvalid)
}
