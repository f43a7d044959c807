package ledger

import (
	"github.com/kasbuku/kasbuku/internal/errs"
)

// ApplyMovement returns the product state after applying a purchase or sale.
// This is the single implementation of moving-average (weighted-average
// perpetual) costing: a purchase blends its total cost into the running
// average, a sale draws quantity down at the current average without changing
// it. Sales that would drive quantity negative are rejected.
//
// The arithmetic is not commutative across movements, so callers must
// serialize invocations per product (the storage layer holds the product lock
// while applying).
func ApplyMovement(p Product, m InventoryMovement) (Product, error) {
	if m.Quantity.Sign() <= 0 {
		return Product{}, errs.ErrInvalid
	}
	switch m.Kind {
	case MovementPurchase:
		if m.TotalCost.IsNeg() {
			return Product{}, errs.ErrInvalid
		}
		newQty, err := p.Qty.Add(m.Quantity)
		if err != nil {
			return Product{}, err
		}
		oldValue, err := p.AvgCost.Mul(p.Qty)
		if err != nil {
			return Product{}, err
		}
		newValue, err := oldValue.Add(m.TotalCost)
		if err != nil {
			return Product{}, err
		}
		avg := ZeroAmount(p.AvgCost.Curr().Code())
		if newQty.Sign() > 0 {
			unit, err := newValue.Quo(newQty)
			if err != nil {
				return Product{}, err
			}
			// Fixed-point policy: unit cost carries currency precision.
			avg = unit.RoundToCurr()
		}
		p.Qty = newQty
		p.AvgCost = avg
	case MovementSale:
		if p.Qty.Cmp(m.Quantity) < 0 {
			return Product{}, errs.ErrInsufficientStock
		}
		newQty, err := p.Qty.Sub(m.Quantity)
		if err != nil {
			return Product{}, err
		}
		p.Qty = newQty
	default:
		return Product{}, errs.ErrInvalid
	}
	return p, nil
}
