// Package inventory exposes the product registry and the single entry point
// for stock movements. The costing arithmetic itself lives in
// ledger.ApplyMovement; both standalone movements and movements attached to a
// transaction posting flow through the same storage-level application so stock
// and journal can never diverge.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
)

// ErrCodeExists indicates a product with the same code already exists.
var ErrCodeExists = errors.New("product code already exists")

// Repo defines read operations needed by the service.
type Repo interface {
	ListProducts(ctx context.Context) ([]ledger.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (ledger.Product, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateProduct(ctx context.Context, p ledger.Product) (ledger.Product, error)
	// ApplyMovement loads the product, runs ledger.ApplyMovement under the
	// product lock and persists the result as one atomic step.
	ApplyMovement(ctx context.Context, m ledger.InventoryMovement) (ledger.Product, error)
}

// Service exposes product lifecycle and movement application.
type Service interface {
	ValidateCreate(p ledger.Product) error
	Create(ctx context.Context, p ledger.Product) (ledger.Product, error)
	List(ctx context.Context) ([]ledger.Product, error)
	Get(ctx context.Context, productID uuid.UUID) (ledger.Product, error)
	Apply(ctx context.Context, m ledger.InventoryMovement) (ledger.Product, error)
}

type service struct {
	repo     Repo
	writer   Writer
	currency string
}

func New(repo Repo, writer Writer, currency string) Service {
	return &service{repo: repo, writer: writer, currency: currency}
}

func (s *service) ValidateCreate(p ledger.Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: code is required", errs.ErrInvalid)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	return nil
}

func (s *service) Create(ctx context.Context, p ledger.Product) (ledger.Product, error) {
	p.Code = strings.TrimSpace(p.Code)
	if err := s.ValidateCreate(p); err != nil {
		return ledger.Product{}, err
	}
	existing, err := s.repo.ListProducts(ctx)
	if err != nil {
		return ledger.Product{}, err
	}
	for _, other := range existing {
		if other.Code == p.Code {
			return ledger.Product{}, ErrCodeExists
		}
	}
	p.ID = uuid.New()
	// Stock always starts empty and unvalued; opening quantities arrive as
	// purchase movements, which also set the average.
	p.Qty = decimal.Decimal{}
	p.AvgCost = ledger.ZeroAmount(s.currency)
	return s.writer.CreateProduct(ctx, p)
}

// List returns all products ordered by code.
func (s *service) List(ctx context.Context) ([]ledger.Product, error) {
	prods, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(prods, func(i, j int) bool { return prods[i].Code < prods[j].Code })
	return prods, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (ledger.Product, error) {
	if productID == uuid.Nil {
		return ledger.Product{}, errs.ErrInvalid
	}
	return s.repo.GetProduct(ctx, productID)
}

// Apply validates and applies a standalone movement atomically.
func (s *service) Apply(ctx context.Context, m ledger.InventoryMovement) (ledger.Product, error) {
	if err := ValidateMovement(m); err != nil {
		return ledger.Product{}, err
	}
	return s.writer.ApplyMovement(ctx, m)
}

// ValidateMovement checks the structural fields of a movement. The stock-level
// check happens inside ledger.ApplyMovement under the product lock.
func ValidateMovement(m ledger.InventoryMovement) error {
	if m.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", errs.ErrInvalid)
	}
	switch m.Kind {
	case ledger.MovementPurchase:
		if m.TotalCost.IsNeg() {
			return fmt.Errorf("%w: total_cost must not be negative", errs.ErrInvalid)
		}
	case ledger.MovementSale:
	default:
		return fmt.Errorf("%w: kind must be purchase or sale", errs.ErrInvalid)
	}
	if m.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity must be > 0", errs.ErrInvalid)
	}
	return nil
}
