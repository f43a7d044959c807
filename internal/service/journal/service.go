// Package journal implements the ledger: validation and atomic posting of
// transactions with their journal entries and any attached inventory
// movements, plus listing and cascading deletion.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/service/inventory"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Product, error)
	// ListTransactions returns transactions inside the inclusive range ordered
	// by date descending, then insertion sequence descending.
	ListTransactions(ctx context.Context, r ledger.DateRange) ([]ledger.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	// CreateTransaction persists the transaction, its entries and the attached
	// movements as a single atomic unit: all succeed or none do.
	CreateTransaction(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) (ledger.Transaction, error)
	// DeleteTransaction removes the transaction and all owned entries atomically.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// Service exposes validation, posting and lifecycle of transactions.
type Service interface {
	ValidatePost(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) error
	Post(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) (ledger.Transaction, error)
	List(ctx context.Context, r ledger.DateRange) ([]ledger.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// ValidatePost checks the transaction header, the structural validity of every
// line, the debit/credit balance invariant, and that every referenced account
// and product exists. Unbalanced postings are rejected outright.
func (s *service) ValidatePost(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) error {
	if trx.Date.IsZero() {
		return fmt.Errorf("%w: date is required", errs.ErrInvalid)
	}
	if strings.TrimSpace(trx.Description) == "" {
		return fmt.Errorf("%w: description is required", errs.ErrInvalid)
	}
	if !trx.Kind.Valid() {
		return fmt.Errorf("%w: invalid transaction kind", errs.ErrInvalid)
	}
	if len(trx.Entries) == 0 {
		return errs.ErrNoLines
	}

	ids := make([]uuid.UUID, 0, len(trx.Entries))
	var sumDebits, sumCredits int64
	for i, line := range trx.Entries {
		if line.AccountID == uuid.Nil {
			return fieldErr(i, "account_id required")
		}
		if line.Debit.IsNeg() || line.Credit.IsNeg() {
			return fieldErr(i, "amounts must be >= 0")
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fieldErr(i, "either debit or credit must be > 0")
		}
		d, ok := line.Debit.MinorUnits()
		if !ok {
			return fieldErr(i, "debit exceeds currency precision")
		}
		c, ok := line.Credit.MinorUnits()
		if !ok {
			return fieldErr(i, "credit exceeds currency precision")
		}
		sumDebits += d
		sumCredits += c
		ids = append(ids, line.AccountID)
	}
	if sumDebits != sumCredits {
		return errs.ErrUnbalanced
	}

	accMap, err := s.repo.AccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i, line := range trx.Entries {
		if _, ok := accMap[line.AccountID]; !ok {
			return fieldErr(i, "account not found")
		}
	}

	if len(movements) == 0 {
		return nil
	}
	prodIDs := make([]uuid.UUID, 0, len(movements))
	for i, m := range movements {
		if err := inventory.ValidateMovement(m); err != nil {
			return movementErr(i, err)
		}
		prodIDs = append(prodIDs, m.ProductID)
	}
	prodMap, err := s.repo.ProductsByIDs(ctx, prodIDs)
	if err != nil {
		return err
	}
	for i, m := range movements {
		if _, ok := prodMap[m.ProductID]; !ok {
			return movementErr(i, errors.New("product not found"))
		}
	}
	return nil
}

// Post assigns identities and persists the transaction atomically.
// ValidatePost is assumed to have been called.
func (s *service) Post(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) (ledger.Transaction, error) {
	trx.ID = uuid.New()
	for i := range trx.Entries {
		trx.Entries[i].ID = uuid.New()
		trx.Entries[i].TransactionID = trx.ID
	}
	return s.writer.CreateTransaction(ctx, trx, movements)
}

func (s *service) List(ctx context.Context, r ledger.DateRange) ([]ledger.Transaction, error) {
	return s.repo.ListTransactions(ctx, r)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	if id == uuid.Nil {
		return ledger.Transaction{}, errs.ErrInvalid
	}
	return s.repo.GetTransaction(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteTransaction(ctx, id)
}

func fieldErr(i int, msg string) error {
	return fmt.Errorf("%w: lines[%d]: %s", errs.ErrInvalid, i, msg)
}

func movementErr(i int, err error) error {
	return fmt.Errorf("%w: movements[%d]: %v", errs.ErrInvalid, i, err)
}
