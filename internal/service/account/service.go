// Package account implements the chart-of-accounts registry rules: unique
// codes, canonical code ordering, and identity fields that freeze once journal
// entries reference the account.
package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
)

// ErrCodeExists indicates an account with the same code already exists.
var ErrCodeExists = errors.New("account code already exists")

// Repo defines read operations needed by the service.
type Repo interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (ledger.Account, error)
	// AccountHasEntries reports whether any journal entry references the account.
	AccountHasEntries(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error
}

// Service exposes validation and lifecycle of chart-of-accounts rows.
type Service interface {
	ValidateCreate(a ledger.Account) error
	Create(ctx context.Context, a ledger.Account) (ledger.Account, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Get(ctx context.Context, accountID uuid.UUID) (ledger.Account, error)
	Update(ctx context.Context, a ledger.Account) (ledger.Account, error)
	Delete(ctx context.Context, accountID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) ValidateCreate(a ledger.Account) error {
	if strings.TrimSpace(a.Code) == "" {
		return fmt.Errorf("%w: code is required", errs.ErrInvalid)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: invalid category", errs.ErrInvalid)
	}
	switch a.NormalBalance {
	case ledger.SideDebit, ledger.SideCredit:
	default:
		return fmt.Errorf("%w: normal_balance must be debit or credit", errs.ErrInvalid)
	}
	switch a.Control {
	case ledger.ControlNone, "":
	case ledger.ControlPayables:
		if a.Category != ledger.CategoryLiability {
			return fmt.Errorf("%w: payables control account must be a liability", errs.ErrInvalid)
		}
	case ledger.ControlReceivables:
		if a.Category != ledger.CategoryAsset {
			return fmt.Errorf("%w: receivables control account must be an asset", errs.ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: invalid control role", errs.ErrInvalid)
	}
	return nil
}

func (s *service) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	a.Code = strings.TrimSpace(a.Code)
	if a.Control == "" {
		a.Control = ledger.ControlNone
	}
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	existing, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	for _, other := range existing {
		if other.Code == a.Code {
			return ledger.Account{}, ErrCodeExists
		}
	}
	a.ID = uuid.New()
	return s.writer.CreateAccount(ctx, a)
}

// List returns all accounts in canonical chart order (lexicographic by code).
func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	accs, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].Code < accs[j].Code })
	return accs, nil
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID) (ledger.Account, error) {
	if accountID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	return s.repo.GetAccount(ctx, accountID)
}

// Update applies changes to an account. Once journal entries reference the
// account, Code, Category, NormalBalance and Control are frozen: changing the
// sign convention would retroactively flip historical balances.
func (s *service) Update(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if a.ID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	current, err := s.repo.GetAccount(ctx, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	identityChanged := current.Code != a.Code ||
		current.Category != a.Category ||
		current.NormalBalance != a.NormalBalance ||
		current.Control != a.Control
	if identityChanged {
		referenced, err := s.repo.AccountHasEntries(ctx, a.ID)
		if err != nil {
			return ledger.Account{}, err
		}
		if referenced {
			return ledger.Account{}, errs.ErrImmutable
		}
	}
	if current.Code != a.Code {
		existing, err := s.repo.ListAccounts(ctx)
		if err != nil {
			return ledger.Account{}, err
		}
		for _, other := range existing {
			if other.ID != a.ID && other.Code == a.Code {
				return ledger.Account{}, ErrCodeExists
			}
		}
	}
	return s.writer.UpdateAccount(ctx, a)
}

// Delete removes an account that no journal entry references.
func (s *service) Delete(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return err
	}
	referenced, err := s.repo.AccountHasEntries(ctx, accountID)
	if err != nil {
		return err
	}
	if referenced {
		return errs.ErrAccountInUse
	}
	return s.writer.DeleteAccount(ctx, accountID)
}
