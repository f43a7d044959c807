// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing a
// real database to be plugged in behind the same interfaces.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
)

// txnKey orders transactions newest-first: date descending, then the
// storage-assigned insertion sequence descending.
type txnKey struct {
	Date time.Time
	Seq  int64
	ID   uuid.UUID
}

// Store is an in-memory implementation of the repository and writer interfaces
// used by the services. A single RWMutex guards all state; holding the write
// lock across a whole posting is what makes postings atomic and serializes
// movement application per product.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]ledger.Account
	products map[uuid.UUID]ledger.Product
	txns     map[uuid.UUID]*ledger.Transaction
	// Sorted newest-first index over transactions for ordered listings.
	txnKeys []txnKey
	nextSeq int64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]ledger.Account),
		products: make(map[uuid.UUID]ledger.Product),
		txns:     make(map[uuid.UUID]*ledger.Transaction),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedAccount(a ledger.Account) { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }
func (s *Store) SeedProduct(p ledger.Product) { s.mu.Lock(); s.products[p.ID] = p; s.mu.Unlock() }

// Reset clears all state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accounts = map[uuid.UUID]ledger.Account{}
	s.products = map[uuid.UUID]ledger.Product{}
	s.txns = map[uuid.UUID]*ledger.Transaction{}
	s.txnKeys = nil
	s.nextSeq = 0
	s.mu.Unlock()
}

// Ready reports readiness; the in-memory store is always ready.
func (s *Store) Ready(_ context.Context) error { return nil }

// --- Accounts ---

func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, accountID uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) AccountsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]ledger.Account, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

// AccountHasEntries reports whether any journal entry references the account.
func (s *Store) AccountHasEntries(_ context.Context, accountID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, trx := range s.txns {
		for _, e := range trx.Entries {
			if e.AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

// CreateAccount persists a new account. Code uniqueness is checked under the
// write lock, mirroring the database unique constraint; the service's own
// read-then-write check can lose a race.
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.accounts {
		if other.Code == a.Code {
			return ledger.Account{}, errs.ErrConflict
		}
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	for _, other := range s.accounts {
		if other.ID != a.ID && other.Code == a.Code {
			return ledger.Account{}, errs.ErrConflict
		}
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAccount(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.accounts, accountID)
	return nil
}

// --- Products ---

func (s *Store) ListProducts(_ context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, productID uuid.UUID) (ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return ledger.Product{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *Store) ProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]ledger.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// CreateProduct persists a new product, checking code uniqueness under the
// write lock like CreateAccount.
func (s *Store) CreateProduct(_ context.Context, p ledger.Product) (ledger.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.products {
		if other.Code == p.Code {
			return ledger.Product{}, errs.ErrConflict
		}
	}
	s.products[p.ID] = p
	return p, nil
}

// ApplyMovement loads, recosts and persists the product under the write lock,
// which serializes movements per product.
func (s *Store) ApplyMovement(_ context.Context, m ledger.InventoryMovement) (ledger.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[m.ProductID]
	if !ok {
		return ledger.Product{}, errs.ErrNotFound
	}
	next, err := ledger.ApplyMovement(p, m)
	if err != nil {
		return ledger.Product{}, err
	}
	s.products[next.ID] = next
	return next, nil
}

// --- Transactions ---

// CreateTransaction persists the transaction, its entries and the attached
// movements as one atomic unit. All reads and costing happen before any state
// is mutated, so a failing movement leaves nothing behind.
func (s *Store) CreateTransaction(_ context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range trx.Entries {
		if _, ok := s.accounts[e.AccountID]; !ok {
			return ledger.Transaction{}, errs.ErrInvalid
		}
	}
	// Stage recosted products first; commit only when every movement applied.
	staged := make(map[uuid.UUID]ledger.Product, len(movements))
	for _, m := range movements {
		p, ok := staged[m.ProductID]
		if !ok {
			p, ok = s.products[m.ProductID]
			if !ok {
				return ledger.Transaction{}, errs.ErrInvalid
			}
		}
		next, err := ledger.ApplyMovement(p, m)
		if err != nil {
			return ledger.Transaction{}, err
		}
		staged[next.ID] = next
	}

	s.nextSeq++
	trx.Seq = s.nextSeq
	t := trx
	s.txns[t.ID] = &t
	s.insertTxnKeyLocked(txnKey{Date: t.Date, Seq: t.Seq, ID: t.ID})
	for id, p := range staged {
		s.products[id] = p
	}
	return t, nil
}

// ListTransactions returns transactions inside the inclusive range, newest
// first (date desc, then insertion sequence desc).
func (s *Store) ListTransactions(_ context.Context, r ledger.DateRange) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, k := range s.txnKeys {
		if !r.Contains(k.Date) {
			continue
		}
		if t, ok := s.txns[k.ID]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txns[id]
	if !ok {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	return *t, nil
}

// DeleteTransaction removes the transaction together with its entries, which
// only live inside it.
func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.txns, id)
	for i, k := range s.txnKeys {
		if k.ID == id {
			s.txnKeys = append(s.txnKeys[:i], s.txnKeys[i+1:]...)
			break
		}
	}
	return nil
}

// insertTxnKeyLocked keeps txnKeys sorted newest-first. Caller holds the lock.
func (s *Store) insertTxnKeyLocked(k txnKey) {
	i := sort.Search(len(s.txnKeys), func(i int) bool {
		existing := s.txnKeys[i]
		if !existing.Date.Equal(k.Date) {
			return existing.Date.Before(k.Date)
		}
		return existing.Seq < k.Seq
	})
	s.txnKeys = append(s.txnKeys, txnKey{})
	copy(s.txnKeys[i+1:], s.txnKeys[i:])
	s.txnKeys[i] = k
}
