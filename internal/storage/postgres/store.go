// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between the
// domain entities and SQL rows and running the necessary statements and
// transactions: a posting is one database transaction covering the
// transaction row, its entries and any attached inventory movements, with
// products locked FOR UPDATE so concurrent movements on one product serialize.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbuku/kasbuku/internal/dictionary"
	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool     *pgxpool.Pool
	currency string
}

// Open establishes a pgx pool using the provided connection string. Amount
// columns hold minor units in the given book currency.
func Open(ctx context.Context, dsn, currency string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, currency: currency}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) amount(minor int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(s.currency, minor)
}

// mapPgErr translates constraint violations into sentinel errors so callers
// never leak raw database error text.
func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errs.ErrConflict
		case "23503": // foreign_key_violation
			return errs.ErrInvalid
		}
	}
	return err
}

// SeedDev inserts the default chart of accounts and sample products when the
// book is empty, for quick local testing.
func (s *Store) SeedDev(ctx context.Context) ([]ledger.Account, []ledger.Product, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `select count(*) from accounts`).Scan(&n); err != nil {
		return nil, nil, err
	}
	if n > 0 {
		return nil, nil, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	accs := make([]ledger.Account, 0, len(dictionary.DefaultChart))
	for _, def := range dictionary.DefaultChart {
		a := ledger.Account{ID: uuid.New(), Code: def.Code, Name: def.Name, Category: def.Category, NormalBalance: def.NormalBalance, Control: def.Control}
		if a.Control == "" {
			a.Control = ledger.ControlNone
		}
		if _, err := tx.Exec(ctx, `
			insert into accounts (id, code, name, category, normal_balance, control)
			values ($1,$2,$3,$4,$5,$6)
		`, a.ID, a.Code, a.Name, a.Category, a.NormalBalance, a.Control); err != nil {
			return nil, nil, err
		}
		accs = append(accs, a)
	}
	prods := make([]ledger.Product, 0, len(dictionary.DefaultProducts))
	for _, def := range dictionary.DefaultProducts {
		p := ledger.Product{ID: uuid.New(), Code: def.Code, Name: def.Name, AvgCost: ledger.ZeroAmount(s.currency)}
		if _, err := tx.Exec(ctx, `
			insert into products (id, code, name, qty, avg_cost_minor)
			values ($1,$2,$3,0,0)
		`, p.ID, p.Code, p.Name); err != nil {
			return nil, nil, err
		}
		prods = append(prods, p)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return accs, prods, nil
}

// --- Accounts ---

func scanAccount(row pgx.Row) (ledger.Account, error) {
	var a ledger.Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Category, &a.NormalBalance, &a.Control)
	return a, err
}

// ListAccounts returns all accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select id, code, name, category, normal_balance, control
		from accounts
		order by code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount returns an account by ID.
func (s *Store) GetAccount(ctx context.Context, accountID uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		select id, code, name, category, normal_balance, control
		from accounts
		where id = $1
	`, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, err
}

// AccountsByIDs returns accounts filtered by IDs.
func (s *Store) AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]ledger.Account{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		select id, code, name, category, normal_balance, control
		from accounts
		where id = any($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]ledger.Account)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

// AccountHasEntries reports whether any journal entry references the account.
func (s *Store) AccountHasEntries(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		select exists(select 1 from journal_entries where account_id = $1)
	`, accountID).Scan(&exists)
	return exists, err
}

// CreateAccount persists a new account.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, code, name, category, normal_balance, control)
		values ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.Code, a.Name, a.Category, a.NormalBalance, a.Control)
	if err != nil {
		return ledger.Account{}, mapPgErr(err)
	}
	return a, nil
}

// UpdateAccount persists changes to an account.
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		update accounts
		set code=$1, name=$2, category=$3, normal_balance=$4, control=$5
		where id=$6
	`, a.Code, a.Name, a.Category, a.NormalBalance, a.Control, a.ID)
	if err != nil {
		return ledger.Account{}, mapPgErr(err)
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// DeleteAccount removes an account. The FK from journal_entries restricts
// deletion of referenced accounts; the service checks first, this maps the
// race loser to a conflict.
func (s *Store) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from accounts where id = $1`, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return errs.ErrAccountInUse
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Products ---

func (s *Store) scanProduct(row pgx.Row) (ledger.Product, error) {
	var p ledger.Product
	var qtyText string
	var avgMinor int64
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &qtyText, &avgMinor); err != nil {
		return ledger.Product{}, err
	}
	q, err := decimal.Parse(qtyText)
	if err != nil {
		return ledger.Product{}, err
	}
	p.Qty = q
	p.AvgCost, err = s.amount(avgMinor)
	return p, err
}

const productCols = `id, code, name, qty::text, avg_cost_minor`

// ListProducts returns all products ordered by code.
func (s *Store) ListProducts(ctx context.Context) ([]ledger.Product, error) {
	rows, err := s.pool.Query(ctx, `select `+productCols+` from products order by code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Product, 0)
	for rows.Next() {
		p, err := s.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns a product by ID.
func (s *Store) GetProduct(ctx context.Context, productID uuid.UUID) (ledger.Product, error) {
	p, err := s.scanProduct(s.pool.QueryRow(ctx, `select `+productCols+` from products where id = $1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Product{}, errs.ErrNotFound
	}
	return p, err
}

// ProductsByIDs returns products filtered by IDs.
func (s *Store) ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]ledger.Product{}, nil
	}
	rows, err := s.pool.Query(ctx, `select `+productCols+` from products where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]ledger.Product)
	for rows.Next() {
		p, err := s.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// CreateProduct persists a new product.
func (s *Store) CreateProduct(ctx context.Context, p ledger.Product) (ledger.Product, error) {
	minor, ok := p.AvgCost.MinorUnits()
	if !ok {
		return ledger.Product{}, errs.ErrInvalid
	}
	_, err := s.pool.Exec(ctx, `
		insert into products (id, code, name, qty, avg_cost_minor)
		values ($1,$2,$3,cast($4 as numeric),$5)
	`, p.ID, p.Code, p.Name, p.Qty.String(), minor)
	if err != nil {
		return ledger.Product{}, mapPgErr(err)
	}
	return p, nil
}

// ApplyMovement recosts one product inside a transaction, locking the row so
// concurrent movements on the same product serialize.
func (s *Store) ApplyMovement(ctx context.Context, m ledger.InventoryMovement) (ledger.Product, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	p, err := s.applyMovementTx(ctx, tx, m)
	if err != nil {
		return ledger.Product{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Product{}, err
	}
	return p, nil
}

func (s *Store) applyMovementTx(ctx context.Context, tx pgx.Tx, m ledger.InventoryMovement) (ledger.Product, error) {
	p, err := s.scanProduct(tx.QueryRow(ctx, `select `+productCols+` from products where id = $1 for update`, m.ProductID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Product{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Product{}, err
	}
	next, err := ledger.ApplyMovement(p, m)
	if err != nil {
		return ledger.Product{}, err
	}
	minor, ok := next.AvgCost.MinorUnits()
	if !ok {
		return ledger.Product{}, errs.ErrInvalid
	}
	if _, err := tx.Exec(ctx, `
		update products set qty = cast($1 as numeric), avg_cost_minor = $2 where id = $3
	`, next.Qty.String(), minor, next.ID); err != nil {
		return ledger.Product{}, err
	}
	return next, nil
}

// --- Transactions ---

// CreateTransaction inserts the transaction, its entries and applies attached
// inventory movements in one database transaction.
func (s *Store) CreateTransaction(ctx context.Context, trx ledger.Transaction, movements []ledger.InventoryMovement) (ledger.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		insert into transactions (id, date, due_date, description, kind, proof_ref)
		values ($1,$2,$3,$4,$5,$6)
		returning seq
	`, trx.ID, trx.Date, trx.DueDate, trx.Description, trx.Kind, trx.ProofRef).Scan(&trx.Seq)
	if err != nil {
		return ledger.Transaction{}, mapPgErr(err)
	}
	for i, e := range trx.Entries {
		debit, ok := e.Debit.MinorUnits()
		if !ok {
			return ledger.Transaction{}, errs.ErrInvalid
		}
		credit, ok := e.Credit.MinorUnits()
		if !ok {
			return ledger.Transaction{}, errs.ErrInvalid
		}
		if _, err := tx.Exec(ctx, `
			insert into journal_entries (id, transaction_id, account_id, line_no, debit_minor, credit_minor, counterparty)
			values ($1,$2,$3,$4,$5,$6,$7)
		`, e.ID, e.TransactionID, e.AccountID, i, debit, credit, e.Counterparty); err != nil {
			return ledger.Transaction{}, mapPgErr(err)
		}
	}
	for _, m := range movements {
		if _, err := s.applyMovementTx(ctx, tx, m); err != nil {
			return ledger.Transaction{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	return trx, nil
}

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var t ledger.Transaction
	err := row.Scan(&t.ID, &t.Seq, &t.Date, &t.DueDate, &t.Description, &t.Kind, &t.ProofRef)
	return t, err
}

// ListTransactions returns transactions inside the inclusive range with
// entries populated, ordered date descending then sequence descending.
func (s *Store) ListTransactions(ctx context.Context, r ledger.DateRange) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		select id, seq, date, due_date, description, kind, proof_ref
		from transactions
		where ($1::date is null or date >= $1)
		  and ($2::date is null or date <= $2)
		order by date desc, seq desc
	`, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Transaction, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := s.loadEntries(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// loadEntries attaches entries to the given transactions, preserving line order.
func (s *Store) loadEntries(ctx context.Context, txns []ledger.Transaction, ids []uuid.UUID) error {
	rows, err := s.pool.Query(ctx, `
		select id, transaction_id, account_id, debit_minor, credit_minor, counterparty
		from journal_entries
		where transaction_id = any($1)
		order by transaction_id, line_no
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	idx := make(map[uuid.UUID]*ledger.Transaction, len(txns))
	for i := range txns {
		idx[txns[i].ID] = &txns[i]
	}
	for rows.Next() {
		var e ledger.JournalEntry
		var debit, credit int64
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &debit, &credit, &e.Counterparty); err != nil {
			return err
		}
		if e.Debit, err = s.amount(debit); err != nil {
			return err
		}
		if e.Credit, err = s.amount(credit); err != nil {
			return err
		}
		if t := idx[e.TransactionID]; t != nil {
			t.Entries = append(t.Entries, e)
		}
	}
	return rows.Err()
}

// GetTransaction returns one transaction with entries populated.
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, `
		select id, seq, date, due_date, description, kind, proof_ref
		from transactions
		where id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Transaction{}, err
	}
	txns := []ledger.Transaction{t}
	if err := s.loadEntries(ctx, txns, []uuid.UUID{t.ID}); err != nil {
		return ledger.Transaction{}, err
	}
	return txns[0], nil
}

// DeleteTransaction removes the transaction and all owned entries in one
// database transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `delete from journal_entries where transaction_id = $1`, id); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `delete from transactions where id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return tx.Commit(ctx)
}
