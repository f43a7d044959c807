// Package report derives the financial reports from the recorded journal.
// Every request recomputes from scratch: income-statement figures are flow
// measures scoped to the requested window, balance-sheet figures are stock
// measures cumulative up to the end cutoff. The two scans stay independent;
// merging them would corrupt one side or the other.
package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/kasbuku/kasbuku/internal/ledger"
)

// Repo defines the read operations the engine scans over.
type Repo interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	ListTransactions(ctx context.Context, r ledger.DateRange) ([]ledger.Transaction, error)
}

// Summary holds the report's headline totals. Income, Expense and COGS are
// windowed; Asset, Liability and Equity are cumulative to the end cutoff.
type Summary struct {
	Income    money.Amount
	Expense   money.Amount
	COGS      money.Amount
	Asset     money.Amount
	Liability money.Amount
	Equity    money.Amount
}

// Row is one drill-down line of a ledger bucket.
type Row struct {
	Date        time.Time
	Description string
	Debit       money.Amount
	Credit      money.Amount
}

// AccountLedger is the windowed general-ledger view of one account.
type AccountLedger struct {
	AccountID uuid.UUID
	Code      string
	Name      string
	Category  ledger.Category
	Balance   money.Amount
	Rows      []Row
}

// SubRow is one drill-down line of a subsidiary ledger, carrying the owning
// transaction's due date for aging and collections.
type SubRow struct {
	Date        time.Time
	Description string
	Debit       money.Amount
	Credit      money.Amount
	DueDate     *time.Time
}

// SubLedger is the per-counterparty breakdown behind a control account.
type SubLedger struct {
	Balance money.Amount
	Rows    []SubRow
}

// Chart is the monthly income/expense trend series. Labels are strictly
// ascending YYYY-MM keys; months with no activity are absent, not zero-filled.
type Chart struct {
	Labels  []string
	Income  []money.Amount
	Expense []money.Amount
}

// Report is the full derived report for one request.
type Report struct {
	Summary     Summary
	NetProfit   money.Amount
	Ledger      []AccountLedger
	Payables    map[string]SubLedger
	Receivables map[string]SubLedger
	Chart       Chart
}

// Service generates reports on demand.
type Service interface {
	Generate(ctx context.Context, r ledger.DateRange) (Report, error)
}

type service struct {
	repo     Repo
	currency string
}

func New(repo Repo, currency string) Service {
	return &service{repo: repo, currency: currency}
}

// accum folds money amounts and remembers the first arithmetic error, keeping
// the scan loops free of per-addition error plumbing. All amounts share the
// book currency, so failures indicate a genuine invariant breach.
type accum struct {
	err error
}

func (a *accum) add(x, y money.Amount) money.Amount {
	if a.err != nil {
		return x
	}
	v, err := x.Add(y)
	if err != nil {
		a.err = err
		return x
	}
	return v
}

func (a *accum) sub(x, y money.Amount) money.Amount {
	if a.err != nil {
		return x
	}
	v, err := x.Sub(y)
	if err != nil {
		a.err = err
		return x
	}
	return v
}

type monthBucket struct {
	income  money.Amount
	expense money.Amount
}

func (s *service) zero() money.Amount { return ledger.ZeroAmount(s.currency) }

// Generate runs the dual-window scan and assembles the report.
func (s *service) Generate(ctx context.Context, r ledger.DateRange) (Report, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return Report{}, err
	}
	accByID := make(map[uuid.UUID]ledger.Account, len(accounts))
	for _, a := range accounts {
		accByID[a.ID] = a
	}

	rep := Report{
		Summary: Summary{
			Income: s.zero(), Expense: s.zero(), COGS: s.zero(),
			Asset: s.zero(), Liability: s.zero(), Equity: s.zero(),
		},
		NetProfit:   s.zero(),
		Payables:    make(map[string]SubLedger),
		Receivables: make(map[string]SubLedger),
	}

	var acc accum

	// Pass 1: windowed scan. Feeds the general ledger view, the income
	// statement, the monthly trend buckets and the subsidiary ledgers.
	windowed, err := s.repo.ListTransactions(ctx, r)
	if err != nil {
		return Report{}, err
	}
	buckets := make(map[uuid.UUID]int) // account id -> index into rep.Ledger
	months := make(map[string]*monthBucket)
	for _, trx := range windowed {
		for _, e := range trx.Entries {
			account, ok := accByID[e.AccountID]
			if !ok {
				return Report{}, errors.New("journal entry references unknown account")
			}

			signed, err := e.SignedAmount(account.NormalBalance)
			if err != nil {
				return Report{}, err
			}
			idx, ok := buckets[account.ID]
			if !ok {
				// Ledger order is first encounter during the scan.
				idx = len(rep.Ledger)
				buckets[account.ID] = idx
				rep.Ledger = append(rep.Ledger, AccountLedger{
					AccountID: account.ID,
					Code:      account.Code,
					Name:      account.Name,
					Category:  account.Category,
					Balance:   s.zero(),
				})
			}
			rep.Ledger[idx].Balance = acc.add(rep.Ledger[idx].Balance, signed)
			rep.Ledger[idx].Rows = append(rep.Ledger[idx].Rows, Row{
				Date:        trx.Date,
				Description: trx.Description,
				Debit:       e.Debit,
				Credit:      e.Credit,
			})

			key := ledger.MonthKey(trx.Date)
			mb, ok := months[key]
			if !ok {
				mb = &monthBucket{income: s.zero(), expense: s.zero()}
				months[key] = mb
			}
			switch account.Category {
			case ledger.CategoryRevenue:
				rep.Summary.Income = acc.add(rep.Summary.Income, e.Credit)
				mb.income = acc.add(mb.income, e.Credit)
			case ledger.CategoryExpense:
				rep.Summary.Expense = acc.add(rep.Summary.Expense, e.Debit)
				mb.expense = acc.add(mb.expense, e.Debit)
			case ledger.CategoryCOGS:
				rep.Summary.COGS = acc.add(rep.Summary.COGS, e.Debit)
				mb.expense = acc.add(mb.expense, e.Debit)
			}

			if e.Counterparty != "" && account.Control != ledger.ControlNone {
				s.accumulateSub(&rep, &acc, account.Control, e, trx)
			}
		}
	}

	costs := acc.add(rep.Summary.Expense, rep.Summary.COGS)
	rep.NetProfit = acc.sub(rep.Summary.Income, costs)

	rep.Chart = s.buildChart(months)

	// Pass 2: cumulative scan for the balance sheet. Everything dated up to
	// the end cutoff counts; the window start does not apply here.
	cumulative, err := s.repo.ListTransactions(ctx, ledger.DateRange{End: r.End})
	if err != nil {
		return Report{}, err
	}
	for _, trx := range cumulative {
		for _, e := range trx.Entries {
			account, ok := accByID[e.AccountID]
			if !ok {
				return Report{}, errors.New("journal entry references unknown account")
			}
			switch account.Category {
			case ledger.CategoryAsset:
				rep.Summary.Asset = acc.add(rep.Summary.Asset, e.Debit)
				rep.Summary.Asset = acc.sub(rep.Summary.Asset, e.Credit)
			case ledger.CategoryLiability:
				rep.Summary.Liability = acc.add(rep.Summary.Liability, e.Credit)
				rep.Summary.Liability = acc.sub(rep.Summary.Liability, e.Debit)
			case ledger.CategoryEquity:
				rep.Summary.Equity = acc.add(rep.Summary.Equity, e.Credit)
				rep.Summary.Equity = acc.sub(rep.Summary.Equity, e.Debit)
			}
		}
	}

	if acc.err != nil {
		return Report{}, acc.err
	}
	return rep, nil
}

// accumulateSub routes a counterparty-labelled entry into the subsidiary
// ledger behind its control account. Payables grow on credit, receivables on
// debit.
func (s *service) accumulateSub(rep *Report, acc *accum, role ledger.ControlRole, e ledger.JournalEntry, trx ledger.Transaction) {
	target := rep.Payables
	if role == ledger.ControlReceivables {
		target = rep.Receivables
	}
	sub, ok := target[e.Counterparty]
	if !ok {
		sub = SubLedger{Balance: s.zero()}
	}
	switch role {
	case ledger.ControlPayables:
		sub.Balance = acc.add(sub.Balance, e.Credit)
		sub.Balance = acc.sub(sub.Balance, e.Debit)
	case ledger.ControlReceivables:
		sub.Balance = acc.add(sub.Balance, e.Debit)
		sub.Balance = acc.sub(sub.Balance, e.Credit)
	}
	sub.Rows = append(sub.Rows, SubRow{
		Date:        trx.Date,
		Description: trx.Description,
		Debit:       e.Debit,
		Credit:      e.Credit,
		DueDate:     trx.DueDate,
	})
	target[e.Counterparty] = sub
}

// buildChart sorts the month keys ascending and emits parallel series.
func (s *service) buildChart(months map[string]*monthBucket) Chart {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c := Chart{
		Labels:  keys,
		Income:  make([]money.Amount, 0, len(keys)),
		Expense: make([]money.Amount, 0, len(keys)),
	}
	for _, k := range keys {
		c.Income = append(c.Income, months[k].income)
		c.Expense = append(c.Expense, months[k].expense)
	}
	return c
}
