package httpapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/service/report"
)

// Wire amounts travel as integer minor units plus a formatted string for
// display. Quantities travel as decimal strings to keep fractional stock
// exact.

// Accounts

type accountRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	NormalBalance string `json:"normal_balance"`
	Control       string `json:"control,omitempty"`
}

type accountUpdateRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	Category      *string `json:"category"`
	NormalBalance *string `json:"normal_balance"`
	Control       *string `json:"control"`
}

type accountResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	NormalBalance string    `json:"normal_balance"`
	Control       string    `json:"control,omitempty"`
}

func toAccount(req accountRequest) ledger.Account {
	return ledger.Account{
		Code:          req.Code,
		Name:          req.Name,
		Category:      ledger.Category(req.Category),
		NormalBalance: ledger.Side(req.NormalBalance),
		Control:       ledger.ControlRole(req.Control),
	}
}

func toAccountResponse(a ledger.Account) accountResponse {
	control := string(a.Control)
	if a.Control == ledger.ControlNone {
		control = ""
	}
	return accountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Category:      string(a.Category),
		NormalBalance: string(a.NormalBalance),
		Control:       control,
	}
}

// Products

type productRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type productResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Qty          string    `json:"qty"`
	AvgCostMinor int64     `json:"avg_cost_minor"`
	AvgCost      string    `json:"avg_cost"`
}

func toProductResponse(p ledger.Product) (productResponse, error) {
	minor, ok := p.AvgCost.MinorUnits()
	if !ok {
		return productResponse{}, fmt.Errorf("avg cost of %s exceeds currency precision", p.Code)
	}
	return productResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Qty:          p.Qty.String(),
		AvgCostMinor: minor,
		AvgCost:      p.AvgCost.String(),
	}, nil
}

// Inventory movements

type movementRequest struct {
	Kind           string `json:"kind"`
	Quantity       string `json:"quantity"`
	TotalCostMinor int64  `json:"total_cost_minor"`
}

func (s *Server) toMovement(productID uuid.UUID, req movementRequest) (ledger.InventoryMovement, error) {
	qty, err := decimal.Parse(req.Quantity)
	if err != nil {
		return ledger.InventoryMovement{}, fmt.Errorf("invalid quantity %q", req.Quantity)
	}
	cost, err := money.NewAmountFromMinorUnits(s.currency, req.TotalCostMinor)
	if err != nil {
		return ledger.InventoryMovement{}, fmt.Errorf("invalid total_cost_minor %d", req.TotalCostMinor)
	}
	return ledger.InventoryMovement{
		ProductID: productID,
		Kind:      ledger.MovementKind(req.Kind),
		Quantity:  qty,
		TotalCost: cost,
	}, nil
}

// Transactions

type postTransactionRequest struct {
	Date        string                   `json:"date"`
	DueDate     string                   `json:"due_date,omitempty"`
	Description string                   `json:"description"`
	Kind        string                   `json:"kind,omitempty"`
	ProofRef    string                   `json:"proof_ref,omitempty"`
	Lines       []postTransactionLine    `json:"lines"`
	Movements   []transactionMovementReq `json:"movements,omitempty"`
}

type postTransactionLine struct {
	AccountID    uuid.UUID `json:"account_id"`
	DebitMinor   int64     `json:"debit_minor"`
	CreditMinor  int64     `json:"credit_minor"`
	Counterparty string    `json:"counterparty,omitempty"`
}

type transactionMovementReq struct {
	ProductID      uuid.UUID `json:"product_id"`
	Kind           string    `json:"kind"`
	Quantity       string    `json:"quantity"`
	TotalCostMinor int64     `json:"total_cost_minor"`
}

func (s *Server) toTransaction(req postTransactionRequest) (ledger.Transaction, []ledger.InventoryMovement, error) {
	date, err := time.Parse(ledger.DateFormat, req.Date)
	if err != nil {
		return ledger.Transaction{}, nil, fmt.Errorf("date must be YYYY-MM-DD")
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse(ledger.DateFormat, req.DueDate)
		if err != nil {
			return ledger.Transaction{}, nil, fmt.Errorf("due_date must be YYYY-MM-DD")
		}
		dueDate = &d
	}
	kind := ledger.TransactionKind(req.Kind)
	if req.Kind == "" {
		kind = ledger.KindGeneral
	}

	entries := make([]ledger.JournalEntry, 0, len(req.Lines))
	for i, ln := range req.Lines {
		debit, err := money.NewAmountFromMinorUnits(s.currency, ln.DebitMinor)
		if err != nil {
			return ledger.Transaction{}, nil, fmt.Errorf("lines[%d]: invalid debit_minor", i)
		}
		credit, err := money.NewAmountFromMinorUnits(s.currency, ln.CreditMinor)
		if err != nil {
			return ledger.Transaction{}, nil, fmt.Errorf("lines[%d]: invalid credit_minor", i)
		}
		entries = append(entries, ledger.JournalEntry{
			AccountID:    ln.AccountID,
			Debit:        debit,
			Credit:       credit,
			Counterparty: ln.Counterparty,
		})
	}

	movements := make([]ledger.InventoryMovement, 0, len(req.Movements))
	for i, mv := range req.Movements {
		m, err := s.toMovement(mv.ProductID, movementRequest{
			Kind:           mv.Kind,
			Quantity:       mv.Quantity,
			TotalCostMinor: mv.TotalCostMinor,
		})
		if err != nil {
			return ledger.Transaction{}, nil, fmt.Errorf("movements[%d]: %v", i, err)
		}
		movements = append(movements, m)
	}

	trx := ledger.Transaction{
		Date:        date,
		DueDate:     dueDate,
		Description: req.Description,
		Kind:        kind,
		ProofRef:    req.ProofRef,
		Entries:     entries,
	}
	return trx, movements, nil
}

type transactionResponse struct {
	ID          uuid.UUID         `json:"id"`
	Seq         int64             `json:"seq"`
	Date        string            `json:"date"`
	DueDate     string            `json:"due_date,omitempty"`
	Description string            `json:"description"`
	Kind        string            `json:"kind"`
	ProofRef    string            `json:"proof_ref,omitempty"`
	Lines       []journalLineView `json:"lines"`
}

type journalLineView struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	DebitMinor   int64     `json:"debit_minor"`
	CreditMinor  int64     `json:"credit_minor"`
	Counterparty string    `json:"counterparty,omitempty"`
}

func toTransactionResponse(trx ledger.Transaction) (transactionResponse, error) {
	lines := make([]journalLineView, 0, len(trx.Entries))
	for _, e := range trx.Entries {
		d, ok := e.Debit.MinorUnits()
		if !ok {
			return transactionResponse{}, fmt.Errorf("debit exceeds currency precision")
		}
		c, ok := e.Credit.MinorUnits()
		if !ok {
			return transactionResponse{}, fmt.Errorf("credit exceeds currency precision")
		}
		lines = append(lines, journalLineView{
			ID:           e.ID,
			AccountID:    e.AccountID,
			DebitMinor:   d,
			CreditMinor:  c,
			Counterparty: e.Counterparty,
		})
	}
	resp := transactionResponse{
		ID:          trx.ID,
		Seq:         trx.Seq,
		Date:        trx.Date.Format(ledger.DateFormat),
		Description: trx.Description,
		Kind:        string(trx.Kind),
		ProofRef:    trx.ProofRef,
		Lines:       lines,
	}
	if trx.DueDate != nil {
		resp.DueDate = trx.DueDate.Format(ledger.DateFormat)
	}
	return resp, nil
}

// Reports

type amountView struct {
	Minor     int64  `json:"minor"`
	Formatted string `json:"formatted"`
}

type summaryResponse struct {
	Income    amountView `json:"income"`
	Expense   amountView `json:"expense"`
	COGS      amountView `json:"cogs"`
	Asset     amountView `json:"asset"`
	Liability amountView `json:"liability"`
	Equity    amountView `json:"equity"`
}

type ledgerRowResponse struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Debit       amountView `json:"debit"`
	Credit      amountView `json:"credit"`
}

type accountLedgerResponse struct {
	AccountID uuid.UUID           `json:"account_id"`
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	Balance   amountView          `json:"balance"`
	Rows      []ledgerRowResponse `json:"rows"`
}

type subRowResponse struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Debit       amountView `json:"debit"`
	Credit      amountView `json:"credit"`
	DueDate     string     `json:"due_date,omitempty"`
}

type subLedgerResponse struct {
	Balance amountView       `json:"balance"`
	Rows    []subRowResponse `json:"rows"`
}

type chartResponse struct {
	Labels       []string `json:"labels"`
	IncomeMinor  []int64  `json:"income_minor"`
	ExpenseMinor []int64  `json:"expense_minor"`
}

type reportResponse struct {
	Summary     summaryResponse              `json:"summary"`
	NetProfit   amountView                   `json:"net_profit"`
	Ledger      []accountLedgerResponse      `json:"ledger"`
	Payables    map[string]subLedgerResponse `json:"payables"`
	Receivables map[string]subLedgerResponse `json:"receivables"`
	Chart       chartResponse                `json:"chart"`
}

func toAmountView(a money.Amount) (amountView, error) {
	minor, ok := a.MinorUnits()
	if !ok {
		return amountView{}, fmt.Errorf("amount exceeds currency precision")
	}
	return amountView{Minor: minor, Formatted: a.String()}, nil
}

func toReportResponse(rep report.Report) (reportResponse, error) {
	var resp reportResponse
	var err error

	views := []struct {
		dst *amountView
		src money.Amount
	}{
		{&resp.Summary.Income, rep.Summary.Income},
		{&resp.Summary.Expense, rep.Summary.Expense},
		{&resp.Summary.COGS, rep.Summary.COGS},
		{&resp.Summary.Asset, rep.Summary.Asset},
		{&resp.Summary.Liability, rep.Summary.Liability},
		{&resp.Summary.Equity, rep.Summary.Equity},
		{&resp.NetProfit, rep.NetProfit},
	}
	for _, v := range views {
		if *v.dst, err = toAmountView(v.src); err != nil {
			return reportResponse{}, err
		}
	}

	resp.Ledger = make([]accountLedgerResponse, 0, len(rep.Ledger))
	for _, al := range rep.Ledger {
		item := accountLedgerResponse{
			AccountID: al.AccountID,
			Code:      al.Code,
			Name:      al.Name,
			Category:  string(al.Category),
			Rows:      make([]ledgerRowResponse, 0, len(al.Rows)),
		}
		if item.Balance, err = toAmountView(al.Balance); err != nil {
			return reportResponse{}, err
		}
		for _, row := range al.Rows {
			rv := ledgerRowResponse{
				Date:        row.Date.Format(ledger.DateFormat),
				Description: row.Description,
			}
			if rv.Debit, err = toAmountView(row.Debit); err != nil {
				return reportResponse{}, err
			}
			if rv.Credit, err = toAmountView(row.Credit); err != nil {
				return reportResponse{}, err
			}
			item.Rows = append(item.Rows, rv)
		}
		resp.Ledger = append(resp.Ledger, item)
	}

	if resp.Payables, err = toSubLedgerResponses(rep.Payables); err != nil {
		return reportResponse{}, err
	}
	if resp.Receivables, err = toSubLedgerResponses(rep.Receivables); err != nil {
		return reportResponse{}, err
	}

	resp.Chart = chartResponse{
		Labels:       rep.Chart.Labels,
		IncomeMinor:  make([]int64, 0, len(rep.Chart.Income)),
		ExpenseMinor: make([]int64, 0, len(rep.Chart.Expense)),
	}
	if resp.Chart.Labels == nil {
		resp.Chart.Labels = []string{}
	}
	for _, a := range rep.Chart.Income {
		v, cErr := toAmountView(a)
		if cErr != nil {
			return reportResponse{}, cErr
		}
		resp.Chart.IncomeMinor = append(resp.Chart.IncomeMinor, v.Minor)
	}
	for _, a := range rep.Chart.Expense {
		v, cErr := toAmountView(a)
		if cErr != nil {
			return reportResponse{}, cErr
		}
		resp.Chart.ExpenseMinor = append(resp.Chart.ExpenseMinor, v.Minor)
	}
	return resp, nil
}

func toSubLedgerResponses(in map[string]report.SubLedger) (map[string]subLedgerResponse, error) {
	out := make(map[string]subLedgerResponse, len(in))
	for name, sl := range in {
		item := subLedgerResponse{Rows: make([]subRowResponse, 0, len(sl.Rows))}
		var err error
		if item.Balance, err = toAmountView(sl.Balance); err != nil {
			return nil, err
		}
		for _, row := range sl.Rows {
			rv := subRowResponse{
				Date:        row.Date.Format(ledger.DateFormat),
				Description: row.Description,
			}
			if rv.Debit, err = toAmountView(row.Debit); err != nil {
				return nil, err
			}
			if rv.Credit, err = toAmountView(row.Credit); err != nil {
				return nil, err
			}
			if row.DueDate != nil {
				rv.DueDate = row.DueDate.Format(ledger.DateFormat)
			}
			item.Rows = append(item.Rows, rv)
		}
		out[name] = item
	}
	return out, nil
}
