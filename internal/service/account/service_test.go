package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
	"github.com/kasbuku/kasbuku/internal/service/account"
	"github.com/kasbuku/kasbuku/internal/storage/memory"
)

func validAccount() ledger.Account {
	return ledger.Account{
		Code:          "6-9000",
		Name:          "Travel Expense",
		Category:      ledger.CategoryExpense,
		NormalBalance: ledger.SideDebit,
		Control:       ledger.ControlNone,
	}
}

func TestValidateCreate(t *testing.T) {
	store := memory.New()
	svc := account.New(store, store)

	assert.NoError(t, svc.ValidateCreate(validAccount()))

	a := validAccount()
	a.Code = " "
	assert.ErrorIs(t, svc.ValidateCreate(a), errs.ErrInvalid)

	a = validAccount()
	a.Category = "misc"
	assert.ErrorIs(t, svc.ValidateCreate(a), errs.ErrInvalid)

	a = validAccount()
	a.NormalBalance = "both"
	assert.ErrorIs(t, svc.ValidateCreate(a), errs.ErrInvalid)

	// control roles are tied to their category
	a = validAccount()
	a.Control = ledger.ControlPayables
	assert.ErrorIs(t, svc.ValidateCreate(a), errs.ErrInvalid)

	a = validAccount()
	a.Category = ledger.CategoryLiability
	a.NormalBalance = ledger.SideCredit
	a.Control = ledger.ControlPayables
	assert.NoError(t, svc.ValidateCreate(a))
}

func TestCreate_DuplicateCode(t *testing.T) {
	store := memory.New()
	svc := account.New(store, store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validAccount())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Create(ctx, validAccount())
	assert.ErrorIs(t, err, account.ErrCodeExists)
}

func TestList_OrderedByCode(t *testing.T) {
	store := memory.New()
	svc := account.New(store, store)
	ctx := context.Background()

	for _, code := range []string{"4-1000", "1-1000", "2-1000"} {
		a := validAccount()
		a.Code = code
		_, err := svc.Create(ctx, a)
		require.NoError(t, err)
	}

	accs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 3)
	assert.Equal(t, "1-1000", accs[0].Code)
	assert.Equal(t, "2-1000", accs[1].Code)
	assert.Equal(t, "4-1000", accs[2].Code)
}

func referenceAccount(t *testing.T, store *memory.Store, a ledger.Account) {
	t.Helper()
	other := ledger.Account{ID: uuid.New(), Code: "1-1000", Name: "Cash", Category: ledger.CategoryAsset, NormalBalance: ledger.SideDebit, Control: ledger.ControlNone}
	store.SeedAccount(other)
	amt := func(minor int64) money.Amount {
		v, err := money.NewAmountFromMinorUnits("IDR", minor)
		require.NoError(t, err)
		return v
	}
	trx := ledger.Transaction{
		ID:          uuid.New(),
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "salaries",
		Kind:        ledger.KindGeneral,
		Entries: []ledger.JournalEntry{
			{ID: uuid.New(), AccountID: a.ID, Debit: amt(700), Credit: amt(0)},
			{ID: uuid.New(), AccountID: other.ID, Debit: amt(0), Credit: amt(700)},
		},
	}
	_, err := store.CreateTransaction(context.Background(), trx, nil)
	require.NoError(t, err)
}

func TestUpdate_IdentityFreezesOnceReferenced(t *testing.T) {
	store := memory.New()
	svc := account.New(store, store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validAccount())
	require.NoError(t, err)

	// Before any entry exists, identity may change.
	created.Code = "6-9100"
	updated, err := svc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "6-9100", updated.Code)

	referenceAccount(t, store, updated)

	// Identity is now frozen.
	frozen := updated
	frozen.Category = ledger.CategoryAsset
	_, err = svc.Update(ctx, frozen)
	assert.ErrorIs(t, err, errs.ErrImmutable)

	// A rename alone is still allowed.
	renamed := updated
	renamed.Name = "Travel & Lodging"
	out, err := svc.Update(ctx, renamed)
	require.NoError(t, err)
	assert.Equal(t, "Travel & Lodging", out.Name)
}

func TestDelete_Guards(t *testing.T) {
	store := memory.New()
	svc := account.New(store, store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validAccount())
	require.NoError(t, err)

	referenceAccount(t, store, created)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), errs.ErrAccountInUse)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), errs.ErrNotFound)
}
