package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
	"github.com/kasbuku/kasbuku/internal/ledger"
)

func testAccount(code string) ledger.Account {
	return ledger.Account{
		ID:            uuid.New(),
		Code:          code,
		Name:          "Cash",
		Category:      ledger.CategoryAsset,
		NormalBalance: ledger.SideDebit,
		Control:       ledger.ControlNone,
	}
}

// The store itself rejects duplicate codes under its write lock, so two
// racing creates cannot both land even though the service's uniqueness check
// reads before writing.
func TestCreateAccount_DuplicateCodeConflicts(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.CreateAccount(ctx, testAccount("1-1000"))
	require.NoError(t, err)

	_, err = store.CreateAccount(ctx, testAccount("1-1000"))
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestUpdateAccount_DuplicateCodeConflicts(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreateAccount(ctx, testAccount("1-1000"))
	require.NoError(t, err)
	second, err := store.CreateAccount(ctx, testAccount("1-1100"))
	require.NoError(t, err)

	second.Code = first.Code
	_, err = store.UpdateAccount(ctx, second)
	assert.ErrorIs(t, err, errs.ErrConflict)

	// Updating an account onto its own code is not a conflict.
	_, err = store.UpdateAccount(ctx, first)
	assert.NoError(t, err)
}

func TestCreateProduct_DuplicateCodeConflicts(t *testing.T) {
	store := New()
	ctx := context.Background()

	p := ledger.Product{ID: uuid.New(), Code: "ITM-001", Name: "Standard Feed", AvgCost: ledger.ZeroAmount("IDR")}
	_, err := store.CreateProduct(ctx, p)
	require.NoError(t, err)

	dup := ledger.Product{ID: uuid.New(), Code: "ITM-001", Name: "Premium Feed", AvgCost: ledger.ZeroAmount("IDR")}
	_, err = store.CreateProduct(ctx, dup)
	assert.ErrorIs(t, err, errs.ErrConflict)
}
