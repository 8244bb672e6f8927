package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/masroufy/masroufy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, r *MemoryFinance, userID int64, id string, balance float64) {
	t.Helper()
	require.NoError(t, r.CreateAccount(context.Background(), &models.Account{
		ID:      id,
		UserID:  userID,
		Name:    id,
		Type:    models.AccountCash,
		Balance: balance,
	}))
}

func TestMemoryFinanceLogTransactionAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryFinance()
	seedAccount(t, r, 42, "a1", 200)

	require.NoError(t, r.LogTransaction(ctx, &models.Transaction{
		ID: "t1", UserID: 42, AccountID: "a1",
		Kind: models.TransactionExpense, Amount: 50,
	}))
	require.NoError(t, r.LogTransaction(ctx, &models.Transaction{
		ID: "t2", UserID: 42, AccountID: "a1",
		Kind: models.TransactionIncome, Amount: 30,
	}))

	accounts, err := r.ListAccounts(ctx, 42)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, 180.0, accounts[0].Balance)
}

func TestMemoryFinanceOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryFinance()
	seedAccount(t, r, 42, "a1", 200)

	err := r.LogTransaction(ctx, &models.Transaction{
		ID: "t1", UserID: 777, AccountID: "a1",
		Kind: models.TransactionExpense, Amount: 50,
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.ErrorIs(t, r.RenameAccount(ctx, 777, "a1", "stolen"), ErrAccountNotFound)
	assert.ErrorIs(t, r.DeleteAccount(ctx, 777, "a1"), ErrAccountNotFound)

	accounts, err := r.ListAccounts(ctx, 777)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestMemoryFinanceDeleteCascadesTransactions(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryFinance()
	seedAccount(t, r, 42, "a1", 200)

	require.NoError(t, r.LogTransaction(ctx, &models.Transaction{
		ID: "t1", UserID: 42, AccountID: "a1",
		Kind: models.TransactionExpense, Amount: 50,
	}))

	require.NoError(t, r.DeleteAccount(ctx, 42, "a1"))
	assert.Empty(t, r.transactions)

	accounts, err := r.ListAccounts(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrAccountNotFound))
	assert.False(t, IsTransient(errors.New("duplicate key value violates unique constraint")))

	assert.True(t, IsTransient(ErrTransient))
	assert.True(t, IsTransient(fmt.Errorf("saving failed: %w", ErrTransient)))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
}
