package repository

import (
	"context"
	"sync"

	"github.com/masroufy/masroufy/internal/models"
)

// MemoryFinance implements Finance with in-process maps for local
// development and tests.
type MemoryFinance struct {
	mu           sync.RWMutex
	accounts     map[string]*models.Account
	transactions map[string]*models.Transaction
}

func NewMemoryFinance() *MemoryFinance {
	return &MemoryFinance{
		accounts:     make(map[string]*models.Account),
		transactions: make(map[string]*models.Transaction),
	}
}

func (r *MemoryFinance) CreateAccount(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *MemoryFinance) RenameAccount(_ context.Context, userID int64, accountID, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, err := r.owned(userID, accountID)
	if err != nil {
		return err
	}
	account.Name = newName
	return nil
}

func (r *MemoryFinance) SetAccountBalance(_ context.Context, userID int64, accountID string, balance float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, err := r.owned(userID, accountID)
	if err != nil {
		return err
	}
	account.Balance = balance
	return nil
}

func (r *MemoryFinance) DeleteAccount(_ context.Context, userID int64, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(userID, accountID); err != nil {
		return err
	}
	delete(r.accounts, accountID)
	for id, tx := range r.transactions {
		if tx.AccountID == accountID {
			delete(r.transactions, id)
		}
	}
	return nil
}

func (r *MemoryFinance) ListAccounts(_ context.Context, userID int64) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []models.Account
	for _, account := range r.accounts {
		if account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (r *MemoryFinance) LogTransaction(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, err := r.owned(tx.UserID, tx.AccountID)
	if err != nil {
		return err
	}
	if tx.Kind == models.TransactionExpense {
		account.Balance -= tx.Amount
	} else {
		account.Balance += tx.Amount
	}

	copied := *tx
	r.transactions[tx.ID] = &copied
	return nil
}

func (r *MemoryFinance) owned(userID int64, accountID string) (*models.Account, error) {
	account, exists := r.accounts[accountID]
	if !exists || account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
