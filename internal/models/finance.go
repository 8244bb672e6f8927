package models

import "time"

// AccountType is the kind of account a user tracks.
type AccountType string

const (
	AccountCash   AccountType = "cash"
	AccountBank   AccountType = "bank"
	AccountWallet AccountType = "wallet"
	AccountCredit AccountType = "credit"
)

// Account is a user's money container as seen by the core. The persistent
// schema is owned by the repository collaborator.
type Account struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   float64     `json:"balance"`
	Currency  string      `json:"currency"`
	IsDefault bool        `json:"is_default"`
	CreatedAt time.Time   `json:"created_at"`
}

// TransactionKind distinguishes expenses from incomes.
type TransactionKind string

const (
	TransactionExpense TransactionKind = "expense"
	TransactionIncome  TransactionKind = "income"
)

// Transaction is a single logged expense or income.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	AccountID   string          `json:"account_id"`
	Kind        TransactionKind `json:"kind"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at"`
}
