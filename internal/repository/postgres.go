package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/masroufy/masroufy/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

// PostgresFinance implements Finance on top of Postgres.
type PostgresFinance struct {
	db *sql.DB
}

// NewPostgresFinance applies the embedded migrations and returns the adapter.
func NewPostgresFinance(db *sql.DB) (*PostgresFinance, error) {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return nil, fmt.Errorf("error executing migrations: %w", err)
	}
	return &PostgresFinance{db: db}, nil
}

func (r *PostgresFinance) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, account_type, balance, currency, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID, account.UserID, account.Name, string(account.Type),
		account.Balance, account.Currency, account.IsDefault, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

func (r *PostgresFinance) RenameAccount(ctx context.Context, userID int64, accountID, newName string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = $3 WHERE id = $1 AND user_id = $2`,
		accountID, userID, newName)
	if err != nil {
		return fmt.Errorf("error renaming account: %w", err)
	}
	return requireRow(result)
}

func (r *PostgresFinance) SetAccountBalance(ctx context.Context, userID int64, accountID string, balance float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = $3 WHERE id = $1 AND user_id = $2`,
		accountID, userID, balance)
	if err != nil {
		return fmt.Errorf("error updating account balance: %w", err)
	}
	return requireRow(result)
}

func (r *PostgresFinance) DeleteAccount(ctx context.Context, userID int64, accountID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = $1 AND user_id = $2`,
		accountID, userID)
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	return requireRow(result)
}

func (r *PostgresFinance) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, account_type, balance, currency, is_default, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Type,
			&account.Balance, &account.Currency, &account.IsDefault, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// LogTransaction inserts the transaction and adjusts the account balance in
// one database transaction.
func (r *PostgresFinance) LogTransaction(ctx context.Context, tx *models.Transaction) error {
	delta := tx.Amount
	if tx.Kind == models.TransactionExpense {
		delta = -delta
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer dbTx.Rollback()

	result, err := dbTx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance + $3 WHERE id = $1 AND user_id = $2`,
		tx.AccountID, tx.UserID, delta)
	if err != nil {
		return fmt.Errorf("error adjusting balance: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, kind, amount, category, description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.UserID, tx.AccountID, string(tx.Kind), tx.Amount,
		tx.Category, tx.Description, tx.OccurredAt, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
