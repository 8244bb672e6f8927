// Package repository owns the persistent accounts/transactions records. The
// orchestrator core only sees the Finance interface; the schema and the
// balance math live here.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/masroufy/masroufy/internal/models"
)

// ErrAccountNotFound is returned when an operation references an account
// that does not exist or belongs to another user.
var ErrAccountNotFound = errors.New("account not found")

// ErrTransient marks failures worth retrying with the same confirm button:
// the pending action is kept alive when a mutation fails this way.
var ErrTransient = errors.New("transient storage failure")

// Finance is the mutation collaborator the orchestrator invokes after a
// confirmed action. Implementations must be safe for concurrent use across
// request handlers.
type Finance interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	RenameAccount(ctx context.Context, userID int64, accountID, newName string) error
	SetAccountBalance(ctx context.Context, userID int64, accountID string, balance float64) error
	DeleteAccount(ctx context.Context, userID int64, accountID string) error
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	LogTransaction(ctx context.Context, tx *models.Transaction) error
}

// IsTransient reports whether a mutation failure looks retryable. Dial
// errors, timeouts and dropped connections qualify; constraint violations
// and missing rows do not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
