package models

import "time"

// ActionType discriminates what a confirmed PendingAction will execute.
type ActionType string

const (
	ActionCreateAccount ActionType = "create_account"
	ActionEditAccount   ActionType = "edit_account"
	ActionDeleteAccount ActionType = "delete_account"
	ActionCreateExpense ActionType = "create_expense"
	ActionCreateIncome  ActionType = "create_income"
)

// PendingAction is a time-boxed record of an operation awaiting explicit
// user confirmation via a button press. It is consumed exactly once: a
// successful confirm reads it, performs the mutation and deletes it; any
// later confirm or cancel against the same id must find nothing.
type PendingAction struct {
	ID         string                 `json:"id"`
	UserID     int64                  `json:"user_id"`
	ActionType ActionType             `json:"action_type"`
	ActionData map[string]interface{} `json:"action_data"`
	Language   Language               `json:"language"`
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
}

// Expired reports whether the action is past its expiry at the given instant.
func (p *PendingAction) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
