package models

import "time"

// StateType names what the next free-text message from a user should be
// interpreted as.
type StateType string

const (
	StateAwaitingAccountName StateType = "awaiting_account_name"
	StateAwaitingAmount      StateType = "awaiting_amount"
	StateAwaitingCategory    StateType = "awaiting_category"
	StateAwaitingNewBalance  StateType = "awaiting_new_balance"
	// StateAwaitingConfirmation marks a button prompt in flight. It only
	// anchors the pending action id for /cancel; free text while it is
	// set falls through to normal classification.
	StateAwaitingConfirmation StateType = "awaiting_confirmation"
)

// ConversationState is the single-slot, per-user record of an in-progress
// free-text flow. Setting a new state always overwrites the previous one;
// a single physical user sends messages serially, so last-writer-wins is
// safe.
type ConversationState struct {
	UserID    int64                  `json:"user_id"`
	StateType StateType              `json:"state_type"`
	StateData map[string]interface{} `json:"state_data"`
	Language  Language               `json:"language"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// Expired reports whether the state is past its expiry at the given instant.
func (s *ConversationState) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
