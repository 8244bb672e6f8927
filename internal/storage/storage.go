package storage

import (
	"context"
	"time"

	"github.com/masroufy/masroufy/internal/models"
)

// ConfirmationStore holds pending actions awaiting a confirm/cancel button
// press. Get returns nil for absent and for expired records alike: callers
// must not distinguish, both mean "no longer usable". Delete on a missing id
// is a no-op. DeleteExpired is an advisory sweep; every Get re-checks expiry
// itself.
type ConfirmationStore interface {
	Create(ctx context.Context, userID int64, actionType models.ActionType, actionData map[string]interface{}, lang models.Language, ttl time.Duration) (string, error)
	Get(ctx context.Context, id string) (*models.PendingAction, error)
	Update(ctx context.Context, id string, partial map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// ConversationStore is the single-slot, per-user store of multi-step flow
// state. Set always overwrites; Get returns nil once expired.
type ConversationStore interface {
	Set(ctx context.Context, userID int64, stateType models.StateType, stateData map[string]interface{}, lang models.Language, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (*models.ConversationState, error)
	Clear(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int, error)
}

// mergeData applies partial on top of base without mutating either map.
func mergeData(base, partial map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(partial))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}
