package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/redis/go-redis/v9"
)

// Redis-backed stores. Records carry ExpiresAt in the payload and also set a
// native key TTL, so Redis usually evicts them on its own; the embedded
// timestamp is still checked on every read because a key written with a
// longer TTL by an older deploy must not resurrect an expired action.

const (
	pendingKeyPrefix      = "masroufy:pending:"
	conversationKeyPrefix = "masroufy:conversation:"
)

type RedisConfirmationStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisConfirmationStore(client *redis.Client) *RedisConfirmationStore {
	return &RedisConfirmationStore{client: client, now: time.Now}
}

func (s *RedisConfirmationStore) Create(ctx context.Context, userID int64, actionType models.ActionType, actionData map[string]interface{}, lang models.Language, ttl time.Duration) (string, error) {
	now := s.now()
	action := models.PendingAction{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActionType: actionType,
		ActionData: mergeData(actionData, nil),
		Language:   lang,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return "", fmt.Errorf("failed to encode pending action: %w", err)
	}
	if err := s.client.Set(ctx, pendingKeyPrefix+action.ID, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store pending action: %w", err)
	}
	return action.ID, nil
}

func (s *RedisConfirmationStore) Get(ctx context.Context, id string) (*models.PendingAction, error) {
	payload, err := s.client.Get(ctx, pendingKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending action: %w", err)
	}

	var action models.PendingAction
	if err := json.Unmarshal(payload, &action); err != nil {
		return nil, fmt.Errorf("failed to decode pending action: %w", err)
	}
	if action.Expired(s.now()) {
		return nil, nil
	}
	return &action, nil
}

func (s *RedisConfirmationStore) Update(ctx context.Context, id string, partial map[string]interface{}) error {
	action, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if action == nil {
		return nil
	}

	action.ActionData = mergeData(action.ActionData, partial)
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to encode pending action: %w", err)
	}

	remaining := action.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, pendingKeyPrefix+id, payload, remaining).Err(); err != nil {
		return fmt.Errorf("failed to update pending action: %w", err)
	}
	return nil
}

func (s *RedisConfirmationStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete pending action: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis: key TTLs do the sweeping.
func (s *RedisConfirmationStore) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}

type RedisConversationStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisConversationStore(client *redis.Client) *RedisConversationStore {
	return &RedisConversationStore{client: client, now: time.Now}
}

func (s *RedisConversationStore) Set(ctx context.Context, userID int64, stateType models.StateType, stateData map[string]interface{}, lang models.Language, ttl time.Duration) error {
	state := models.ConversationState{
		UserID:    userID,
		StateType: stateType,
		StateData: mergeData(stateData, nil),
		Language:  lang,
		ExpiresAt: s.now().Add(ttl),
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state: %w", err)
	}
	if err := s.client.Set(ctx, conversationKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store conversation state: %w", err)
	}
	return nil
}

func (s *RedisConversationStore) Get(ctx context.Context, userID int64) (*models.ConversationState, error) {
	payload, err := s.client.Get(ctx, conversationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation state: %w", err)
	}

	var state models.ConversationState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation state: %w", err)
	}
	if state.Expired(s.now()) {
		return nil, nil
	}
	return &state, nil
}

func (s *RedisConversationStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation state: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis: key TTLs do the sweeping.
func (s *RedisConversationStore) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}

func conversationKey(userID int64) string {
	return fmt.Sprintf("%s%d", conversationKeyPrefix, userID)
}
