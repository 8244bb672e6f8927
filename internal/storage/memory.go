package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/masroufy/masroufy/internal/models"
)

// In-process map implementations. They back local development and tests;
// production uses the Redis or Postgres stores.

type MemoryConfirmationStore struct {
	mu      sync.RWMutex
	pending map[string]*models.PendingAction
	now     func() time.Time
}

func NewMemoryConfirmationStore() *MemoryConfirmationStore {
	return &MemoryConfirmationStore{
		pending: make(map[string]*models.PendingAction),
		now:     time.Now,
	}
}

func (s *MemoryConfirmationStore) Create(_ context.Context, userID int64, actionType models.ActionType, actionData map[string]interface{}, lang models.Language, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := uuid.NewString()
	s.pending[id] = &models.PendingAction{
		ID:         id,
		UserID:     userID,
		ActionType: actionType,
		ActionData: mergeData(actionData, nil),
		Language:   lang,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	return id, nil
}

func (s *MemoryConfirmationStore) Get(_ context.Context, id string) (*models.PendingAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	action, exists := s.pending[id]
	if !exists || action.Expired(s.now()) {
		return nil, nil
	}
	copied := *action
	copied.ActionData = mergeData(action.ActionData, nil)
	return &copied, nil
}

func (s *MemoryConfirmationStore) Update(_ context.Context, id string, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, exists := s.pending[id]
	if !exists || action.Expired(s.now()) {
		return nil
	}
	action.ActionData = mergeData(action.ActionData, partial)
	return nil
}

func (s *MemoryConfirmationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
	return nil
}

func (s *MemoryConfirmationStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, action := range s.pending {
		if action.Expired(now) {
			delete(s.pending, id)
			removed++
		}
	}
	return removed, nil
}

type MemoryConversationStore struct {
	mu     sync.RWMutex
	states map[int64]*models.ConversationState
	now    func() time.Time
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		states: make(map[int64]*models.ConversationState),
		now:    time.Now,
	}
}

func (s *MemoryConversationStore) Set(_ context.Context, userID int64, stateType models.StateType, stateData map[string]interface{}, lang models.Language, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = &models.ConversationState{
		UserID:    userID,
		StateType: stateType,
		StateData: mergeData(stateData, nil),
		Language:  lang,
		ExpiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryConversationStore) Get(_ context.Context, userID int64) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[userID]
	if !exists || state.Expired(s.now()) {
		return nil, nil
	}
	copied := *state
	copied.StateData = mergeData(state.StateData, nil)
	return &copied, nil
}

func (s *MemoryConversationStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
	return nil
}

func (s *MemoryConversationStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for userID, state := range s.states {
		if state.Expired(now) {
			delete(s.states, userID)
			removed++
		}
	}
	return removed, nil
}
