package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisConfirmationLifecycle(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	id, err := s.Create(ctx, 42, models.ActionCreateExpense, map[string]interface{}{
		"amount":   50.0,
		"category": "food",
	}, models.LanguageArabic, 5*time.Minute)
	require.NoError(t, err)

	action, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, int64(42), action.UserID)
	assert.Equal(t, models.ActionCreateExpense, action.ActionType)
	assert.Equal(t, 50.0, action.ActionData["amount"])
	assert.Equal(t, models.LanguageArabic, action.Language)

	require.NoError(t, s.Delete(ctx, id))

	action, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestRedisConfirmationNativeTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	id, err := s.Create(ctx, 42, models.ActionDeleteAccount, nil, models.LanguageEnglish, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	action, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestRedisConfirmationEmbeddedExpiryChecked(t *testing.T) {
	// A record whose payload says it is expired must not be served even if
	// the Redis key itself is still alive.
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	id, err := s.Create(ctx, 42, models.ActionCreateExpense, nil, models.LanguageEnglish, time.Minute)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	action, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestRedisConfirmationUpdateMerges(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	id, err := s.Create(ctx, 1, models.ActionCreateExpense, map[string]interface{}{
		"amount": 50.0,
	}, models.LanguageEnglish, 5*time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, id, map[string]interface{}{"category": "food"}))

	action, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, 50.0, action.ActionData["amount"])
	assert.Equal(t, "food", action.ActionData["category"])
}

func TestRedisConfirmationUpdateShrinksTTLWithClock(t *testing.T) {
	// Update rewrites the key with the remaining lifetime measured on the
	// store's clock, never extending past the original expiry.
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	base := time.Now()
	id, err := s.Create(ctx, 1, models.ActionCreateExpense, map[string]interface{}{
		"amount": 50.0,
	}, models.LanguageEnglish, time.Minute)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	require.NoError(t, s.Update(ctx, id, map[string]interface{}{"category": "food"}))

	// 40 seconds later the rewritten key (30s left) must be gone.
	mr.FastForward(40 * time.Second)

	action, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestRedisConfirmationUpdateMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisConfirmationStore(client)

	assert.NoError(t, s.Update(ctx, "never-existed", map[string]interface{}{"x": 1}))
	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestRedisConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisConversationStore(client)

	require.NoError(t, s.Set(ctx, 42, models.StateAwaitingAmount, map[string]interface{}{"kind": "expense"}, models.LanguageEnglish, 10*time.Minute))

	state, err := s.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.StateAwaitingAmount, state.StateType)
	assert.Equal(t, "expense", state.StateData["kind"])

	require.NoError(t, s.Set(ctx, 42, models.StateAwaitingCategory, map[string]interface{}{"amount": 50.0}, models.LanguageEnglish, 10*time.Minute))

	state, err = s.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.StateAwaitingCategory, state.StateType)
	assert.NotContains(t, state.StateData, "kind")

	require.NoError(t, s.Clear(ctx, 42))

	state, err = s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRedisConversationExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisConversationStore(client)

	require.NoError(t, s.Set(ctx, 42, models.StateAwaitingAccountName, nil, models.LanguageArabic, 10*time.Minute))

	mr.FastForward(11 * time.Minute)

	state, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, state)
}
