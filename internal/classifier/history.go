package classifier

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	defaultHistoryDepth = 6
	defaultHistoryTTL   = 30 * time.Minute
)

// HistoryBuffer keeps a rolling window of recent turns per user, sent as
// context with every NLU request. It is advisory: losing it only costs the
// model some context, so it lives in process memory and resets on restart.
type HistoryBuffer struct {
	mu      sync.Mutex
	depth   int
	ttl     time.Duration
	entries map[int64]*userHistory
	now     func() time.Time
}

type userHistory struct {
	messages []HistoryMessage
	touched  time.Time
}

func NewHistoryBuffer(depth int, ttl time.Duration) *HistoryBuffer {
	if depth <= 0 {
		depth = defaultHistoryDepth
	}
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &HistoryBuffer{
		depth:   depth,
		ttl:     ttl,
		entries: make(map[int64]*userHistory),
		now:     time.Now,
	}
}

// Recent returns a copy of the user's window, oldest first. A window idle
// past the TTL is dropped: stale context misleads more than it helps.
func (b *HistoryBuffer) Recent(userID int64) []HistoryMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, exists := b.entries[userID]
	if !exists {
		return nil
	}
	if b.now().Sub(entry.touched) > b.ttl {
		delete(b.entries, userID)
		return nil
	}

	recent := make([]HistoryMessage, len(entry.messages))
	copy(recent, entry.messages)
	return recent
}

// Append records one turn, evicting the oldest beyond the depth.
func (b *HistoryBuffer) Append(userID int64, role, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	entry, exists := b.entries[userID]
	if !exists || now.Sub(entry.touched) > b.ttl {
		entry = &userHistory{}
		b.entries[userID] = entry
	}

	entry.messages = append(entry.messages, HistoryMessage{Role: role, Content: content})
	if len(entry.messages) > b.depth {
		entry.messages = entry.messages[len(entry.messages)-b.depth:]
	}
	entry.touched = now
}

// Clear drops the user's window.
func (b *HistoryBuffer) Clear(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, userID)
}
