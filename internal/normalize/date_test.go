package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday 2024-06-12, mid-afternoon.
var testNow = time.Date(2024, 6, 12, 15, 30, 45, 0, time.UTC)

func TestParseRelativeDateAt(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"english today", "today", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"arabic today", "النهاردة", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"english yesterday", "yesterday", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"arabic yesterday", "امبارح", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"days ago english", "3 days ago", time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
		{"days ago arabic", "من 3 ايام", time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
		{"last week", "last week", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)},
		{"last month arabic", "الشهر الماضي", time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)},
		// Weekdays always resolve to the most recent past or current
		// occurrence, never a future date.
		{"same weekday means today", "wednesday", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"monday is two days back", "monday", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{"thursday is six days back", "thursday", time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)},
		{"arabic friday", "الجمعة", time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRelativeDateAt(tt.text, testNow)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseRelativeDateAtUnparseableReturnsNow(t *testing.T) {
	for _, text := range []string{"", "   ", "whenever", "lots of words but no date"} {
		got := ParseRelativeDateAt(text, testNow)
		assert.True(t, got.Equal(testNow), "input %q: got %v, want now", text, got)
	}
}

func TestParseRelativeDateUsesCurrentClock(t *testing.T) {
	before := time.Now()
	got := ParseRelativeDate("")
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
