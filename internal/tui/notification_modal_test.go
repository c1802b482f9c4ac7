package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/runway/internal/core/notify"
)

func TestNotificationModal_empty_history(t *testing.T) {
	m := NewNotificationModal(nil, 100, 40)

	out := m.Overlay("", 100, 40)
	assert.Contains(t, out, "No notifications")
	assert.Contains(t, out, "Notifications")
}

func TestNotificationModal_renders_history(t *testing.T) {
	history := []notify.Notification{
		{Level: notify.LevelError, Source: "deals", Message: "move failed", CreatedAt: time.Now()},
		{Level: notify.LevelInfo, Message: "loaded", CreatedAt: time.Now()},
	}

	m := NewNotificationModal(history, 120, 40)
	out := m.Overlay("", 120, 40)

	assert.Contains(t, out, "deals: move failed")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "1 error")
	assert.NotContains(t, out, "warning")
}

func TestNotificationModal_groups_by_day(t *testing.T) {
	now := time.Date(2026, time.March, 17, 12, 0, 0, 0, time.Local)
	history := []notify.Notification{
		{Level: notify.LevelWarning, Message: "slow", CreatedAt: now.Add(-time.Hour)},
		{Level: notify.LevelWarning, Message: "slower", CreatedAt: now.Add(-2 * time.Hour)},
		{Level: notify.LevelError, Message: "down", CreatedAt: now.AddDate(0, 0, -1)},
		{Level: notify.LevelInfo, Message: "seeded", CreatedAt: now.AddDate(0, 0, -3)},
	}

	m := NewNotificationModal(nil, 120, 40)
	m.now = func() time.Time { return now }
	m.SetHistory(history)

	out := m.Overlay("", 120, 40)
	assert.Equal(t, 1, strings.Count(out, "Today"))
	assert.Contains(t, out, "Yesterday")
	assert.Contains(t, out, "Sat Mar 14")
	assert.Contains(t, out, "2 warnings")
	assert.Contains(t, out, "1 error")
	assert.Less(t, strings.Index(out, "Today"), strings.Index(out, "Yesterday"))
}

func TestDayLabel(t *testing.T) {
	now := time.Date(2026, time.January, 2, 9, 0, 0, 0, time.Local)

	assert.Equal(t, "Today", dayLabel(now.Add(-time.Hour), now))
	assert.Equal(t, "Yesterday", dayLabel(now.Add(-24*time.Hour), now))
	assert.Equal(t, "Dec 31, 2025", dayLabel(now.AddDate(0, 0, -2), now))
}

func TestNotificationModal_SetHistory_clears(t *testing.T) {
	m := NewNotificationModal([]notify.Notification{{Message: "old"}}, 100, 40)

	m.SetHistory(nil)

	out := m.Overlay("", 100, 40)
	assert.NotContains(t, out, "old")
	assert.Contains(t, out, "No notifications")
}

func TestCalcNotificationModalWidth(t *testing.T) {
	tests := []struct {
		name string
		term int
		want int
	}{
		{name: "narrow clamps to terminal", term: 50, want: 46},
		{name: "minimum width", term: 80, want: 60},
		{name: "percentage", term: 200, want: 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calcNotificationModalWidth(tt.term))
		})
	}
}
