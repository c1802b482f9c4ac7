package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/notify"
)

// tickUntilIdle feeds toast ticks through Update until the chain stops.
func tickUntilIdle(t *testing.T, m Model, limit int) (Model, int) {
	t.Helper()

	ticks := 0
	for {
		result, cmd := m.Update(toastTickMsg(time.Now()))
		m = result.(Model)
		ticks++
		if cmd == nil {
			return m, ticks
		}
		if ticks > limit {
			t.Fatalf("tick chain ran for >%d ticks without expiring", limit)
		}
	}
}

func TestToastUpdateLoop_tick_chain_expires_at_TTL(t *testing.T) {
	ctrl := NewToastController(0, 0)
	ctrl.Push(notify.Notification{Level: notify.LevelInfo, Message: "test"})
	ctrl.SetTicking(true)

	m := Model{toastController: ctrl}
	_, ticks := tickUntilIdle(t, m, 100)

	assert.Equal(t, int(defaultToastTTL/toastTickInterval), ticks)
	assert.False(t, ctrl.HasToasts())
	assert.False(t, ctrl.Ticking(), "chain end clears the ticking flag")
}

func TestToastUpdateLoop_ensureToastTick_starts_once(t *testing.T) {
	ctrl := NewToastController(0, 0)
	m := Model{toastController: ctrl}

	assert.Nil(t, m.ensureToastTick(), "no toasts, no timer")

	ctrl.Push(notify.Notification{Level: notify.LevelError, Message: "boom"})
	require.NotNil(t, m.ensureToastTick())
	assert.Nil(t, m.ensureToastTick(), "a running chain is not doubled")
}

func TestToastUpdateLoop_second_toast_extends_chain(t *testing.T) {
	ctrl := NewToastController(time.Second, 0)
	m := Model{toastController: ctrl}

	ctrl.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	require.NotNil(t, m.ensureToastTick())

	for range 5 {
		result, _ := m.Update(toastTickMsg(time.Now()))
		m = result.(Model)
	}

	ctrl.Push(notify.Notification{Level: notify.LevelInfo, Message: "second"})
	assert.Nil(t, m.ensureToastTick(), "existing chain keeps running")
	require.Len(t, ctrl.Toasts(), 2)

	_, ticks := tickUntilIdle(t, m, 100)

	// First toast expires after 10 ticks; the second was pushed at tick 5.
	assert.Equal(t, 10, ticks)
	assert.False(t, ctrl.HasToasts())
}

func TestToastUpdateLoop_restarts_after_chain_stops(t *testing.T) {
	ctrl := NewToastController(time.Second, 0)
	m := Model{toastController: ctrl}

	ctrl.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	require.NotNil(t, m.ensureToastTick())
	m, _ = tickUntilIdle(t, m, 100)
	require.False(t, ctrl.HasToasts())

	ctrl.Push(notify.Notification{Level: notify.LevelInfo, Message: "second"})
	assert.NotNil(t, m.ensureToastTick())
}
