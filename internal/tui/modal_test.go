package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewModal(t *testing.T) {
	tests := []struct {
		name        string
		opts        []ModalOption
		label       string
		destructive bool
	}{
		{name: "defaults", label: "Confirm"},
		{name: "custom label", opts: []ModalOption{WithConfirmLabel("Delete")}, label: "Delete"},
		{name: "destructive", opts: []ModalOption{WithConfirmLabel("Delete"), Destructive()}, label: "Delete", destructive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModal("Delete tasks", "Delete 2 tasks?", tt.opts...)

			assert.True(t, m.Visible())
			assert.True(t, m.ConfirmSelected(), "confirm starts selected")
			assert.Equal(t, tt.label, m.confirmLabel)
			assert.Equal(t, tt.destructive, m.destructive)

			out := m.Overlay(strings.Repeat(" ", 80), 80, 24)
			assert.Contains(t, out, tt.label)
			assert.Contains(t, out, "Delete 2 tasks?")
		})
	}
}

func TestModal_hidden_returns_background(t *testing.T) {
	var m Modal
	assert.Equal(t, "board", m.Overlay("board", 80, 24))
}

func TestModal_ToggleSelection(t *testing.T) {
	m := NewModal("", "")

	m.ToggleSelection()
	assert.False(t, m.ConfirmSelected())

	m.ToggleSelection()
	assert.True(t, m.ConfirmSelected())
}
