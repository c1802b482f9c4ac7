// Package notify carries user-facing notifications: failed optimistic
// updates, generation errors and other events surfaced as toasts or on
// stderr.
package notify

import (
	"context"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID    int64 `json:"id"`
	Level Level `json:"level"`
	// Source names what raised it, typically a collection such as "deals".
	Source    string    `json:"source,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// String renders the notification as "source: message".
func (n Notification) String() string {
	if n.Source == "" {
		return n.Message
	}
	return n.Source + ": " + n.Message
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
