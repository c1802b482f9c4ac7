package tui

import (
	"time"

	"github.com/colonyops/runway/internal/core/notify"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	// count is how many identical notifications this toast stands for.
	count int
}

func (t toast) same(n notify.Notification) bool {
	return t.notification.Level == n.Level &&
		t.notification.Source == n.Source &&
		t.notification.Message == n.Message
}

// ToastController manages the lifecycle of active toast notifications.
// It handles push, eviction, TTL countdown, and dismissal.
type ToastController struct {
	toasts  []toast
	ttl     time.Duration
	max     int
	ticking bool
}

// NewToastController creates a controller. Non-positive ttl or limit fall
// back to the defaults.
func NewToastController(ttl time.Duration, limit int) *ToastController {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	if limit <= 0 {
		limit = defaultMaxToasts
	}
	return &ToastController{ttl: ttl, max: limit}
}

// Push adds a notification to the toast stack. A repeat of a visible toast
// moves it to the bottom with its count bumped and TTL reset. If the stack
// exceeds the limit, the oldest toast is evicted.
func (c *ToastController) Push(n notify.Notification) {
	count := 1
	for i, t := range c.toasts {
		if t.same(n) {
			count = t.count + 1
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			break
		}
	}

	c.toasts = append(c.toasts, toast{
		notification: n,
		remaining:    c.ttl,
		count:        count,
	})
	if len(c.toasts) > c.max {
		c.toasts = c.toasts[len(c.toasts)-c.max:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest (bottom-most) toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// DismissAll removes all active toasts.
func (c *ToastController) DismissAll() {
	c.toasts = c.toasts[:0]
}

// HasToasts returns true if there are any active toasts.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the current active toast slice.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking returns whether the tick timer is currently running.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
