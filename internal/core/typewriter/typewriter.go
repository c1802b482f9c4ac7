// Package typewriter reveals text one rune at a time on a timer.
//
// A Typewriter is a small state machine: Idle -> Typing -> Done, with
// Typing -> Idle only through Cancel. It holds no timer of its own; callers
// schedule the delay returned by Advance (tea.Tick in the TUI, a time.Timer
// in Run). Every Start and Cancel bumps the generation so a tick scheduled for
// an earlier run can be recognised and dropped.
package typewriter

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode"
)

// DefaultDelay is the per-rune delay used when none is configured.
const DefaultDelay = 18 * time.Millisecond

// State is the reveal state.
type State int

const (
	Idle State = iota
	Typing
	Done
)

func (s State) String() string {
	switch s {
	case Typing:
		return "typing"
	case Done:
		return "done"
	default:
		return "idle"
	}
}

// Typewriter reveals a monotonically growing prefix of a string. It is not
// safe for concurrent use.
type Typewriter struct {
	base  time.Duration
	text  []rune
	pos   int
	state State
	gen   uint64
}

// New creates a typewriter with the given per-rune delay.
func New(base time.Duration) *Typewriter {
	if base <= 0 {
		base = DefaultDelay
	}
	return &Typewriter{base: base}
}

// Start begins revealing text from the beginning and returns the new
// generation. Empty text goes straight to Done.
func (t *Typewriter) Start(text string) uint64 {
	t.gen++
	t.text = []rune(text)
	t.pos = 0
	t.state = Typing
	if len(t.text) == 0 {
		t.state = Done
	}
	return t.gen
}

// Advance reveals the next rune. It returns the delay to wait before the
// following call and false once the whole text is visible.
func (t *Typewriter) Advance() (time.Duration, bool) {
	if t.state != Typing {
		return 0, false
	}

	t.pos++
	if t.pos >= len(t.text) {
		t.pos = len(t.text)
		t.state = Done
		return 0, false
	}

	return DelayFor(t.text[t.pos-1], t.base), true
}

// Finish reveals the remaining text immediately.
func (t *Typewriter) Finish() {
	if t.state != Typing {
		return
	}
	t.pos = len(t.text)
	t.state = Done
}

// Cancel stops an in-progress reveal and returns to Idle. The prefix
// revealed so far is kept. Cancel on an Idle or Done typewriter only bumps
// the generation.
func (t *Typewriter) Cancel() {
	t.gen++
	if t.state == Typing {
		t.state = Idle
	}
}

// Prefix returns the revealed part of the text.
func (t *Typewriter) Prefix() string {
	return string(t.text[:t.pos])
}

// Text returns the full text being revealed.
func (t *Typewriter) Text() string {
	return string(t.text)
}

// Typing reports whether a reveal is in progress.
func (t *Typewriter) Typing() bool {
	return t.state == Typing
}

// State returns the current state.
func (t *Typewriter) State() State {
	return t.state
}

// Delay returns the base per-rune delay.
func (t *Typewriter) Delay() time.Duration {
	return t.base
}

// Generation identifies the current run.
func (t *Typewriter) Generation() uint64 {
	return t.gen
}

// Current reports whether gen is the generation of the current run.
func (t *Typewriter) Current(gen uint64) bool {
	return gen == t.gen
}

// DelayFor returns the pause after revealing r. Whitespace goes by at a
// quarter of the base delay and punctuation at half.
func DelayFor(r rune, base time.Duration) time.Duration {
	switch {
	case unicode.IsSpace(r):
		return max(base/4, time.Millisecond)
	case unicode.IsPunct(r):
		return max(base/2, time.Millisecond)
	default:
		return base
	}
}

// Run reveals text on a timer, calling emit with each new prefix. It returns
// ctx.Err() if ctx is cancelled before the text is complete.
func Run(ctx context.Context, text string, base time.Duration, emit func(prefix string)) error {
	tw := New(base)
	tw.Start(text)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			tw.Cancel()
			return ctx.Err()
		case <-timer.C:
			delay, more := tw.Advance()
			emit(tw.Prefix())
			if !more {
				return nil
			}
			timer.Reset(delay)
		}
	}
}

// Writer returns an emit function for Run that writes only the newly
// revealed suffix to w.
func Writer(w io.StringWriter) func(string) {
	var written int
	return func(prefix string) {
		if len(prefix) <= written {
			return
		}
		_, _ = w.WriteString(prefix[written:])
		written = len(prefix)
	}
}

// Lines counts the lines in the revealed prefix; views use it to keep the
// cursor line in sight.
func (t *Typewriter) Lines() int {
	if t.pos == 0 {
		return 0
	}
	return strings.Count(t.Prefix(), "\n") + 1
}
