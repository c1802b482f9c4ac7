package typewriter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTypewriter_reveals_monotonic_prefix(t *testing.T) {
	tw := New(10 * time.Millisecond)
	assert.Equal(t, Idle, tw.State())

	tw.Start("Hi, you")
	assert.Equal(t, Typing, tw.State())
	assert.Equal(t, "", tw.Prefix())

	var prefixes []string
	for {
		_, more := tw.Advance()
		prefixes = append(prefixes, tw.Prefix())
		if !more {
			break
		}
	}

	require.Len(t, prefixes, len("Hi, you"))
	for i := 1; i < len(prefixes); i++ {
		assert.True(t, strings.HasPrefix(prefixes[i], prefixes[i-1]), "prefix shrank at step %d", i)
	}
	assert.Equal(t, "Hi, you", tw.Prefix())
	assert.Equal(t, Done, tw.State())
	assert.False(t, tw.Typing())
}

func TestTypewriter_Advance_delays(t *testing.T) {
	tw := New(40 * time.Millisecond)
	tw.Start("a. b")

	d, _ := tw.Advance() // after 'a'
	assert.Equal(t, 40*time.Millisecond, d)
	d, _ = tw.Advance() // after '.'
	assert.Equal(t, 20*time.Millisecond, d)
	d, _ = tw.Advance() // after ' '
	assert.Equal(t, 10*time.Millisecond, d)
	_, more := tw.Advance()
	assert.False(t, more)
}

func TestTypewriter_Cancel(t *testing.T) {
	tw := New(time.Millisecond)
	gen := tw.Start("hello")
	tw.Advance()
	tw.Advance()

	tw.Cancel()

	assert.Equal(t, Idle, tw.State())
	assert.Equal(t, "he", tw.Prefix())
	assert.False(t, tw.Current(gen), "ticks from the cancelled run must be stale")

	_, more := tw.Advance()
	assert.False(t, more)
	assert.Equal(t, "he", tw.Prefix())
}

func TestTypewriter_Start_new_text_supersedes(t *testing.T) {
	tw := New(time.Millisecond)
	first := tw.Start("first")
	tw.Advance()

	second := tw.Start("second")

	assert.NotEqual(t, first, second)
	assert.True(t, tw.Current(second))
	assert.Equal(t, "", tw.Prefix())
	assert.Equal(t, "second", tw.Text())
}

func TestTypewriter_Start_empty_is_done(t *testing.T) {
	tw := New(time.Millisecond)
	tw.Start("")
	assert.Equal(t, Done, tw.State())
}

func TestTypewriter_Finish(t *testing.T) {
	tw := New(time.Millisecond)
	tw.Start("multi\nline")
	tw.Finish()

	assert.Equal(t, Done, tw.State())
	assert.Equal(t, "multi\nline", tw.Prefix())
	assert.Equal(t, 2, tw.Lines())
}

func TestTypewriter_unicode(t *testing.T) {
	tw := New(time.Millisecond)
	tw.Start("héllo")
	tw.Advance()
	tw.Advance()
	assert.Equal(t, "hé", tw.Prefix())
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	var sb strings.Builder
	err := Run(context.Background(), "done.", time.Millisecond, Writer(&sb))

	require.NoError(t, err)
	assert.Equal(t, "done.", sb.String())
}

func TestRun_cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var got string
	err := Run(ctx, strings.Repeat("x", 1000), 5*time.Millisecond, func(p string) {
		got = p
		if len(p) == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "xxx", got)
}
