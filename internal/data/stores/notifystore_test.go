package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/notify"
)

func TestNotifyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and list", func(t *testing.T) {
		s := NewNotifyStore(openTestDB(t))

		id, err := s.Save(ctx, notify.Notification{
			Level:     notify.LevelError,
			Source:    "deals",
			Message:   "could not update d1: network error",
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
		assert.Positive(t, id)

		items, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notify.LevelError, items[0].Level)
		assert.Equal(t, "deals", items[0].Source)
		assert.Equal(t, "could not update d1: network error", items[0].Message)
		assert.Equal(t, id, items[0].ID)
	})

	t.Run("newest first, count and clear", func(t *testing.T) {
		s := NewNotifyStore(openTestDB(t))

		base := time.Now()
		for i, msg := range []string{"first", "second", "third"} {
			_, err := s.Save(ctx, notify.Notification{
				Level:     notify.LevelInfo,
				Message:   msg,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}

		items, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "third", items[0].Message)
		assert.Equal(t, "first", items[2].Message)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		require.NoError(t, s.Clear(ctx))
		count, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
