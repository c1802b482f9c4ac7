package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_Reset_dedupes_keys(t *testing.T) {
	c := NewCollection(dealID, []deal{
		{ID: "a", Stage: "Lead"},
		{ID: "b", Stage: "Lead"},
		{ID: "a", Stage: "Won"},
	})

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Won", got.Stage)
}

func TestCollection_Items_returns_copy(t *testing.T) {
	c := NewCollection(dealID, []deal{{ID: "a", Stage: "Lead"}})

	items := c.Items()
	items[0].Stage = "Won"

	got, _ := c.Get("a")
	assert.Equal(t, "Lead", got.Stage)
}

func TestCollection_Upsert(t *testing.T) {
	c := NewCollection(dealID, []deal{{ID: "a"}})

	c.Upsert(deal{ID: "b", Stage: "Lead"})
	c.Upsert(deal{ID: "a", Stage: "Won"})

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	got, _ := c.Get("a")
	assert.Equal(t, "Won", got.Stage)
}

func TestCollection_Remove_and_Insert(t *testing.T) {
	c := NewCollection(dealID, []deal{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	item, idx, ok := c.Remove("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"a", "c"}, c.Keys())
	assert.False(t, c.Has("b"))

	c.Insert(idx, item)
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())

	_, _, ok = c.Remove("zzz")
	assert.False(t, ok)
}

func TestCollection_Insert_clamps_and_replaces(t *testing.T) {
	c := NewCollection(dealID, []deal{{ID: "a"}})

	c.Insert(99, deal{ID: "z"})
	c.Insert(-3, deal{ID: "first"})
	c.Insert(0, deal{ID: "a", Stage: "Won"})

	assert.Equal(t, []string{"first", "a", "z"}, c.Keys())
	got, _ := c.Get("a")
	assert.Equal(t, "Won", got.Stage)
}

func TestCollection_Update(t *testing.T) {
	c := NewCollection(dealID, []deal{{ID: "a"}})

	ok := c.Update("a", func(d *deal) { d.Value = 7 })
	assert.True(t, ok)
	got, _ := c.Get("a")
	assert.Equal(t, 7, got.Value)

	assert.False(t, c.Update("missing", func(*deal) { t.Fatal("must not be called") }))
}
