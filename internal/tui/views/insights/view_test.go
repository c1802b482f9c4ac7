package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/crm"
)

func TestView_SetInsights_hides_dismissed(t *testing.T) {
	v := New()
	v.SetInsights([]crm.Insight{
		{ID: "a", Kind: crm.InsightRisk, Message: "churn risk"},
		{ID: "b", Kind: crm.InsightInfo, Message: "old news", Dismissed: true},
		{ID: "c", Kind: crm.InsightOpportunity, Message: "upsell"},
	})

	assert.Equal(t, 2, v.Len())
	out := v.View()
	assert.Contains(t, out, "churn risk")
	assert.Contains(t, out, "upsell")
	assert.NotContains(t, out, "old news")
}

func TestView_cursor_follows_selection(t *testing.T) {
	items := []crm.Insight{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	v := New()
	v.SetInsights(items)
	v.Down()
	v.Down()

	items[0].Dismissed = true
	v.SetInsights(items)

	got, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)

	v.SetInsights(nil)
	_, ok = v.Selected()
	assert.False(t, ok)
	assert.Contains(t, v.View(), "No insights")
}
