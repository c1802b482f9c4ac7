package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_Next_Prev(t *testing.T) {
	tests := []struct {
		stage  Stage
		next   Stage
		nextOK bool
		prev   Stage
		prevOK bool
	}{
		{StageLead, StageQualified, true, StageLead, false},
		{StageProposal, StageNegotiation, true, StageQualified, true},
		{StageLost, StageLost, false, StageWon, true},
		{Stage("bogus"), Stage("bogus"), false, Stage("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			next, ok := tt.stage.Next()
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.nextOK, ok)

			prev, ok := tt.stage.Prev()
			assert.Equal(t, tt.prev, prev)
			assert.Equal(t, tt.prevOK, ok)
		})
	}
}

func TestParseStage(t *testing.T) {
	st, err := ParseStage(" Qualified ")
	require.NoError(t, err)
	assert.Equal(t, StageQualified, st)
	assert.Equal(t, "Qualified", st.Title())

	_, err = ParseStage("closing")
	assert.Error(t, err)
}

func TestParseCustomerStatus(t *testing.T) {
	st, err := ParseCustomerStatus("")
	require.NoError(t, err)
	assert.Equal(t, CustomerLead, st)

	st, err = ParseCustomerStatus("ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, CustomerActive, st)

	_, err = ParseCustomerStatus("vip")
	assert.Error(t, err)
}

func TestTask_Overdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Task{DueAt: now.Add(-time.Hour)}.Overdue(now))
	assert.False(t, Task{DueAt: now.Add(-time.Hour), Completed: true}.Overdue(now))
	assert.False(t, Task{DueAt: now.Add(time.Hour)}.Overdue(now))
	assert.False(t, Task{}.Overdue(now), "tasks without a due date are never overdue")
}

func TestMoveDeal(t *testing.T) {
	d := MoveDeal(StageNegotiation).ApplyTo(Deal{ID: "d1", Stage: StageLead, Probability: 10, Value: 1000})

	assert.Equal(t, StageNegotiation, d.Stage)
	assert.Equal(t, 75, d.Probability)
	assert.InDelta(t, 750.0, d.Weighted(), 0.001)
}

func TestPipeline(t *testing.T) {
	deals := []Deal{
		{ID: "1", Stage: StageLead, Value: 1000, Probability: 10},
		{ID: "2", Stage: StageLead, Value: 500, Probability: 10},
		{ID: "3", Stage: StageWon, Value: 2000, Probability: 100},
		{ID: "4", Stage: "archived", Value: 99},
	}

	summary := Pipeline(deals)
	require.Len(t, summary, len(Stages))

	assert.Equal(t, StageSummary{Stage: StageLead, Count: 2, Value: 1500, Weighted: 150}, summary[0])
	assert.Equal(t, 0, summary[1].Count)
	assert.Equal(t, 1, summary[4].Count)
	assert.InDelta(t, 150.0, OpenPipelineValue(summary), 0.001)

	board := Board(deals)
	require.Len(t, board, len(Stages))
	assert.Len(t, board[0], 2)
	assert.Equal(t, "1", board[0][0].ID)
	assert.Empty(t, board[2])
}
