package crm

import "github.com/colonyops/runway/internal/core/optimistic"

// Patchable fields. Each is the unit of snapshot and rollback for optimistic
// updates.
var (
	DealStage = optimistic.Field[Deal, Stage]{
		Name: "stage",
		Get:  func(d Deal) Stage { return d.Stage },
		Set:  func(d *Deal, v Stage) { d.Stage = v },
	}
	DealValue = optimistic.Field[Deal, float64]{
		Name: "value",
		Get:  func(d Deal) float64 { return d.Value },
		Set:  func(d *Deal, v float64) { d.Value = v },
	}
	DealProbability = optimistic.Field[Deal, int]{
		Name: "probability",
		Get:  func(d Deal) int { return d.Probability },
		Set:  func(d *Deal, v int) { d.Probability = v },
	}
	TaskCompleted = optimistic.Field[Task, bool]{
		Name: "completed",
		Get:  func(t Task) bool { return t.Completed },
		Set:  func(t *Task, v bool) { t.Completed = v },
	}
	InsightDismissed = optimistic.Field[Insight, bool]{
		Name: "dismissed",
		Get:  func(i Insight) bool { return i.Dismissed },
		Set:  func(i *Insight, v bool) { i.Dismissed = v },
	}
	CustomerStatusField = optimistic.Field[Customer, CustomerStatus]{
		Name: "status",
		Get:  func(c Customer) CustomerStatus { return c.Status },
		Set:  func(c *Customer, v CustomerStatus) { c.Status = v },
	}
)

// DefaultProbability is the close probability a deal takes on when moved
// into a stage.
func DefaultProbability(s Stage) int {
	switch s {
	case StageLead:
		return 10
	case StageQualified:
		return 25
	case StageProposal:
		return 50
	case StageNegotiation:
		return 75
	case StageWon:
		return 100
	default:
		return 0
	}
}

// MoveDeal builds the patch for moving a deal to stage.
func MoveDeal(stage Stage) optimistic.Patch[Deal] {
	return optimistic.NewPatch(
		DealStage.To(stage),
		DealProbability.To(DefaultProbability(stage)),
	)
}

// SetTaskCompleted builds the patch for toggling a task.
func SetTaskCompleted(done bool) optimistic.Patch[Task] {
	return optimistic.NewPatch(TaskCompleted.To(done))
}

// DismissInsight builds the patch for dismissing an insight.
func DismissInsight() optimistic.Patch[Insight] {
	return optimistic.NewPatch(InsightDismissed.To(true))
}
