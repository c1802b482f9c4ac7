package metrics

import (
	"context"
	"fmt"
	"slices"

	"github.com/colonyops/runway/internal/core/store"
)

// Summary is the dashboard view of the snapshot history.
type Summary struct {
	Latest  Snapshot   `json:"latest"`
	Runway  float64    `json:"runway_months"`
	Growth  float64    `json:"growth"`
	MRR     []float64  `json:"mrr"`
	History []Snapshot `json:"history"`
}

// Empty reports whether there were no snapshots to summarise.
func (s Summary) Empty() bool {
	return len(s.History) == 0
}

// Service reads and records snapshots.
type Service struct {
	store store.Store[Snapshot]
}

func NewService(s store.Store[Snapshot]) *Service {
	return &Service{store: s}
}

// Snapshots returns every snapshot, oldest month first.
func (s *Service) Snapshots(ctx context.Context) ([]Snapshot, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	slices.SortStableFunc(items, func(a, b Snapshot) int {
		return a.Month.Compare(b.Month)
	})
	return items, nil
}

// Record stores a snapshot.
func (s *Service) Record(ctx context.Context, snap Snapshot) error {
	if err := s.store.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// Summary loads the history and computes the dashboard figures.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	history, err := s.Snapshots(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(history), nil
}

// Summarize computes the dashboard figures from history, which must be
// ordered oldest first.
func Summarize(history []Snapshot) Summary {
	sum := Summary{History: history}
	if len(history) == 0 {
		return sum
	}

	sum.Latest = history[len(history)-1]
	sum.Runway = Runway(sum.Latest)
	if len(history) > 1 {
		sum.Growth = Growth(history[len(history)-2], sum.Latest)
	}
	sum.MRR = make([]float64, len(history))
	for i, snap := range history {
		sum.MRR[i] = snap.MRR
	}
	return sum
}
