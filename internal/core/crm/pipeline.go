package crm

import (
	"context"
	"fmt"
)

// StageSummary aggregates the deals in one stage.
type StageSummary struct {
	Stage    Stage   `json:"stage"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	Weighted float64 `json:"weighted"`
}

// Pipeline summarises deals per stage, in board order. Every stage is
// present, including empty ones.
func Pipeline(deals []Deal) []StageSummary {
	out := make([]StageSummary, len(Stages))
	for i, st := range Stages {
		out[i].Stage = st
	}
	for _, d := range deals {
		i := d.Stage.index()
		if i < 0 {
			continue
		}
		out[i].Count++
		out[i].Value += d.Value
		out[i].Weighted += d.Weighted()
	}
	return out
}

// Pipeline loads deals and summarises them per stage.
func (s *Service) Pipeline(ctx context.Context) ([]StageSummary, error) {
	deals, err := s.stores.Deals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return Pipeline(deals), nil
}

// OpenPipelineValue is the probability-weighted value of deals that are
// still open.
func OpenPipelineValue(summary []StageSummary) float64 {
	var total float64
	for _, s := range summary {
		if !s.Stage.Closed() {
			total += s.Weighted
		}
	}
	return total
}

// Board groups deals into columns, one per stage in board order, preserving
// the relative order of deals within a stage.
func Board(deals []Deal) [][]Deal {
	cols := make([][]Deal, len(Stages))
	for _, d := range deals {
		if i := d.Stage.index(); i >= 0 {
			cols[i] = append(cols[i], d)
		}
	}
	return cols
}
