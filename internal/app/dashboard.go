package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/core/store"
)

// Dashboard is everything the TUI shows, loaded in one pass.
type Dashboard struct {
	Customers []crm.Customer
	Deals     []crm.Deal
	Tasks     []crm.Task
	Insights  []crm.Insight
	Summary   metrics.Summary
}

// LoadDashboard fetches every collection concurrently. The first error
// cancels the remaining loads.
func (a *App) LoadDashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if d.Customers, err = a.CRM.Customers(ctx); err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Deals, err = a.CRM.Deals(ctx); err != nil {
			return fmt.Errorf("load deals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Tasks, err = a.CRM.Tasks(ctx); err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Insights, err = a.CRM.Insights(ctx, false); err != nil {
			return fmt.Errorf("load insights: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Summary, err = a.Metrics.Summary(ctx); err != nil {
			return fmt.Errorf("load metrics: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// NewController builds an optimistic controller over items that reports
// failures on the notify bus and outcomes to telemetry.
func NewController[T any](a *App, collection string, id func(T) string, items []T, onChange func()) *optimistic.Controller[string, T] {
	return optimistic.New(id, items, optimistic.Options[string]{
		Name:      collection,
		OnFailure: a.Notify.Failures(collection),
		OnChange:  onChange,
		Observer:  a.Telemetry,
		Policy:    a.Config.Policy(),
	})
}

// InsightsRequest summarises the current pipeline for insight generation.
func (a *App) InsightsRequest(ctx context.Context, focus string) (genai.InsightsRequest, error) {
	var (
		deals []crm.Deal
		tasks []crm.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deals, err = a.CRM.Deals(gctx)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = a.CRM.Tasks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return genai.InsightsRequest{}, fmt.Errorf("summarise pipeline: %w", err)
	}

	return genai.InsightsRequest{
		Summary: genai.PipelineSummary(deals, tasks, time.Now()),
		Focus:   focus,
	}, nil
}

// GenerateInsights asks the generator for insights about the pipeline and
// stores them.
func (a *App) GenerateInsights(ctx context.Context, focus string) ([]crm.Insight, error) {
	req, err := a.InsightsRequest(ctx, focus)
	if err != nil {
		return nil, err
	}

	res, err := a.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.CRM.AddInsights(ctx, crm.InsightInfo, res.Insights)
}

// EmailRequest prefills a follow-up email for the deal, addressed to its
// customer when one is linked.
func (a *App) EmailRequest(ctx context.Context, deal crm.Deal) (genai.EmailRequest, error) {
	var customer crm.Customer
	if deal.CustomerID != "" {
		c, err := a.CRM.Customer(ctx, deal.CustomerID)
		switch {
		case err == nil:
			customer = c
		case !store.IsNotFound(err):
			return genai.EmailRequest{}, fmt.Errorf("load customer: %w", err)
		}
	}
	return genai.EmailForDeal(deal, customer), nil
}
