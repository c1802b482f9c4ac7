package app

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/store"
)

// DemoData is the sample workspace used by --demo and the seed command.
type DemoData struct {
	Customers []crm.Customer
	Deals     []crm.Deal
	Tasks     []crm.Task
	Insights  []crm.Insight
	Snapshots []metrics.Snapshot
}

// Demo builds the sample workspace relative to now.
func Demo(now time.Time) DemoData {
	day := 24 * time.Hour
	customer := func(id, name, company, email string, status crm.CustomerStatus, value float64, age int) crm.Customer {
		at := now.Add(-time.Duration(age) * day)
		return crm.Customer{ID: id, Name: name, Company: company, Email: email, Status: status, Value: value, CreatedAt: at, UpdatedAt: at}
	}
	deal := func(id, title, customerID string, stage crm.Stage, value float64) crm.Deal {
		return crm.Deal{ID: id, Title: title, CustomerID: customerID, Stage: stage, Value: value, Probability: crm.DefaultProbability(stage), UpdatedAt: now}
	}
	task := func(id, title, dealID string, dueIn int, done bool) crm.Task {
		return crm.Task{ID: id, Title: title, DealID: dealID, Completed: done, DueAt: now.Add(time.Duration(dueIn) * day), UpdatedAt: now}
	}

	d := DemoData{
		Customers: []crm.Customer{
			customer("c-acme", "Ana Ruiz", "Acme Dental", "ana@acmedental.example", crm.CustomerActive, 24_000, 120),
			customer("c-globex", "Sam Patel", "Globex Logistics", "sam@globex.example", crm.CustomerActive, 48_000, 90),
			customer("c-initech", "Lee Chen", "Initech", "lee@initech.example", crm.CustomerLead, 0, 30),
			customer("c-umbrella", "Jo Park", "Umbrella Health", "jo@umbrella.example", crm.CustomerLead, 0, 14),
			customer("c-hooli", "Kim Osei", "Hooli", "kim@hooli.example", crm.CustomerChurned, 12_000, 200),
			customer("c-vandelay", "Art Vandelay", "Vandelay Imports", "art@vandelay.example", crm.CustomerLead, 0, 3),
		},
		Deals: []crm.Deal{
			deal("d-acme-expansion", "Acme expansion to 3 clinics", "c-acme", crm.StageNegotiation, 36_000),
			deal("d-globex-renewal", "Globex annual renewal", "c-globex", crm.StageProposal, 48_000),
			deal("d-initech-pilot", "Initech pilot", "c-initech", crm.StageQualified, 15_000),
			deal("d-umbrella-intro", "Umbrella Health intro", "c-umbrella", crm.StageLead, 20_000),
			deal("d-vandelay", "Vandelay import tracking", "c-vandelay", crm.StageLead, 8_000),
			deal("d-hooli-winback", "Hooli win-back", "c-hooli", crm.StageLost, 12_000),
			deal("d-acme-onboarding", "Acme onboarding package", "c-acme", crm.StageWon, 6_000),
		},
		Tasks: []crm.Task{
			task("t-acme-contract", "Send Acme redlined contract", "d-acme-expansion", 1, false),
			task("t-globex-deck", "Prepare Globex renewal deck", "d-globex-renewal", -2, false),
			task("t-initech-demo", "Book Initech technical demo", "d-initech-pilot", 4, false),
			task("t-umbrella-intro", "Intro call with Umbrella", "d-umbrella-intro", 7, false),
			task("t-investor-update", "Monthly investor update", "", -1, false),
			task("t-acme-kickoff", "Acme onboarding kickoff", "d-acme-onboarding", -10, true),
		},
		Insights: []crm.Insight{
			{ID: "i-globex-stall", Kind: crm.InsightRisk, Message: "Globex renewal has an overdue deck; renewal is 28% of pipeline value.", CreatedAt: now.Add(-day)},
			{ID: "i-acme-upsell", Kind: crm.InsightOpportunity, Message: "Acme is in negotiation for expansion; propose a multi-year discount to close this month.", CreatedAt: now.Add(-2 * day)},
			{ID: "i-leads", Kind: crm.InsightInfo, Message: "Two new leads arrived this week from the dental vertical.", CreatedAt: now.Add(-3 * day)},
		},
	}

	// Twelve months of history ending last month: MRR grows, burn creeps up
	// and cash declines.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -12, 0)
	cash := 900_000.0
	for i := range 12 {
		month := start.AddDate(0, i, 0)
		mrr := 6_000 + float64(i)*1_100
		burn := 52_000 + float64(i)*800
		cash -= burn - mrr
		d.Snapshots = append(d.Snapshots, metrics.Snapshot{
			ID:        month.Format("2006-01"),
			Month:     month,
			MRR:       mrr,
			Burn:      burn,
			Cash:      cash,
			Customers: 3 + i/2,
		})
	}

	return d
}

// Seed replaces the contents of every collection with demo data.
func (a *App) Seed(ctx context.Context) error {
	d := Demo(time.Now())

	if err := store.ReplaceAll(ctx, a.stores.Customers, d.Customers); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if err := store.ReplaceAll(ctx, a.stores.Deals, d.Deals); err != nil {
		return fmt.Errorf("seed deals: %w", err)
	}
	if err := store.ReplaceAll(ctx, a.stores.Tasks, d.Tasks); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	if err := store.ReplaceAll(ctx, a.stores.Insights, d.Insights); err != nil {
		return fmt.Errorf("seed insights: %w", err)
	}
	if err := store.ReplaceAll(ctx, a.snapshots, d.Snapshots); err != nil {
		return fmt.Errorf("seed snapshots: %w", err)
	}
	return nil
}
