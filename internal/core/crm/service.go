package crm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/core/store"
	"github.com/colonyops/runway/internal/core/validate"
)

// Stores groups the collections the service reads and writes.
type Stores struct {
	Customers store.Store[Customer]
	Deals     store.Store[Deal]
	Tasks     store.Store[Task]
	Insights  store.Store[Insight]
}

// Service implements the CRM operations. Its Commit and Delete methods match
// the optimistic commit signatures so controllers can call them directly.
type Service struct {
	stores Stores
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(stores Stores, log zerolog.Logger) *Service {
	return &Service{
		stores: stores,
		log:    log.With().Str("cmp", "crm").Logger(),
		now:    time.Now,
	}
}

func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	return s.stores.Customers.List(ctx)
}

func (s *Service) Deals(ctx context.Context) ([]Deal, error) {
	return s.stores.Deals.List(ctx)
}

// DealsInStage returns the deals in stage; an empty stage returns all.
func (s *Service) DealsInStage(ctx context.Context, stage Stage) ([]Deal, error) {
	deals, err := s.stores.Deals.List(ctx)
	if err != nil || stage == "" {
		return deals, err
	}
	return slices.DeleteFunc(deals, func(d Deal) bool { return d.Stage != stage }), nil
}

func (s *Service) Deal(ctx context.Context, id string) (Deal, error) {
	return s.stores.Deals.Get(ctx, id)
}

func (s *Service) Customer(ctx context.Context, id string) (Customer, error) {
	return s.stores.Customers.Get(ctx, id)
}

func (s *Service) Tasks(ctx context.Context) ([]Task, error) {
	return s.stores.Tasks.List(ctx)
}

// Insights returns insights, leaving out dismissed ones unless all is set.
func (s *Service) Insights(ctx context.Context, all bool) ([]Insight, error) {
	items, err := s.stores.Insights.List(ctx)
	if err != nil || all {
		return items, err
	}
	return slices.DeleteFunc(items, func(i Insight) bool { return i.Dismissed }), nil
}

// CommitDeal applies patch to the stored deal and writes it back.
func (s *Service) CommitDeal(ctx context.Context, id string, patch optimistic.Patch[Deal]) error {
	return commit(ctx, s.stores.Deals, id, patch, func(d *Deal) { d.UpdatedAt = s.now() })
}

// CommitTask applies patch to the stored task and writes it back.
func (s *Service) CommitTask(ctx context.Context, id string, patch optimistic.Patch[Task]) error {
	return commit(ctx, s.stores.Tasks, id, patch, func(t *Task) { t.UpdatedAt = s.now() })
}

// CommitInsight applies patch to the stored insight and writes it back.
func (s *Service) CommitInsight(ctx context.Context, id string, patch optimistic.Patch[Insight]) error {
	return commit(ctx, s.stores.Insights, id, patch, nil)
}

// CommitCustomer applies patch to the stored customer and writes it back.
func (s *Service) CommitCustomer(ctx context.Context, id string, patch optimistic.Patch[Customer]) error {
	return commit(ctx, s.stores.Customers, id, patch, func(c *Customer) { c.UpdatedAt = s.now() })
}

func commit[T store.Entity](ctx context.Context, st store.Store[T], id string, patch optimistic.Patch[T], stamp func(*T)) error {
	current, err := st.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}

	next := patch.ApplyTo(current)
	if stamp != nil {
		stamp(&next)
	}

	if err := st.Upsert(ctx, next); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

// DeleteTasks deletes tasks by id. Ids that are already gone are ignored.
func (s *Service) DeleteTasks(ctx context.Context, ids []string) error {
	return deleteAll(ctx, s.stores.Tasks, ids)
}

// DeleteCustomers deletes customers by id. Ids that are already gone are
// ignored.
func (s *Service) DeleteCustomers(ctx context.Context, ids []string) error {
	return deleteAll(ctx, s.stores.Customers, ids)
}

func deleteAll[T store.Entity](ctx context.Context, st store.Store[T], ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := st.Delete(ctx, id); err != nil && !store.IsNotFound(err) {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// CustomerInput is the user-supplied part of a new customer.
type CustomerInput struct {
	Name    string  `json:"name" validate:"notblank,max=120"`
	Company string  `json:"company" validate:"max=120"`
	Email   string  `json:"email" validate:"omitempty,email"`
	Status  string  `json:"status" validate:"omitempty,oneof=lead active churned"`
	Value   float64 `json:"value" validate:"gte=0"`
}

// AddCustomer validates in and stores a new customer.
func (s *Service) AddCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	if err := validate.Struct(in); err != nil {
		return Customer{}, err
	}

	status, err := ParseCustomerStatus(in.Status)
	if err != nil {
		return Customer{}, err
	}

	now := s.now()
	c := Customer{
		ID:        NewID(),
		Name:      in.Name,
		Company:   in.Company,
		Email:     in.Email,
		Status:    status,
		Value:     in.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stores.Customers.Upsert(ctx, c); err != nil {
		return Customer{}, fmt.Errorf("save customer: %w", err)
	}

	s.log.Debug().Str("id", c.ID).Str("name", c.Name).Msg("customer added")
	return c, nil
}

// AddInsights stores freshly generated insights.
func (s *Service) AddInsights(ctx context.Context, kind InsightKind, messages []string) ([]Insight, error) {
	now := s.now()
	out := make([]Insight, 0, len(messages))
	for _, msg := range messages {
		in := Insight{ID: NewID(), Kind: kind, Message: msg, CreatedAt: now}
		if err := s.stores.Insights.Upsert(ctx, in); err != nil {
			return out, fmt.Errorf("save insight: %w", err)
		}
		out = append(out, in)
	}
	return out, nil
}
