// Package app wires configuration, storage, services and generation into the
// App that commands and the TUI consume.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/runway/internal/core/config"
	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/store"
	"github.com/colonyops/runway/internal/data/db"
	"github.com/colonyops/runway/internal/data/stores"
	"github.com/colonyops/runway/internal/data/supabase"
	"github.com/colonyops/runway/internal/profiler"
)

// Options are the runtime switches that do not live in the config file.
type Options struct {
	// Demo forces the in-memory backend seeded with sample data and the
	// offline generator.
	Demo bool
}

// App is the central entry point for all runway operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config    *config.Config
	CRM       *crm.Service
	Metrics   *metrics.Service
	Generator genai.Generator
	Notify    *notify.Bus

	// Telemetry records optimistic outcomes and generation calls.
	Telemetry *profiler.Metrics
	Registry  *prometheus.Registry

	backend   *stores.Backend
	stores    crm.Stores
	snapshots store.Store[metrics.Snapshot]
	demo      bool
}

// New opens the configured backend and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	kind := stores.Kind(cfg.Store.Backend)
	if opts.Demo {
		kind = stores.KindMemory
	}

	backend, err := stores.OpenBackend(stores.Options{
		Kind:    kind,
		DataDir: cfg.DataDir,
		SQLite: db.OpenOptions{
			MaxOpenConns: cfg.Store.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Store.SQLite.MaxIdleConns,
			BusyTimeout:  cfg.Store.SQLite.BusyTimeout,
		},
		Supabase: supabaseConfig(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", kind, err)
	}

	a := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		backend:  backend,
		demo:     opts.Demo,
	}
	a.Registry.MustRegister(collectors.NewGoCollector())
	a.Telemetry = profiler.NewMetrics(a.Registry)

	if err := a.openStores(); err != nil {
		_ = backend.Close()
		return nil, err
	}

	a.CRM = crm.NewService(a.stores, log.Logger)
	a.Metrics = metrics.NewService(a.snapshots)
	a.Notify = notify.NewBus(backend.Notifications())

	gen, err := a.newGenerator()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	a.Generator = a.Telemetry.Instrument(gen)

	if opts.Demo {
		if err := a.Seed(ctx); err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return a, nil
}

func (a *App) openStores() error {
	var err error
	if a.stores.Customers, err = stores.Open[crm.Customer](a.backend, crm.CollectionCustomers, "created_at.asc"); err != nil {
		return fmt.Errorf("open customers: %w", err)
	}
	if a.stores.Deals, err = stores.Open[crm.Deal](a.backend, crm.CollectionDeals, ""); err != nil {
		return fmt.Errorf("open deals: %w", err)
	}
	if a.stores.Tasks, err = stores.Open[crm.Task](a.backend, crm.CollectionTasks, ""); err != nil {
		return fmt.Errorf("open tasks: %w", err)
	}
	if a.stores.Insights, err = stores.Open[crm.Insight](a.backend, crm.CollectionInsights, "created_at.desc"); err != nil {
		return fmt.Errorf("open insights: %w", err)
	}
	if a.snapshots, err = stores.Open[metrics.Snapshot](a.backend, metrics.CollectionSnapshots, "month.asc"); err != nil {
		return fmt.Errorf("open snapshots: %w", err)
	}
	return nil
}

func supabaseConfig(cfg *config.Config) supabase.Config {
	s := cfg.Store.Supabase
	return supabase.Config{
		URL:       s.URL,
		Key:       cfg.SupabaseKey(),
		Schema:    s.Schema,
		Timeout:   s.Timeout,
		RateLimit: s.RateLimit,
		Burst:     s.Burst,
		Retries:   s.Retries,
	}
}

func (a *App) newGenerator() (genai.Generator, error) {
	backend := a.Config.GenAI.Backend
	if a.demo {
		backend = config.GenAIOffline
	}

	switch backend {
	case config.GenAIEdge:
		client := a.backend.Supabase()
		if client == nil {
			c, err := supabase.NewClient(supabaseConfig(a.Config))
			if err != nil {
				return nil, fmt.Errorf("edge generator: %w", err)
			}
			client = c
		}
		return genai.NewEdgeGenerator(client, a.Config.GenAI.Function), nil
	case config.GenAIOpenAI:
		prompts := make(map[genai.Action]string, len(a.Config.GenAI.Prompts))
		for name, p := range a.Config.GenAI.Prompts {
			action, err := genai.ParseAction(name)
			if err != nil {
				return nil, fmt.Errorf("genai.prompts: %w", err)
			}
			prompts[action] = p
		}
		return genai.NewOpenAIGenerator(genai.OpenAIConfig{
			APIKey:      a.Config.OpenAIKey(),
			BaseURL:     a.Config.GenAI.BaseURL,
			Model:       a.Config.GenAI.Model,
			Temperature: a.Config.GenAI.Temperature,
			Prompts:     prompts,
		})
	default:
		return genai.OfflineGenerator{}, nil
	}
}

// Backend reports the storage backend in use.
func (a *App) Backend() stores.Kind {
	return a.backend.Kind()
}

// Demo reports whether the app runs on seeded in-memory data.
func (a *App) Demo() bool {
	return a.demo
}

// Watch reports external edits to the data files. It returns a nil channel
// for backends that cannot be watched or when watching is disabled.
func (a *App) Watch(ctx context.Context) (<-chan store.Event, error) {
	if !a.Config.TUI.WatchEnabled() {
		return nil, nil
	}
	return a.backend.Watch(ctx)
}

// Close releases the backend.
func (a *App) Close() error {
	return a.backend.Close()
}
