package profiler

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/optimistic"
)

const namespace = "runway"

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	// Mutations counts optimistic updates by collection and outcome.
	Mutations *prometheus.CounterVec
	// Generations counts generation calls by action and status.
	Generations *prometheus.CounterVec
	// GenerationSeconds measures generation latency by action.
	GenerationSeconds *prometheus.HistogramVec
}

var _ optimistic.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimistic",
			Name:      "mutations_total",
			Help:      "Optimistic updates by collection and outcome.",
		}, []string{"collection", "outcome"}),
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "genai",
			Name:      "requests_total",
			Help:      "Generation requests by action and status.",
		}, []string{"action", "status"}),
		GenerationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "genai",
			Name:      "request_duration_seconds",
			Help:      "Generation latency by action.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
	}
}

// Observe implements optimistic.Observer.
func (m *Metrics) Observe(collection string, outcome optimistic.Outcome) {
	m.Mutations.WithLabelValues(collection, string(outcome)).Inc()
}

// Instrument wraps g so every call is counted and timed.
func (m *Metrics) Instrument(g genai.Generator) genai.Generator {
	return &instrumented{next: g, metrics: m}
}

type instrumented struct {
	next    genai.Generator
	metrics *Metrics
}

func (i *instrumented) Generate(ctx context.Context, req genai.Request) (genai.Result, error) {
	action := "unknown"
	if req != nil {
		action = string(req.Action())
	}

	start := time.Now()
	res, err := i.next.Generate(ctx, req)
	i.metrics.GenerationSeconds.WithLabelValues(action).Observe(time.Since(start).Seconds())
	i.metrics.Generations.WithLabelValues(action, status(err)).Inc()
	return res, err
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, genai.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, genai.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
