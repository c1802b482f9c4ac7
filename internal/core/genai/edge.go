package genai

import (
	"context"
	"fmt"

	"github.com/colonyops/runway/internal/core/logging"
)

// DefaultEdgeFunction is the Edge Function that serves every action.
const DefaultEdgeFunction = "generate"

// Invoker calls a named hosted function with a JSON body.
type Invoker interface {
	Invoke(ctx context.Context, function string, body any, out any) error
}

type edgeEnvelope struct {
	Action  Action  `json:"action"`
	Payload Request `json:"payload"`
}

// EdgeGenerator sends requests to a hosted Edge Function as
// {"action": ..., "payload": ...} and expects a Result-shaped reply.
type EdgeGenerator struct {
	invoker  Invoker
	function string
}

func NewEdgeGenerator(invoker Invoker, function string) *EdgeGenerator {
	if function == "" {
		function = DefaultEdgeFunction
	}
	return &EdgeGenerator{invoker: invoker, function: function}
}

func (g *EdgeGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	log := logging.Component("genai").With().
		Str("backend", "edge").
		Str("action", string(req.Action())).
		Logger()
	log.Debug().Str("function", g.function).Msg("invoking edge function")

	var res Result
	if err := g.invoker.Invoke(ctx, g.function, edgeEnvelope{Action: req.Action(), Payload: req}, &res); err != nil {
		return Result{}, fmt.Errorf("generate %s: %w", req.Action(), err)
	}

	if res.Action == "" {
		res.Action = req.Action()
	}
	if res.Action != req.Action() {
		return Result{}, fmt.Errorf("%w: asked for %s, got %s", ErrInvalidResponse, req.Action(), res.Action)
	}
	if err := res.Validate(); err != nil {
		log.Warn().Err(err).Msg("edge function returned an invalid result")
		return Result{}, err
	}
	return res, nil
}
