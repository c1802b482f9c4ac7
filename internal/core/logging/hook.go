package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies command and collection from an event's context onto the
// event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if command := GetCommand(ctx); command != "" {
		e.Str("command", command)
	}

	if collection := GetCollection(ctx); collection != "" {
		e.Str("collection", collection)
	}
}
