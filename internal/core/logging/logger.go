package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with cmp=name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ForCollection is Component with the collection a controller or store
// serves. An empty collection adds nothing.
func ForCollection(name, collection string) zerolog.Logger {
	ctx := log.With().Str("cmp", name)
	if collection != "" {
		ctx = ctx.Str("collection", collection)
	}
	return ctx.Logger()
}
