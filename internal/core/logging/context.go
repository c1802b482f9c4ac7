package logging

import "context"

type contextKey string

const (
	commandKey    contextKey = "command"
	collectionKey contextKey = "collection"
)

// WithCommand tags the context with the CLI command being run.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// WithCollection tags the context with the collection a mutation targets.
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, collectionKey, collection)
}

// GetCommand retrieves the command from the context.
// Returns empty string if not present.
func GetCommand(ctx context.Context) string {
	if v, ok := ctx.Value(commandKey).(string); ok {
		return v
	}
	return ""
}

// GetCollection retrieves the collection from the context.
// Returns empty string if not present.
func GetCollection(ctx context.Context) string {
	if v, ok := ctx.Value(collectionKey).(string); ok {
		return v
	}
	return ""
}
