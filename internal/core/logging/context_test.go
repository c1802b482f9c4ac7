package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCommand(ctx))
	assert.Empty(t, GetCollection(ctx))

	ctx = WithCommand(ctx, "tasks done")
	ctx = WithCollection(ctx, "tasks")

	assert.Equal(t, "tasks done", GetCommand(ctx))
	assert.Equal(t, "tasks", GetCollection(ctx))
}
