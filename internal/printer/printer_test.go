package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_streams(t *testing.T) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)

	p.Successf("saved %d", 2)
	p.Printf("plain")
	p.Errorf("failed %s", "x")
	p.Warnf("careful")

	assert.Contains(t, out.String(), "saved 2")
	assert.Contains(t, out.String(), "plain\n")
	assert.Contains(t, errOut.String(), "failed x")
	assert.Contains(t, errOut.String(), "careful")
	assert.NotContains(t, out.String(), "failed")
}

func TestCtx(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()))
}
