package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch_ApplyTo(t *testing.T) {
	p := NewPatch(stageField.To("Won"), valueField.To(42))

	in := deal{ID: "d1", Stage: "Lead", Value: 1, Owner: "ana"}
	out := p.ApplyTo(in)

	assert.Equal(t, deal{ID: "d1", Stage: "Won", Value: 42, Owner: "ana"}, out)
	assert.Equal(t, "Lead", in.Stage, "ApplyTo must not modify its argument")
}

func TestPatch_Fields(t *testing.T) {
	p := NewPatch(stageField.To("A"), valueField.To(1), stageField.To("B"))

	assert.Equal(t, []string{"stage", "value"}, p.Fields())
	assert.Equal(t, "stage,value", p.String())
	assert.True(t, p.Touches("value"))
	assert.False(t, p.Touches("owner"))
}

func TestChange_Capture(t *testing.T) {
	ch := stageField.To("Won")
	restore := ch.Capture(deal{Stage: "Lead"})

	d := deal{Stage: "Won"}
	restore.Apply(&d)

	assert.Equal(t, "Lead", d.Stage)
	assert.Equal(t, "stage", restore.Field())
}
