package styles

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes_complete(t *testing.T) {
	for _, name := range ThemeNames() {
		t.Run(name, func(t *testing.T) {
			p, ok := GetPalette(name)
			require.True(t, ok)
			for _, c := range []any{p.Primary, p.Secondary, p.Foreground, p.Muted, p.Background, p.Surface, p.Success, p.Warning, p.Error} {
				assert.NotNil(t, c)
			}
		})
	}
	_, ok := GetPalette("nope")
	assert.False(t, ok)
}

func TestGradient(t *testing.T) {
	p, _ := GetPalette(DefaultTheme)
	g := Gradient(p.Primary, p.Success, 4)
	require.Len(t, g, 4)

	first, _ := colorful.MakeColor(g[0])
	want, _ := colorful.MakeColor(p.Primary)
	assert.Equal(t, want.Hex(), first.Hex())

	last, _ := colorful.MakeColor(g[3])
	want, _ = colorful.MakeColor(p.Success)
	assert.Equal(t, want.Hex(), last.Hex())

	assert.Nil(t, Gradient(p.Primary, p.Success, 0))
	assert.Len(t, Gradient(p.Primary, p.Success, 1), 1)
}

func TestStageColor(t *testing.T) {
	assert.Len(t, StageColors, 6)
	assert.Equal(t, ColorMuted, StageColor(-1))
	assert.Equal(t, ColorMuted, StageColor(99))
	assert.Equal(t, ColorError, StageColor(5))
}

func TestColorForString_stable(t *testing.T) {
	assert.Equal(t, ColorForString("Acme"), ColorForString("Acme"))
}

func TestGlamourStyle_uses_theme(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	fg, _ := colorful.MakeColor(ColorForeground)
	assert.Equal(t, fg.Hex(), *cfg.Document.Color)
}
