// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"
	"maps"
	"slices"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// swatch lists a palette as hex strings in Palette field order.
type swatch struct {
	primary, secondary, fg, muted, bg, surface, success, warning, err string
}

func (s swatch) palette() Palette {
	return Palette{
		Primary:    lipgloss.Color(s.primary),
		Secondary:  lipgloss.Color(s.secondary),
		Foreground: lipgloss.Color(s.fg),
		Muted:      lipgloss.Color(s.muted),
		Background: lipgloss.Color(s.bg),
		Surface:    lipgloss.Color(s.surface),
		Success:    lipgloss.Color(s.success),
		Warning:    lipgloss.Color(s.warning),
		Error:      lipgloss.Color(s.err),
	}
}

var swatches = map[string]swatch{
	"tokyo-night":    {"#7aa2f7", "#7dcfff", "#c0caf5", "#565f89", "#1a1b26", "#3b4261", "#9ece6a", "#e0af68", "#f7768e"},
	"gruvbox":        {"#83a598", "#8ec07c", "#ebdbb2", "#665c54", "#282828", "#3c3836", "#b8bb26", "#fabd2f", "#fb4934"},
	"catppuccin":     {"#89b4fa", "#94e2d5", "#cdd6f4", "#6c7086", "#1e1e2e", "#313244", "#a6e3a1", "#f9e2af", "#f38ba8"},
	"nord":           {"#88c0d0", "#81a1c1", "#eceff4", "#4c566a", "#2e3440", "#3b4252", "#a3be8c", "#ebcb8b", "#bf616a"},
	"solarized-dark": {"#268bd2", "#2aa198", "#eee8d5", "#586e75", "#002b36", "#073642", "#859900", "#b58900", "#dc322f"},
	"github-light":   {"#0969da", "#8250df", "#1f2328", "#6e7781", "#ffffff", "#eaeef2", "#1a7f37", "#9a6700", "#cf222e"},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(swatches))
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	s, ok := swatches[name]
	if !ok {
		return Palette{}, false
	}
	return s.palette(), true
}

func colorHexPtr(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// Gradient returns n colors blended in Lab space from one color to another.
// The deal board uses it to shade pipeline stages.
func Gradient(from, to color.Color, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	a, okA := colorful.MakeColor(from)
	b, okB := colorful.MakeColor(to)
	out := make([]color.Color, n)
	for i := range out {
		if !okA || !okB || n == 1 {
			out[i] = from
			continue
		}
		out[i] = lipgloss.Color(a.BlendLab(b, float64(i)/float64(n-1)).Clamped().Hex())
	}
	return out
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	surface := colorHexPtr(ColorSurface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.Strong.Color = secondary

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	return cfg
}
