package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/core/typewriter"
)

const (
	draftModalMaxWidth  = 100
	draftModalMaxHeight = 32
	draftModalMargin    = 4
	draftModalChrome    = 6
	draftModalPadding   = 6
)

// typewriterTickMsg advances the draft reveal. gen identifies the reveal the
// tick was scheduled for so ticks from a cancelled reveal are dropped.
type typewriterTickMsg struct {
	gen uint64
}

func scheduleTypewriterTick(gen uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return typewriterTickMsg{gen: gen}
	})
}

// DraftPanel shows generated text. It waits for the generator, reveals the
// text with a typewriter and switches to rendered markdown once the reveal
// completes.
type DraftPanel struct {
	title    string
	loading  bool
	err      error
	tw       *typewriter.Typewriter
	rendered string
	viewport viewport.Model
	width    int
}

// NewDraftPanel creates a panel in the loading state.
func NewDraftPanel(title string, delay time.Duration, width, height int) *DraftPanel {
	modalWidth := min(width-draftModalMargin, draftModalMaxWidth)
	modalHeight := min(height-draftModalMargin, draftModalMaxHeight)

	return &DraftPanel{
		title:   title,
		loading: true,
		tw:      typewriter.New(delay),
		width:   modalWidth - draftModalPadding,
		viewport: viewport.New(
			viewport.WithWidth(modalWidth-draftModalPadding),
			viewport.WithHeight(max(modalHeight-draftModalChrome, 1)),
		),
	}
}

// Start begins revealing text and returns the first tick.
func (p *DraftPanel) Start(text string) tea.Cmd {
	p.loading = false
	p.err = nil
	p.rendered = ""
	gen := p.tw.Start(text)
	if !p.tw.Typing() {
		p.finish()
		return nil
	}
	return scheduleTypewriterTick(gen, p.tw.Delay())
}

// Fail shows err in place of the draft.
func (p *DraftPanel) Fail(err error) {
	p.loading = false
	p.err = err
	p.tw.Cancel()
}

// Tick advances the reveal for msg and returns the next tick, if any. Stale
// ticks return nil.
func (p *DraftPanel) Tick(msg typewriterTickMsg) tea.Cmd {
	if !p.tw.Current(msg.gen) {
		return nil
	}
	delay, more := p.tw.Advance()
	p.viewport.SetContent(p.tw.Prefix())
	if p.tw.Lines() > p.viewport.Height() {
		p.viewport.GotoBottom()
	}
	if !more {
		p.finish()
		return nil
	}
	return scheduleTypewriterTick(msg.gen, delay)
}

// Finish skips the rest of the reveal.
func (p *DraftPanel) Finish() {
	if p.tw.Typing() {
		p.tw.Finish()
		p.finish()
	}
}

// Cancel stops the reveal. Ticks already scheduled become stale.
func (p *DraftPanel) Cancel() {
	p.tw.Cancel()
}

func (p *DraftPanel) finish() {
	p.rendered = renderMarkdown(p.tw.Text(), p.width)
	p.viewport.SetContent(p.rendered)
	p.viewport.GotoTop()
}

// Loading reports whether the panel is still waiting for the generator.
func (p *DraftPanel) Loading() bool {
	return p.loading
}

// Typing reports whether the reveal is in progress.
func (p *DraftPanel) Typing() bool {
	return p.tw.Typing()
}

// Text returns the full generated text.
func (p *DraftPanel) Text() string {
	return p.tw.Text()
}

func (p *DraftPanel) ScrollUp() {
	p.viewport.ScrollUp(1)
}

func (p *DraftPanel) ScrollDown() {
	p.viewport.ScrollDown(1)
}

// Overlay renders the panel centered over background. spin is the spinner
// frame shown while loading.
func (p *DraftPanel) Overlay(background, spin string, width, height int) string {
	modalWidth := min(width-draftModalMargin, draftModalMaxWidth)
	modalHeight := min(height-draftModalMargin, draftModalMaxHeight)

	var body, help string
	switch {
	case p.loading:
		body = spin + " " + styles.TextMutedStyle.Render("Generating…")
		help = "[esc] cancel"
	case p.err != nil:
		body = styles.TextErrorStyle.Render(fmt.Sprintf("Generation failed: %v", p.err))
		help = "[esc] close"
	case p.tw.Typing():
		body = p.viewport.View() + styles.TextPrimaryStyle.Render("▌")
		help = "[enter] show all  [esc] cancel"
	default:
		body = p.viewport.View()
		help = "[j/k] scroll  [esc] close"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(p.title),
		styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-draftModalPadding, 1))),
		body,
		styles.ModalHelpStyle.Render(help),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(content)

	return centerOverlay(background, modal, width, height)
}

// renderMarkdown renders text with the theme's glamour style, falling back
// to the raw text if rendering fails.
func renderMarkdown(text string, width int) string {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		return text
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		return text
	}
	return strings.TrimSpace(rendered)
}
