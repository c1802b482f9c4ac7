package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/core/store"
)

// commitTimeout bounds a single remote write started from the TUI.
const commitTimeout = 15 * time.Second

type dashboardLoadedMsg struct {
	dashboard app.Dashboard
	err       error
}

// committedMsg carries the result of a mutation's commit back to the update
// loop, where it is resolved against its controller.
type committedMsg[T any] struct {
	mutation optimistic.Mutation[string, T]
	err      error
}

type removedMsg[T any] struct {
	removal optimistic.Removal[string, T]
	err     error
}

type generatedMsg struct {
	gen    uint64
	text   string
	err    error
	reload bool
}

type watchStartedMsg struct {
	changes <-chan store.Event
	err     error
}

type dataChangedMsg struct {
	event store.Event
}

func (m Model) loadDashboard() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		d, err := a.LoadDashboard(ctx)
		return dashboardLoadedMsg{dashboard: d, err: err}
	}
}

func commitCmd[T any](ctx context.Context, mut optimistic.Mutation[string, T], commit optimistic.CommitFunc[string, T]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, commitTimeout)
		defer cancel()
		return committedMsg[T]{mutation: mut, err: mut.Run(ctx, commit)}
	}
}

func removeCmd[T any](ctx context.Context, r optimistic.Removal[string, T], commit optimistic.RemoveFunc[string]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, commitTimeout)
		defer cancel()
		return removedMsg[T]{removal: r, err: r.Run(ctx, commit)}
	}
}

// draftEmail generates a follow-up email for deal.
func draftEmail(ctx context.Context, a *app.App, gen uint64, deal crm.Deal) tea.Cmd {
	return func() tea.Msg {
		req, err := a.EmailRequest(ctx, deal)
		if err != nil {
			return generatedMsg{gen: gen, err: err}
		}
		res, err := a.Generator.Generate(ctx, req)
		if err != nil {
			return generatedMsg{gen: gen, err: err}
		}
		return generatedMsg{gen: gen, text: res.Text()}
	}
}

// generateInsights asks for new insights, stores them and formats them as a
// markdown list.
func generateInsights(ctx context.Context, a *app.App, gen uint64) tea.Cmd {
	return func() tea.Msg {
		added, err := a.GenerateInsights(ctx, "")
		if err != nil {
			return generatedMsg{gen: gen, err: err}
		}

		var b strings.Builder
		for _, in := range added {
			fmt.Fprintf(&b, "- %s\n", in.Message)
		}
		return generatedMsg{gen: gen, text: b.String(), reload: true}
	}
}

func (m Model) startWatch() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		ch, err := a.Watch(ctx)
		return watchStartedMsg{changes: ch, err: err}
	}
}

// listenForChanges waits for the next external edit.
func listenForChanges(ch <-chan store.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return dataChangedMsg{event: ev}
	}
}
