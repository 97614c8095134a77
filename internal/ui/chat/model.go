// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trustleast/webchat-tui/internal/client"
	"github.com/trustleast/webchat-tui/internal/store"
	"github.com/trustleast/webchat-tui/internal/ui/styles"
)

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	store       *store.Store
	coordinator *client.Coordinator

	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	width     int
	height    int
	ready     bool

	// busy is true while an exchange is in flight. The input stays open but
	// Enter is ignored until the turn resolves.
	busy bool

	// partial holds the streaming assistant text before it lands in the
	// store as a finalized message.
	partial      string
	partialModel string

	status string

	// events carries coordinator callbacks from the exchange goroutine into
	// the update loop. cancel aborts the in-flight exchange.
	events chan tea.Msg
	cancel context.CancelFunc
}

// New creates the conversation view over an already-loaded store.
func New(st *store.Store, co *client.Coordinator) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = styles.UserLabel.Render("> ")
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	events := make(chan tea.Msg, 16)
	co.WithCallbacks(client.Callbacks{
		RenderPartial: func(text, model string) {
			events <- partialEvent{text: text, model: model}
		},
		ReportStatus: func(message string) {
			events <- statusEvent{message: message}
		},
	})

	return Model{
		store:       st,
		coordinator: co,
		input:       ti,
		spinner:     sp,
		events:      events,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen pumps one event from the exchange goroutine into the update loop.
// Update re-arms it after every delivery.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// send runs one exchange on a goroutine, translating coordinator callbacks
// into events. The coordinator owns retries, rollback, and the redirect
// decision; the view only mirrors progress.
func (m *Model) send() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	co := m.coordinator
	events := m.events
	return func() tea.Msg {
		ok := co.Send(ctx)
		cancel()
		events <- doneEvent{ok: ok}
		return nil
	}
}
