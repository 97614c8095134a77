// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/trustleast/webchat-tui/internal/model"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 1
		footerHeight := 3 // status line + input + padding
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case tea.KeyEsc:
			// Cancel the in-flight exchange. The coordinator treats the
			// cancellation as a failed turn and rolls the user message back.
			if m.busy && m.cancel != nil {
				m.cancel()
				m.status = "Cancelling..."
			}
			return m, nil

		case tea.KeyEnter:
			return m.submit()
		}

	case partialEvent:
		m.partial = msg.text
		m.partialModel = msg.model
		m.refreshViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.listen())

	case statusEvent:
		m.status = msg.message
		cmds = append(cmds, m.listen())

	case doneEvent:
		m.busy = false
		m.cancel = nil
		m.partial = ""
		m.partialModel = ""
		m.refreshViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.listen())

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit appends the user's turn and starts the exchange.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.store.Append(model.NewUserMessage(text))
	m.input.Reset()
	m.busy = true
	m.status = ""
	m.refreshViewport()
	m.viewport.GotoBottom()

	sendCmd := m.send() // sets m.cancel before m is returned
	return m, tea.Batch(sendCmd, m.spinner.Tick)
}
