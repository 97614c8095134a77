// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/trustleast/webchat-tui/internal/model"
	"github.com/trustleast/webchat-tui/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) headerView() string {
	title := styles.AssistantLabel.Render("webchat")
	hint := styles.Status.Render("Enter to send · Esc to cancel · Ctrl+C to quit")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(hint)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + hint
}

func (m Model) statusView() string {
	if m.busy {
		line := m.spinner.View() + " waiting for response"
		if m.status != "" {
			line = m.spinner.View() + " " + m.status
		}
		return styles.Status.Render(truncateLine(line, m.width))
	}
	if m.status != "" {
		return styles.Status.Render(truncateLine(m.status, m.width))
	}
	return ""
}

// refreshViewport re-renders the transcript into the viewport, including the
// in-flight partial response.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, msg := range m.store.Messages() {
		b.WriteString(renderMessage(msg, m.viewport.Width))
		b.WriteString("\n")
	}
	if m.busy && m.partial != "" {
		label := styles.AssistantLabel.Render(model.RoleAssistant.DisplayName())
		if m.partialModel != "" {
			label += styles.Status.Render(fmt.Sprintf(" (%s)", m.partialModel))
		}
		b.WriteString(label + "\n")
		b.WriteString(wrapText(m.partial, m.viewport.Width) + "\n")
	}
	m.viewport.SetContent(b.String())
}

func renderMessage(msg *model.Message, width int) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = styles.UserLabel.Render(msg.Role.DisplayName())
	case model.RoleAssistant:
		label = styles.AssistantLabel.Render(msg.Role.DisplayName())
		if msg.Model != "" {
			label += styles.Status.Render(fmt.Sprintf(" (%s)", msg.Model))
		}
	default:
		label = styles.SystemLabel.Render(msg.Role.DisplayName())
	}
	return label + "\n" + wrapText(msg.DisplayContent(), width) + "\n"
}

// wrapText is a simple greedy word wrap, width-aware for wide runes.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(wrapLine(line, width))
	}
	return out.String()
}

func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}
	var out strings.Builder
	current := 0
	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if current > 0 && current+1+w > width {
			out.WriteString("\n")
			current = 0
		} else if current > 0 {
			out.WriteString(" ")
			current++
		}
		out.WriteString(word)
		current += w
	}
	return out.String()
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}
