// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the webchat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Cyan - user messages, prompts
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - assistant messages
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - warnings, retry notices
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// TextSecondary - timestamps, status line, dimmed chrome
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// Shared styles.
var (
	UserLabel      = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	SystemLabel    = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	Status         = lipgloss.NewStyle().Foreground(TextSecondary)
	Warning        = lipgloss.NewStyle().Foreground(Amber)
	Error          = lipgloss.NewStyle().Foreground(Rose)
	Success        = lipgloss.NewStyle().Foreground(Emerald)
)

// HasDarkBackground reports the detected terminal background, used for the
// adaptive color selection above.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}
