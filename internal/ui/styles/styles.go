// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Purple - Primary accent, bot messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the styles shared by the login and chat views.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	Timestamp  lipgloss.Style
	InputBox   lipgloss.Style
	FocusedBox lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	ErrorText  lipgloss.Style
	Card       lipgloss.Style
	Button     lipgloss.Style
	GhostBtn   lipgloss.Style
}

// DefaultTheme returns the standard theme.
func DefaultTheme() *Theme {
	return &Theme{
		Title: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(TextSecondary),
		UserLabel: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		BotLabel: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),
		Timestamp: lipgloss.NewStyle().
			Foreground(TextMuted),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		FocusedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary),
		Help: lipgloss.NewStyle().
			Foreground(TextMuted),
		ErrorText: lipgloss.NewStyle().
			Foreground(Rose),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(1, 3),
		Button: lipgloss.NewStyle().
			Foreground(TextPrimary).
			Background(Cyan).
			Padding(0, 2).
			Bold(true),
		GhostBtn: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Padding(0, 2),
	}
}
