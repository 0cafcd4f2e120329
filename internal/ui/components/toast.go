// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the ragchat TUI.
//
// This file implements non-blocking toast notifications. Toasts render at
// the bottom of the view and auto-dismiss; errors are transient feedback,
// never modal dialogs.
package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ragchat/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose)
	ToastKindError
	// ToastKindSuccess is a success toast (emerald)
	ToastKindSuccess
)

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// ToastExpiredMsg signals that a toast reached its deadline.
type ToastExpiredMsg struct {
	ID int
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toasts for a view.
type ToastManager struct {
	toasts   []Toast
	nextID   int
	duration time.Duration
}

// NewToastManager creates a manager with the given auto-dismiss duration.
func NewToastManager(duration time.Duration) *ToastManager {
	return &ToastManager{duration: duration}
}

// Push adds a toast and returns the command that expires it.
func (m *ToastManager) Push(kind ToastKind, message string) tea.Cmd {
	m.nextID++
	id := m.nextID
	m.toasts = append(m.toasts, Toast{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  m.duration,
	})
	return tea.Tick(m.duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Error pushes an error toast.
func (m *ToastManager) Error(message string) tea.Cmd {
	return m.Push(ToastKindError, message)
}

// Status pushes an informational toast.
func (m *ToastManager) Status(message string) tea.Cmd {
	return m.Push(ToastKindStatus, message)
}

// Expire removes the toast with the given ID.
func (m *ToastManager) Expire(id int) {
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Active returns the number of visible toasts.
func (m *ToastManager) Active() int {
	return len(m.toasts)
}

// =============================================================================
// RENDERING
// =============================================================================

func (t Toast) style() lipgloss.Style {
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch t.Kind {
	case ToastKindError:
		return base.BorderForeground(styles.Rose).Foreground(styles.Rose)
	case ToastKindSuccess:
		return base.BorderForeground(styles.Emerald).Foreground(styles.Emerald)
	default:
		return base.BorderForeground(styles.Cyan).Foreground(styles.Cyan)
	}
}

// View renders the active toasts stacked, clipped to the given width.
func (m *ToastManager) View(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}

	var rendered []string
	for _, t := range m.toasts {
		msg := t.Message
		// Border and padding take 4 cells.
		if max := width - 4; max > 3 && runewidth.StringWidth(msg) > max {
			msg = runewidth.Truncate(msg, max, "...")
		}
		rendered = append(rendered, t.style().Render(msg))
	}
	return strings.Join(rendered, "\n")
}
