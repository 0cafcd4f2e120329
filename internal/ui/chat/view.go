// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file renders the transcript. Bot replies pass through glamour when
// markdown rendering is enabled; user messages render verbatim. Every log
// mutation pins the viewport to the newest entry.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragchat/ragchat-tui/internal/model"
)

// chromeHeight is the number of rows taken by the header, input box
// borders, and help line around the viewport.
const chromeHeight = 8

// resize recomputes component dimensions for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - chromeHeight - inputHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(width - 4)
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the newest
// message. The scroll is best-effort; rendering is what matters.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

// renderLog renders the full conversation log.
func (m *Model) renderLog() string {
	msgs := m.log.Messages()
	if len(msgs) == 0 {
		return m.theme.Help.Render("No messages yet. Say hello!")
	}

	var renderer *glamour.TermRenderer
	if m.renderMarkdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(m.wrapWidth()),
		)
		if err == nil {
			renderer = r
		}
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg, renderer))
	}
	return sb.String()
}

func (m *Model) wrapWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// renderMessage renders one transcript entry with its role label and
// timestamp.
func (m *Model) renderMessage(msg model.Message, renderer *glamour.TermRenderer) string {
	label := m.theme.UserLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleBot {
		label = m.theme.BotLabel.Render(msg.Role.DisplayName())
	}
	stamp := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	content := msg.Content
	if renderer != nil && msg.Role == model.RoleBot {
		if rendered, err := renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	} else {
		content = lipgloss.NewStyle().Width(m.wrapWidth()).Render(content)
	}

	return label + " " + stamp + "\n" + content + "\n"
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	inputBox := m.theme.FocusedBox.Width(m.width - 2).Render(m.input.View())
	help := m.theme.Help.Render("Enter: send • M-Enter: newline • C-l: log out • C-c: quit")

	sections := []string{header, m.viewport.View(), inputBox, help}
	if toasts := m.toasts.View(m.width); toasts != "" {
		sections = append(sections, toasts)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("RAG chat")
	scope := m.theme.StatusBar.Render(m.routePath())

	status := ""
	if m.pending > 0 {
		status = " " + m.spinner.View() + m.theme.Subtitle.Render(" thinking...")
	}

	line := title + "  " + scope + status
	rule := m.theme.Help.Render(strings.Repeat("─", max(0, m.width)))
	return line + "\n" + rule
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// routePath renders the shareable path for the active session scope.
func (m Model) routePath() string {
	if m.scope.ChatID != "" {
		return "/chat/" + m.scope.UserID + "/" + m.scope.ChatID
	}
	return "/chat/" + m.scope.UserID
}
