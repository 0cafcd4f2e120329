// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragchat/ragchat-tui/internal/model"
	"github.com/ragchat/ragchat-tui/internal/session"
	"github.com/ragchat/ragchat-tui/internal/ui/components"
	"github.com/ragchat/ragchat-tui/internal/ui/styles"
)

// FailedSendReply is the placeholder bot message for an absorbed send
// failure.
const FailedSendReply = "Failed to send message"

// EmptyReply is the placeholder for a successful send that returned no
// reply text.
const EmptyReply = "No response"

// Sender is the slice of the session service the chat view needs.
type Sender interface {
	SendMessage(ctx context.Context, chatUUID, content string) (string, error)
}

// HistoryStore persists the transcript locally so a chat link can be
// resumed with its log intact.
type HistoryStore interface {
	AppendMessage(chatUUID string, m model.Message) error
	LoadChat(chatUUID string) ([]model.Message, error)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// scope is resolved once from the route at construction and never
	// re-read from ambient state.
	scope session.Scope

	sender  Sender
	history HistoryStore

	log    *model.Log
	toasts *components.ToastManager
	theme  *styles.Theme
	keyMap KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	renderMarkdown bool
	pending        int // sends in flight
	width          int
	height         int
	ready          bool
}

// New creates the chat view for the given session scope. When a history
// store is supplied, the persisted transcript for the chat is replayed
// into the log.
func New(scope session.Scope, sender Sender, history HistoryStore, toasts *components.ToastManager, renderMarkdown bool) Model {
	input := textarea.New()
	input.Placeholder = "Type your message..."
	input.Prompt = ""
	input.SetHeight(inputHeight)
	input.CharLimit = 4000
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	m := Model{
		scope:          scope,
		sender:         sender,
		history:        history,
		log:            model.NewLog(),
		toasts:         toasts,
		theme:          styles.DefaultTheme(),
		keyMap:         DefaultKeyMap(),
		input:          input,
		spinner:        sp,
		renderMarkdown: renderMarkdown,
	}

	if history != nil && scope.ChatID != "" {
		if msgs, err := history.LoadChat(scope.ChatID); err == nil {
			for _, msg := range msgs {
				m.log.Append(msg)
			}
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Scope returns the immutable session scope of this view.
func (m Model) Scope() session.Scope {
	return m.scope
}

// Log exposes the conversation log for inspection.
func (m Model) Log() *model.Log {
	return m.log
}

// persist writes a message to local history, best-effort. Persistence
// failures never interrupt the conversation.
func (m *Model) persist(msg model.Message) {
	if m.history == nil || m.scope.ChatID == "" {
		return
	}
	_ = m.history.AppendMessage(m.scope.ChatID, msg)
}
