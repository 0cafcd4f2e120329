// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file defines the message types and update loop. Sends are
// optimistic: the user message lands in the log before the network call
// resolves, and the reply is correlated back to it by ID. In-flight sends
// are neither deduplicated nor cancelled; logout is immediate and does not
// wait for them.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragchat/ragchat-tui/internal/model"
	"github.com/ragchat/ragchat-tui/internal/ui/components"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LoggedOutMsg reports that the user logged out; the app navigates to the
// login view, replacing history.
type LoggedOutMsg struct{}

// replyMsg carries the outcome of one send round-trip.
type replyMsg struct {
	correlationID string
	reply         string
	err           error
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Logout):
			// Unconditional: does not wait for in-flight sends.
			return m, func() tea.Msg { return LoggedOutMsg{} }

		case key.Matches(msg, m.keyMap.NewLine):
			m.input.InsertString("\n")
			return m, nil

		case key.Matches(msg, m.keyMap.Submit):
			return m.submit()

		case key.Matches(msg, m.keyMap.PageUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keyMap.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

	case replyMsg:
		return m.receiveReply(msg)

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the send action. Empty trimmed input is a no-op: the log
// is unchanged and the input buffer keeps its value.
func (m Model) submit() (Model, tea.Cmd) {
	content := m.input.Value()
	if strings.TrimSpace(content) == "" {
		return m, nil
	}

	userMsg := model.NewUserMessage(content)
	m.log.Append(userMsg)
	m.persist(userMsg)
	m.input.Reset()
	m.pending++
	m.refreshViewport()

	return m, tea.Batch(m.spinner.Tick, m.sendCmd(content, userMsg.CorrelationID))
}

// receiveReply folds a resolved send back into the log. Failures are
// absorbed into a placeholder bot message; they never propagate further.
func (m Model) receiveReply(msg replyMsg) (Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}

	content := msg.reply
	if msg.err != nil {
		content = FailedSendReply
	} else if content == "" {
		content = EmptyReply
	}

	botMsg := model.NewBotMessage(content, msg.correlationID)
	m.log.InsertReply(botMsg)
	m.persist(botMsg)
	m.refreshViewport()
	return m, nil
}

// sendCmd issues the network call for one message.
func (m Model) sendCmd(content, correlationID string) tea.Cmd {
	sender := m.sender
	chatID := m.scope.ChatID
	return func() tea.Msg {
		reply, err := sender.SendMessage(context.Background(), chatID, content)
		return replyMsg{correlationID: correlationID, reply: reply, err: err}
	}
}
