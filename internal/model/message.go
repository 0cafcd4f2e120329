// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the conversation log.
// Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// CorrelationID links a bot reply back to the user message that
	// triggered it. Empty for messages that were not part of a send
	// round-trip (restored history, notices).
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message tagged with a fresh correlation ID.
// The matching reply carries the same ID so it can be placed next to this
// message even when responses arrive out of order.
func NewUserMessage(content string) Message {
	m := NewMessage(RoleUser, content)
	m.CorrelationID = uuid.NewString()
	return m
}

// NewBotMessage creates a bot reply correlated to a user message.
func NewBotMessage(content, correlationID string) Message {
	m := NewMessage(RoleBot, content)
	m.CorrelationID = correlationID
	return m
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// Log is an ordered, append-only sequence of messages. Insertion order is
// significant: the view renders top to bottom, newest last.
type Log struct {
	messages []Message
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message at the tail of the log.
func (l *Log) Append(m Message) {
	l.messages = append(l.messages, m)
}

// InsertReply places a bot reply directly after the user message that
// shares its correlation ID. When no originating message is found (for
// example after the log was cleared), the reply is appended at the tail.
func (l *Log) InsertReply(reply Message) {
	if reply.CorrelationID == "" {
		l.Append(reply)
		return
	}
	for i, m := range l.messages {
		if m.Role == RoleUser && m.CorrelationID == reply.CorrelationID {
			l.messages = append(l.messages, Message{})
			copy(l.messages[i+2:], l.messages[i+1:])
			l.messages[i+1] = reply
			return
		}
	}
	l.Append(reply)
}

// Messages returns the log contents in order. The returned slice must not
// be mutated by callers.
func (l *Log) Messages() []Message {
	return l.messages
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	return len(l.messages)
}

// Last returns the newest message, or a zero Message for an empty log.
func (l *Log) Last() Message {
	if len(l.messages) == 0 {
		return Message{}
	}
	return l.messages[len(l.messages)-1]
}

// Preview returns the first user message truncated for list display.
func (l *Log) Preview() string {
	for _, m := range l.messages {
		if m.Role == RoleUser && m.Content != "" {
			content := strings.ReplaceAll(m.Content, "\n", " ")
			content = strings.ReplaceAll(content, "\r", "")
			return Message{Content: content}.Preview(50)
		}
	}
	return "New conversation"
}
