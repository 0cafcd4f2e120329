// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragchat/ragchat-tui/internal/model"
	"github.com/ragchat/ragchat-tui/internal/session"
	"github.com/ragchat/ragchat-tui/internal/ui/components"
)

// fakeSender is a scripted Sender.
type fakeSender struct {
	reply    string
	err      error
	lastChat string
	lastMsg  string
	calls    int
}

func (f *fakeSender) SendMessage(_ context.Context, chatUUID, content string) (string, error) {
	f.calls++
	f.lastChat = chatUUID
	f.lastMsg = content
	return f.reply, f.err
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	chats map[string][]model.Message
}

func newMemHistory() *memHistory {
	return &memHistory{chats: make(map[string][]model.Message)}
}

func (h *memHistory) AppendMessage(chatUUID string, m model.Message) error {
	h.chats[chatUUID] = append(h.chats[chatUUID], m)
	return nil
}

func (h *memHistory) LoadChat(chatUUID string) ([]model.Message, error) {
	return h.chats[chatUUID], nil
}

func newTestModel(sender Sender, history HistoryStore) Model {
	scope := session.Scope{UserID: "u-42", ChatID: "c-7"}
	return New(scope, sender, history, components.NewToastManager(time.Second), false)
}

// runBatch executes a command tree until a replyMsg is found and feeds it
// into the model.
func deliverReply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case replyMsg:
			m, _ = m.Update(msg)
			return m
		}
	}
	t.Fatal("no replyMsg produced")
	return m
}

func TestChat_ScopeFromRoute(t *testing.T) {
	m := newTestModel(&fakeSender{}, nil)
	if m.Scope().UserID != "u-42" || m.Scope().ChatID != "c-7" {
		t.Errorf("Scope() = %+v, want u-42/c-7", m.Scope())
	}
}

func TestChat_SendAppendsUserThenBot(t *testing.T) {
	sender := &fakeSender{reply: "hi there"}
	m := newTestModel(sender, nil)
	m.input.SetValue("hello")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// Optimistic: the user message is in the log before the reply resolves.
	if m.log.Len() != 1 {
		t.Fatalf("log.Len() = %d before reply, want 1", m.log.Len())
	}
	if m.log.Last().Role != model.RoleUser || m.log.Last().Content != "hello" {
		t.Errorf("optimistic entry = %+v", m.log.Last())
	}
	if m.input.Value() != "" {
		t.Error("input buffer must clear on send")
	}

	m = deliverReply(t, m, cmd)

	if m.log.Len() != 2 {
		t.Fatalf("log.Len() = %d after reply, want 2", m.log.Len())
	}
	bot := m.log.Messages()[1]
	if bot.Role != model.RoleBot || bot.Content != "hi there" {
		t.Errorf("bot entry = %+v, want bot/hi there", bot)
	}
	if sender.lastChat != "c-7" || sender.lastMsg != "hello" {
		t.Errorf("sender called with %q/%q", sender.lastChat, sender.lastMsg)
	}
}

func TestChat_EmptyInputIsNoOp(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		sender := &fakeSender{}
		m := newTestModel(sender, nil)
		m.input.SetValue(input)

		m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if cmd != nil {
			t.Errorf("input %q: expected no command", input)
		}
		if m.log.Len() != 0 {
			t.Errorf("input %q: log.Len() = %d, want 0", input, m.log.Len())
		}
		if m.input.Value() != input {
			t.Errorf("input %q: buffer cleared on no-op", input)
		}
		if sender.calls != 0 {
			t.Errorf("input %q: sender called", input)
		}
	}
}

func TestChat_FailureAppendsPlaceholder(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	m := newTestModel(sender, nil)
	m.input.SetValue("hello")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = deliverReply(t, m, cmd)

	msgs := m.log.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log.Len() = %d, want 2", len(msgs))
	}
	// The user's own message stays in the log unaltered.
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("user entry = %+v", msgs[0])
	}
	if msgs[1].Content != FailedSendReply {
		t.Errorf("bot content = %q, want %q", msgs[1].Content, FailedSendReply)
	}
}

func TestChat_EmptyReplyPlaceholder(t *testing.T) {
	m := newTestModel(&fakeSender{reply: ""}, nil)
	m.input.SetValue("hello")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = deliverReply(t, m, cmd)

	if got := m.log.Last().Content; got != EmptyReply {
		t.Errorf("bot content = %q, want %q", got, EmptyReply)
	}
}

func TestChat_RepliesCorrelateOutOfOrder(t *testing.T) {
	m := newTestModel(&fakeSender{}, nil)

	// Two rapid sends, then replies arriving in reverse order.
	m.input.SetValue("first")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	firstCorr := m.log.Messages()[0].CorrelationID

	m.input.SetValue("second")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	secondCorr := m.log.Messages()[1].CorrelationID

	m, _ = m.Update(replyMsg{correlationID: secondCorr, reply: "second answer"})
	m, _ = m.Update(replyMsg{correlationID: firstCorr, reply: "first answer"})

	var got []string
	for _, msg := range m.log.Messages() {
		got = append(got, msg.Content)
	}
	want := []string{"first", "first answer", "second", "second answer"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log order = %v, want %v", got, want)
		}
	}
}

func TestChat_LogoutEmitsMessage(t *testing.T) {
	m := newTestModel(&fakeSender{}, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(LoggedOutMsg); !ok {
		t.Error("C-l must emit LoggedOutMsg")
	}
}

func TestChat_HistoryReplayOnMount(t *testing.T) {
	history := newMemHistory()
	user := model.NewUserMessage("earlier question")
	history.AppendMessage("c-7", user)
	history.AppendMessage("c-7", model.NewBotMessage("earlier answer", user.CorrelationID))

	m := newTestModel(&fakeSender{}, history)

	if m.log.Len() != 2 {
		t.Fatalf("log.Len() = %d, want 2 replayed messages", m.log.Len())
	}
	if m.log.Messages()[0].Content != "earlier question" {
		t.Errorf("first replayed = %q", m.log.Messages()[0].Content)
	}
}

func TestChat_SendPersistsBothSides(t *testing.T) {
	history := newMemHistory()
	m := newTestModel(&fakeSender{reply: "pong"}, history)
	m.input.SetValue("ping")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_ = deliverReply(t, m, cmd)

	stored := history.chats["c-7"]
	if len(stored) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(stored))
	}
	if stored[0].Content != "ping" || stored[1].Content != "pong" {
		t.Errorf("persisted = %q/%q", stored[0].Content, stored[1].Content)
	}
}
