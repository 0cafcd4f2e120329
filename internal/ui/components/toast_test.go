// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestToastManager_PushAndExpire(t *testing.T) {
	m := NewToastManager(4 * time.Second)

	cmd := m.Error("boom")
	if cmd == nil {
		t.Fatal("Push must return an expiry command")
	}
	if m.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", m.Active())
	}

	msg := cmd()
	expired, ok := msg.(ToastExpiredMsg)
	if !ok {
		t.Fatalf("expiry command produced %T, want ToastExpiredMsg", msg)
	}

	m.Expire(expired.ID)
	if m.Active() != 0 {
		t.Errorf("Active() = %d after expire, want 0", m.Active())
	}
}

func TestToastManager_ExpireUnknownID(t *testing.T) {
	m := NewToastManager(time.Second)
	m.Status("hello")

	m.Expire(999)
	if m.Active() != 1 {
		t.Errorf("Active() = %d, want 1 (unknown id is a no-op)", m.Active())
	}
}

func TestToastManager_ViewTruncates(t *testing.T) {
	m := NewToastManager(time.Second)
	m.Error(strings.Repeat("x", 200))

	view := m.View(40)
	if view == "" {
		t.Fatal("expected non-empty view")
	}
	for _, line := range strings.Split(view, "\n") {
		if len([]rune(line)) > 60 {
			t.Errorf("line wider than clip allowance: %d runes", len([]rune(line)))
		}
	}
}

func TestToastManager_EmptyView(t *testing.T) {
	m := NewToastManager(time.Second)
	if got := m.View(80); got != "" {
		t.Errorf("View() = %q, want empty", got)
	}
}
