// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ragchat/ragchat-tui/internal/api"
	"github.com/ragchat/ragchat-tui/internal/storage"
)

type memTokens struct {
	token string
	set   bool
}

func (m *memTokens) Get() (string, error) {
	if !m.set {
		return "", storage.ErrTokenNotFound
	}
	return m.token, nil
}

func (m *memTokens) Set(token string) error {
	m.token, m.set = token, true
	return nil
}

func (m *memTokens) Clear() error {
	m.token, m.set = "", false
	return nil
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *memTokens, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	tokens := &memTokens{}
	client := api.NewClient(server.URL, tokens).
		WithLoginViewCheck(func() bool { return true })
	return NewService(client, tokens), tokens, server
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestService_Login_PersistsIdentity(t *testing.T) {
	svc, tokens, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" {
			t.Errorf("path = %q, want /users/login", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "secret" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"success": true, "message": "ok", "user": {"id": "u-42"}, "chat": "c-7"}`))
	})

	entry, err := svc.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if entry.UserID != "u-42" || entry.ChatID != "c-7" {
		t.Errorf("entry = %+v, want u-42/c-7", entry)
	}
	if got, _ := tokens.Get(); got != "u-42" {
		t.Errorf("stored token = %q, want %q", got, "u-42")
	}
}

func TestService_Login_InvalidCredentialsKeepsStorage(t *testing.T) {
	svc, tokens, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid username or password"}`))
	})

	_, err := svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := tokens.Get(); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Error("storage must stay untouched on failed login")
	}
}

func TestService_EnterUnlogged(t *testing.T) {
	svc, tokens, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/unlogged" {
			t.Errorf("path = %q, want /users/unlogged", r.URL.Path)
		}
		w.Write([]byte(`{"success": true, "message": "ok", "user": {"id": "u-42"}}`))
	})

	entry, err := svc.EnterUnlogged(context.Background())
	if err != nil {
		t.Fatalf("EnterUnlogged failed: %v", err)
	}
	if entry.UserID != "u-42" {
		t.Errorf("UserID = %q, want %q", entry.UserID, "u-42")
	}
	if entry.ChatID != "" {
		t.Errorf("ChatID = %q, want empty (no chat field)", entry.ChatID)
	}
	if got, _ := tokens.Get(); got != "u-42" {
		t.Errorf("stored token = %q, want %q", got, "u-42")
	}
}

func TestService_Login_MissingUserID(t *testing.T) {
	svc, tokens, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "odd response", "user": {}}`))
	})

	_, err := svc.Login(context.Background(), "alice", "secret")
	if err == nil {
		t.Fatal("expected error for response without user id")
	}
	if _, err := tokens.Get(); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Error("no identity may be persisted without a user id")
	}
}

// =============================================================================
// SEND MESSAGE TESTS
// =============================================================================

func TestService_SendMessage_WithMatches(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/send/message" {
			t.Errorf("path = %q, want /chat/send/message", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["chatUUID"] != "c-7" || body["message"] != "hello" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"query": "hi there", "matches": [{"id": "m1", "score": 0.9}]}`))
	})

	reply, err := svc.SendMessage(context.Background(), "c-7", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
}

func TestService_SendMessage_NoMatches(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": "ignored", "error": {"reason": "index empty"}}`))
	})

	reply, err := svc.SendMessage(context.Background(), "c-7", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != NoMatchReply {
		t.Errorf("reply = %q, want NoMatchReply", reply)
	}
}

func TestService_SendMessage_EmptyMatchList(t *testing.T) {
	// An empty list is not the same as an absent field: the backend sends
	// [] when retrieval found nothing, and the reply text is still valid.
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": "hi there", "matches": []}`))
	})

	reply, err := svc.SendMessage(context.Background(), "c-7", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
}

func TestService_SendMessage_FailurePropagates(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	_, err := svc.SendMessage(context.Background(), "c-7", "hello")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError to propagate unchanged", err)
	}
}

// =============================================================================
// LOGOUT TESTS
// =============================================================================

func TestService_Logout(t *testing.T) {
	svc, tokens, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	tokens.Set("u-42")
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := tokens.Get(); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Error("Logout must clear the stored identity")
	}

	// Logout with nothing stored also succeeds.
	if err := svc.Logout(); err != nil {
		t.Errorf("Logout with empty storage = %v, want nil", err)
	}
}
