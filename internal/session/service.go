// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the identity service: authenticating,
// entering anonymously, and sending chat messages.
//
// Persisting the identity token happens here and only here. Both entry
// flows (credentials and anonymous) share the one write path, so the views
// never touch the token store on success.
package session

import (
	"context"
	"fmt"

	"github.com/ragchat/ragchat-tui/internal/api"
	"github.com/ragchat/ragchat-tui/internal/storage"
)

// NoMatchReply is returned by SendMessage when the backend resolves the
// call but carries no retrieval matches.
const NoMatchReply = "Failed attempt, please try again!"

// =============================================================================
// WIRE TYPES
// =============================================================================

// User is the user object inside a login response.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// LoginResponse is the backend response for both entry flows.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
	// Chat is present only in the extended variant of the backend.
	Chat string `json:"chat,omitempty"`
}

// Match is one retrieval match in a chat response.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChatResponse is the backend response to a message send.
type ChatResponse struct {
	Query   string         `json:"query"`
	Matches []Match        `json:"matches,omitempty"`
	Error   map[string]any `json:"error,omitempty"`
}

// loginRequest is the credentials body for /users/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sendRequest is the body for /chat/send/message.
type sendRequest struct {
	ChatUUID string `json:"chatUUID"`
	Message  string `json:"message"`
}

// =============================================================================
// SESSION SCOPE
// =============================================================================

// Scope is the immutable session context the chat view operates under.
// It is resolved once from the route when the view is constructed and
// passed explicitly to every subsequent call.
type Scope struct {
	UserID string
	ChatID string
}

// Entry is the result of a successful login or anonymous entry.
type Entry struct {
	UserID string
	ChatID string
}

// Scope converts an entry into a session scope.
func (e *Entry) Scope() Scope {
	return Scope{UserID: e.UserID, ChatID: e.ChatID}
}

// =============================================================================
// SERVICE
// =============================================================================

// Service is the session/identity service.
type Service struct {
	client *api.Client
	tokens storage.TokenStore
}

// NewService creates a session service on top of the HTTP client wrapper.
func NewService(client *api.Client, tokens storage.TokenStore) *Service {
	return &Service{client: client, tokens: tokens}
}

// Login authenticates with credentials. On success the identity token is
// persisted before the entry is returned.
func (s *Service) Login(ctx context.Context, username, password string) (*Entry, error) {
	var resp LoginResponse
	err := s.client.Post(ctx, "/users/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return s.entryFrom(&resp)
}

// EnterUnlogged obtains a fresh anonymous identity. Same call shape and
// failure taxonomy as Login, without credentials.
func (s *Service) EnterUnlogged(ctx context.Context) (*Entry, error) {
	var resp LoginResponse
	if err := s.client.Post(ctx, "/users/unlogged", nil, &resp); err != nil {
		return nil, err
	}
	return s.entryFrom(&resp)
}

// entryFrom persists the returned identity and builds the Entry.
func (s *Service) entryFrom(resp *LoginResponse) (*Entry, error) {
	if resp.User.ID == "" {
		return nil, fmt.Errorf("backend returned no user id (message: %q)", resp.Message)
	}
	if err := s.tokens.Set(resp.User.ID); err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}
	return &Entry{UserID: resp.User.ID, ChatID: resp.Chat}, nil
}

// SendMessage posts a message to the active chat and returns the reply
// text. A response without a matches field yields NoMatchReply; a present
// but empty matches list still carries a valid reply (the backend sends
// an empty list when retrieval found nothing). Transport and server
// failures propagate unchanged. The fallback placeholder for failed sends
// belongs to the caller, not here.
func (s *Service) SendMessage(ctx context.Context, chatUUID, content string) (string, error) {
	var resp ChatResponse
	err := s.client.Post(ctx, "/chat/send/message", sendRequest{ChatUUID: chatUUID, Message: content}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Matches == nil {
		return NoMatchReply, nil
	}
	return resp.Query, nil
}

// Logout evicts the stored identity. It is immediate and unconditional.
func (s *Service) Logout() error {
	return s.tokens.Clear()
}
