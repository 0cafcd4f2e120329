// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package route maps URL-style paths onto the client's views.
//
// The app understands three path shapes:
//
//	/login                    the credential form
//	/chat/:userID             chat scoped to a user (single-identifier variant)
//	/chat/:userID/:chatID     chat scoped to a user and a conversation
//
// The root path redirects to /login. Because a chat route round-trips
// through Path(), a conversation is shareable: `ragchat /chat/u-42/c-7`
// reopens the same session.
package route

import (
	"errors"
	"fmt"
	"strings"
)

// View identifies which top-level view a route selects.
type View int

const (
	ViewLogin View = iota
	ViewChat
)

// String returns the view name for display.
func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewChat:
		return "chat"
	default:
		return "unknown"
	}
}

// ErrUnknownPath is returned for paths outside the route table.
var ErrUnknownPath = errors.New("unknown path")

// Route is one resolved navigation target.
type Route struct {
	View   View
	UserID string
	ChatID string
}

// Login returns the login route.
func Login() Route {
	return Route{View: ViewLogin}
}

// Chat returns a chat route for the given identifiers. chatID may be empty
// (single-identifier variant).
func Chat(userID, chatID string) Route {
	return Route{View: ViewChat, UserID: userID, ChatID: chatID}
}

// Parse resolves a path into a route. The root path redirects to login.
func Parse(path string) (Route, error) {
	path = strings.TrimSuffix(strings.TrimSpace(path), "/")
	if path == "" {
		// Root redirects to the credential form.
		return Login(), nil
	}
	if !strings.HasPrefix(path, "/") {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "login":
		return Login(), nil
	case len(parts) == 2 && parts[0] == "chat" && parts[1] != "":
		return Chat(parts[1], ""), nil
	case len(parts) == 3 && parts[0] == "chat" && parts[1] != "" && parts[2] != "":
		return Chat(parts[1], parts[2]), nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
}

// Path renders the route back into its canonical path.
func (r Route) Path() string {
	switch r.View {
	case ViewChat:
		if r.ChatID != "" {
			return "/chat/" + r.UserID + "/" + r.ChatID
		}
		return "/chat/" + r.UserID
	default:
		return "/login"
	}
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the navigation stack. Push adds an entry; Replace swaps the
// current one so back-navigation cannot return to it. Login→chat and
// logout→login both replace, matching the browser-history semantics of
// the flows.
type History struct {
	stack []Route
}

// NewHistory creates a history positioned at the given route.
func NewHistory(initial Route) *History {
	return &History{stack: []Route{initial}}
}

// Current returns the active route.
func (h *History) Current() Route {
	return h.stack[len(h.stack)-1]
}

// Push navigates to a route, keeping the current one reachable via Back.
func (h *History) Push(r Route) {
	h.stack = append(h.stack, r)
}

// Replace navigates to a route, discarding the current entry.
func (h *History) Replace(r Route) {
	h.stack[len(h.stack)-1] = r
}

// Back pops to the previous route. Returns false at the bottom of the
// stack, leaving the current route in place.
func (h *History) Back() bool {
	if len(h.stack) <= 1 {
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return true
}

// Len returns the stack depth.
func (h *History) Len() int {
	return len(h.stack)
}
