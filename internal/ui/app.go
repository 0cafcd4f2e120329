// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui contains the root Bubble Tea model that switches between the
// login and chat views according to the routing layer.
package ui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragchat/ragchat-tui/internal/route"
	"github.com/ragchat/ragchat-tui/internal/session"
	"github.com/ragchat/ragchat-tui/internal/storage"
	"github.com/ragchat/ragchat-tui/internal/ui/chat"
	"github.com/ragchat/ragchat-tui/internal/ui/components"
	"github.com/ragchat/ragchat-tui/internal/ui/login"
)

// ForceLoginMsg is sent from outside the event loop when a 401 evicted the
// identity token; the app drops to the login view, replacing history.
type ForceLoginMsg struct{}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root model.
type App struct {
	svc     *session.Service
	store   *storage.Store
	history *route.History
	toasts  *components.ToastManager

	loginView login.Model
	chatView  chat.Model

	// onLogin mirrors the current view for the HTTP layer's 401 check,
	// which runs on command goroutines.
	onLogin *atomic.Bool

	renderMarkdown bool
	width          int
	height         int
}

// NewApp creates the root model positioned at the initial route.
func NewApp(svc *session.Service, store *storage.Store, initial route.Route, toastDuration time.Duration, renderMarkdown bool) *App {
	a := &App{
		svc:            svc,
		store:          store,
		history:        route.NewHistory(initial),
		toasts:         components.NewToastManager(toastDuration),
		onLogin:        &atomic.Bool{},
		renderMarkdown: renderMarkdown,
	}
	a.mount(initial)
	return a
}

// OnLoginView reports whether the login view is active. Safe to call from
// command goroutines; wired into the HTTP client's 401 interception.
func (a *App) OnLoginView() bool {
	return a.onLogin.Load()
}

// mount constructs the view for a route. The chat view resolves its session
// scope from the route identifiers exactly once, here.
func (a *App) mount(r route.Route) {
	switch r.View {
	case route.ViewChat:
		scope := session.Scope{UserID: r.UserID, ChatID: r.ChatID}
		a.chatView = chat.New(scope, a.svc, a.store, a.toasts, a.renderMarkdown)
		a.onLogin.Store(false)
	default:
		a.loginView = login.New(a.svc, a.toasts)
		a.onLogin.Store(true)
	}
	if a.width > 0 {
		a.forwardSize()
	}
}

func (a *App) forwardSize() {
	msg := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	if a.history.Current().View == route.ViewChat {
		a.chatView, _ = a.chatView.Update(msg)
	} else {
		a.loginView, _ = a.loginView.Update(msg)
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.history.Current().View == route.ViewChat {
		return a.chatView.Init()
	}
	return a.loginView.Init()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case login.LoggedInMsg:
		// Replace history so back-navigation cannot reach the form again.
		target := route.Chat(msg.Entry.UserID, msg.Entry.ChatID)
		a.history.Replace(target)
		a.mount(target)
		return a, a.chatView.Init()

	case chat.LoggedOutMsg:
		if err := a.svc.Logout(); err != nil {
			// Eviction failed but the user still leaves the chat.
			a.history.Replace(route.Login())
			a.mount(route.Login())
			return a, tea.Batch(a.loginView.Init(), a.toasts.Error("Could not clear stored session."))
		}
		a.history.Replace(route.Login())
		a.mount(route.Login())
		return a, a.loginView.Init()

	case ForceLoginMsg:
		// Token already evicted by the HTTP layer.
		if a.history.Current().View == route.ViewLogin {
			return a, nil
		}
		a.history.Replace(route.Login())
		a.mount(route.Login())
		return a, tea.Batch(a.loginView.Init(), a.toasts.Error("Session expired. Please log in again."))
	}

	// Delegate everything else to the active view.
	var cmd tea.Cmd
	if a.history.Current().View == route.ViewChat {
		a.chatView, cmd = a.chatView.Update(msg)
	} else {
		a.loginView, cmd = a.loginView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if a.history.Current().View == route.ViewChat {
		return a.chatView.View()
	}
	return a.loginView.View()
}

// CurrentRoute returns the active route, mainly for tests.
func (a *App) CurrentRoute() route.Route {
	return a.history.Current()
}
