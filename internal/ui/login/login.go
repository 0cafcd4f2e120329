// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the credential form view for the TUI.
//
// The view collects a username and password and hands them to the session
// service, or enters anonymously. Failures surface as transient toasts
// mapped through a fixed error table; navigation away from the form only
// happens on success.
package login

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragchat/ragchat-tui/internal/api"
	"github.com/ragchat/ragchat-tui/internal/session"
	"github.com/ragchat/ragchat-tui/internal/ui/components"
	"github.com/ragchat/ragchat-tui/internal/ui/styles"
)

// Authenticator is the slice of the session service the login view needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Entry, error)
	EnterUnlogged(ctx context.Context) (*session.Entry, error)
}

// =============================================================================
// MESSAGES
// =============================================================================

// LoggedInMsg reports a successful login or anonymous entry to the app.
type LoggedInMsg struct {
	Entry *session.Entry
}

// resultMsg carries the outcome of an authentication command.
type resultMsg struct {
	entry     *session.Entry
	err       error
	anonymous bool
}

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the keyboard bindings for the login form.
type KeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Anonymous key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default login bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-Tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "log in"),
		),
		Anonymous: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "continue without login"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// =============================================================================
// MODEL
// =============================================================================

const (
	fieldUsername = iota
	fieldPassword
	fieldCount
)

// Model is the Bubble Tea model for the login view.
type Model struct {
	auth    Authenticator
	theme   *styles.Theme
	keyMap  KeyMap
	toasts  *components.ToastManager
	spinner spinner.Model

	username textinput.Model
	password textinput.Model
	focus    int

	busy   bool
	width  int
	height int
}

// New creates the login view.
func New(auth Authenticator, toasts *components.ToastManager) Model {
	username := textinput.New()
	username.Placeholder = "Enter your username"
	username.Prompt = ""
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Enter your password"
	password.Prompt = ""
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return Model{
		auth:     auth,
		theme:    styles.DefaultTheme(),
		keyMap:   DefaultKeyMap(),
		toasts:   toasts,
		spinner:  sp,
		username: username,
		password: password,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			// A submission is in flight; only quit gets through.
			if key.Matches(msg, m.keyMap.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.NextField):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keyMap.PrevField):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keyMap.Anonymous):
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.enterAnonymouslyCmd())
		case key.Matches(msg, m.keyMap.Submit):
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.loginCmd(m.username.Value(), m.password.Value()))
		}

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toasts.Error(MapError(msg.err, msg.anonymous))
		}
		return m, func() tea.Msg { return LoggedInMsg{Entry: msg.entry} }

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	if focus == fieldUsername {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.password.Focus()
		m.username.Blur()
	}
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loginCmd(username, password string) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		entry, err := auth.Login(context.Background(), username, password)
		return resultMsg{entry: entry, err: err}
	}
}

func (m Model) enterAnonymouslyCmd() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		entry, err := auth.EnterUnlogged(context.Background())
		return resultMsg{entry: entry, err: err, anonymous: true}
	}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// MapError converts an authentication failure into its user-facing message.
func MapError(err error, anonymous bool) string {
	switch {
	case errors.Is(err, api.ErrInvalidCredentials):
		if anonymous {
			return "Unable to continue without login. Please try again."
		}
		return "Invalid username or password. Please try again."
	case errors.Is(err, api.ErrBadRequest):
		return "Please check your input and try again."
	case errors.Is(err, api.ErrTimeout):
		return "Request timed out. Please try again."
	case errors.Is(err, api.ErrNetworkUnreachable):
		return "Network error. Please check your connection."
	default:
		return "Login failed. Please try again."
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	title := m.theme.Title.Render("RAG chat")
	subtitle := m.theme.Subtitle.Render("Sign in to start a conversation")

	usernameBox := m.theme.InputBox
	passwordBox := m.theme.InputBox
	if m.focus == fieldUsername {
		usernameBox = m.theme.FocusedBox
	} else {
		passwordBox = m.theme.FocusedBox
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		m.theme.Subtitle.Render("Username"),
		usernameBox.Width(36).Render(m.username.View()),
		m.theme.Subtitle.Render("Password"),
		passwordBox.Width(36).Render(m.password.View()),
		"",
		m.statusLine(),
	)

	card := m.theme.Card.Render(form)

	help := m.theme.Help.Render("Enter: log in • C-n: continue without login • Tab: switch field • C-c: quit")

	content := lipgloss.JoinVertical(lipgloss.Center, card, "", help)
	if toasts := m.toasts.View(m.width); toasts != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", toasts)
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) statusLine() string {
	if m.busy {
		return m.spinner.View() + m.theme.Subtitle.Render(" signing in...")
	}
	return m.theme.Button.Render("Log In") + "  " + m.theme.GhostBtn.Render("Continue without login")
}
