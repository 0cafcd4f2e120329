// ragchat TUI - a terminal client for a RAG chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragchat/ragchat-tui/internal/api"
	"github.com/ragchat/ragchat-tui/internal/cli"
	"github.com/ragchat/ragchat-tui/internal/config"
	"github.com/ragchat/ragchat-tui/internal/route"
	"github.com/ragchat/ragchat-tui/internal/session"
	"github.com/ragchat/ragchat-tui/internal/storage"
	"github.com/ragchat/ragchat-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async notifications
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHistory:
		if err := cli.HandleHistory(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	// CLI flags override config
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	renderMarkdown := cfg.UI.RenderMarkdown && !args.NoMarkdown

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open local state: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// HTTP request logging goes to a file; stdout belongs to the TUI.
	logFile, err := tea.LogToFile(filepath.Join(filepath.Dir(store.Path()), "ragchat.log"), "ragchat")
	if err == nil {
		defer logFile.Close()
	}

	client := api.NewClient(cfg.API.BaseURL, store.Tokens()).
		WithTimeout(cfg.Timeout())
	svc := session.NewService(client, store.Tokens())

	// Resolve the initial route: an explicit path wins, otherwise the
	// client starts at the login view.
	initial := route.Login()
	if args.Path != "" {
		r, err := route.Parse(args.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		initial = r
	}

	app := ui.NewApp(svc, store, initial, cfg.ToastDuration(), renderMarkdown)

	// The 401 interception needs to know whether the login view is active,
	// and has to push the app back to it from a command goroutine.
	client.WithLoginViewCheck(app.OnLoginView)
	client.WithUnauthorizedHook(func() {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(ui.ForceLoginMsg{})
		}
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	// Store program reference for async operations
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running ragchat: %v\n", err)
		os.Exit(1)
	}
}
