// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the ragchat command line.
//
// ragchat is TUI-first: a bare invocation (or a path argument such as
// /chat/u-42/c-7) launches the interface, and the handful of utility
// commands stay out of its way.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Path is an optional resume link, e.g. /chat/u-42/c-7. Empty means
	// start at the login view.
	Path string

	// Global flags
	APIURL     string // --api-url overrides the configured backend
	NoMarkdown bool   // --no-markdown disables glamour rendering

	// Command-specific
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `ragchat - terminal client for a RAG chat backend

Usage:
  ragchat                        Start the TUI at the login view
  ragchat /chat/<user>/<chat>    Resume a conversation by its link
  ragchat history                List locally stored conversations
  ragchat history delete <chat>  Delete a stored transcript
  ragchat version                Show version information
  ragchat help                   Show this help

Global Flags:
  --api-url URL   Override the backend base URL
  --no-markdown   Render replies as plain text

Configuration:
  ~/.ragchat/config.toml         Settings file (created on first save)
  RAGCHAT_API_URL                Environment override for the backend URL
  RAGCHAT_TIMEOUT_SECS           Environment override for the request timeout
`

// Parse reads os.Args and resolves the command to run.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		if len(remaining) > 0 {
			args.Path = remaining[0]
		}
		return CmdTUI, args

	case "history", "chats":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
			args.Raw = remaining[1:]
		}
		return CmdHistory, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args
	}

	// A path argument launches the TUI directly at that route.
	if strings.HasPrefix(cmd, "/") {
		args.Path = remaining0(argv, cmd)
		return CmdTUI, args
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
	return CmdHelp, args
}

// remaining0 recovers the original (case-preserved) spelling of the first
// non-flag argument; route identifiers are case-sensitive.
func remaining0(argv []string, lowered string) string {
	for _, a := range argv {
		if strings.ToLower(a) == lowered {
			return a
		}
	}
	return lowered
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--api-url" && i+1 < len(argv):
			i++
			args.APIURL = argv[i]
		case strings.HasPrefix(arg, "--api-url="):
			args.APIURL = strings.TrimPrefix(arg, "--api-url=")
		case arg == "--no-markdown":
			args.NoMarkdown = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("ragchat %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
}

// HandleHelp prints usage information.
func HandleHelp() {
	fmt.Print(usageText)
}
