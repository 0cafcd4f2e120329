// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - the `ragchat history` command: inspect and prune the
// locally persisted transcripts without starting the TUI.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ragchat/ragchat-tui/internal/storage"
)

// HandleHistory lists or deletes locally stored conversations.
func HandleHistory(args Args) error {
	store, err := storage.Open()
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "list":
		return listChats(store)
	case "delete", "rm":
		if len(args.Raw) == 0 {
			return fmt.Errorf("usage: ragchat history delete <chat-uuid>")
		}
		return deleteChat(store, args.Raw[0])
	default:
		return fmt.Errorf("unknown history subcommand: %s", args.Subcommand)
	}
}

func listChats(store *storage.Store) error {
	metas, err := store.ListChats()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No stored conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHAT\tMESSAGES\tUPDATED\tPREVIEW")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			m.ChatUUID, m.MessageCount, m.UpdatedAt.Format("2006-01-02 15:04"), m.Preview)
	}
	return w.Flush()
}

func deleteChat(store *storage.Store, chatUUID string) error {
	if err := store.DeleteChat(chatUUID); err != nil {
		return err
	}
	fmt.Printf("Deleted transcript for chat %s\n", chatUUID)
	return nil
}
