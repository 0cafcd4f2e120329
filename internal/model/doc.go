// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation data structures shared between the
// chat view, the session service, and local storage.
//
// The central types are:
//   - Role: who sent a message (user or bot)
//   - Message: one immutable log entry with a correlation ID
//   - Log: the ordered, append-only conversation log
//
// Correlation IDs exist because sends are optimistic: the user message is
// appended before the network round-trip completes, and two rapid sends can
// resolve in either order. InsertReply uses the ID to put each reply next to
// the message that caused it.
package model
