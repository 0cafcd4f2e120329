// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable client-side state for ragchat.
//
// One SQLite database holds both the identity token (a single key/value
// pair) and the locally persisted conversation transcripts. Callers reach
// the token exclusively through TokenStore so the write path stays
// single-sourced; nothing else in the program touches the kv table.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ragchat/ragchat-tui/internal/model"
)

const (
	// SchemaVersion tracks the database schema version for migrations.
	SchemaVersion = 1

	// TokenKey is the fixed key under which the identity token is stored.
	// Matches the backend's expectation of a single active token per client.
	TokenKey = "uuid"
)

// Schema is the SQLite schema for the client state database.
const Schema = `
-- Key/value table backing the token store
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Persisted transcript messages, one row per message
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    chat_uuid TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    correlation_id TEXT,
    created_at INTEGER NOT NULL -- Unix timestamp (nanoseconds)
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_uuid, created_at);
`

// ErrTokenNotFound is returned when no identity token is stored.
var ErrTokenNotFound = errors.New("identity token not found")

// =============================================================================
// STORE
// =============================================================================

// Store wraps the client state database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the state database at the default
// location, ~/.ragchat/ragchat.db.
func Open() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(homeDir, ".ragchat")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, "ragchat.db"))
}

// OpenPath opens the state database at an explicit path.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	// The client is single-threaded from the database's point of view;
	// one connection avoids SQLITE_BUSY on concurrent tea.Cmd goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.setMeta("schema_version", fmt.Sprintf("%d", SchemaVersion)); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		"meta:"+key, value)
	return err
}

// =============================================================================
// TOKEN STORE
// =============================================================================

// TokenStore is the single source of truth for the identity token.
// It is injected into the HTTP layer and the views; nothing reads the
// token from ambient state.
type TokenStore interface {
	// Get returns the stored token, or ErrTokenNotFound.
	Get() (string, error)
	// Set stores the token, replacing any previous one.
	Set(token string) error
	// Clear deletes the stored token. Clearing an absent token is not
	// an error: logout must succeed with no prior identity present.
	Clear() error
}

// Tokens returns the TokenStore backed by this database.
func (s *Store) Tokens() TokenStore {
	return (*tokenStore)(s)
}

type tokenStore Store

func (t *tokenStore) Get() (string, error) {
	var value string
	err := t.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, TokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return value, nil
}

func (t *tokenStore) Set(token string) error {
	_, err := t.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		TokenKey, token)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (t *tokenStore) Clear() error {
	if _, err := t.db.Exec(`DELETE FROM kv WHERE key = ?`, TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSCRIPT HISTORY
// =============================================================================

// ChatMeta contains metadata for listing locally stored conversations.
type ChatMeta struct {
	ChatUUID     string
	MessageCount int
	UpdatedAt    time.Time
	Preview      string // First user message, truncated
}

// AppendMessage persists one message of a chat transcript.
func (s *Store) AppendMessage(chatUUID string, m model.Message) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO messages (id, chat_uuid, role, content, correlation_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, chatUUID, string(m.Role), m.Content, m.CorrelationID, m.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}
	return nil
}

// LoadChat returns the persisted transcript for a chat, oldest first.
// An unknown chat yields an empty slice, not an error: resuming a link
// the client has never seen locally starts a fresh log.
func (s *Store) LoadChat(chatUUID string) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, correlation_id, created_at
		 FROM messages WHERE chat_uuid = ? ORDER BY created_at, id`,
		chatUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			m     model.Message
			role  string
			corr  sql.NullString
			nanos int64
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &corr, &nanos); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		m.CorrelationID = corr.String
		m.Timestamp = time.Unix(0, nanos)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ListChats returns metadata for all locally stored chats, most recent first.
func (s *Store) ListChats() ([]ChatMeta, error) {
	rows, err := s.db.Query(
		`SELECT chat_uuid, COUNT(*), MAX(created_at)
		 FROM messages GROUP BY chat_uuid ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var metas []ChatMeta
	for rows.Next() {
		var (
			meta  ChatMeta
			nanos int64
		)
		if err := rows.Scan(&meta.ChatUUID, &meta.MessageCount, &nanos); err != nil {
			return nil, err
		}
		meta.UpdatedAt = time.Unix(0, nanos)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range metas {
		metas[i].Preview = s.chatPreview(metas[i].ChatUUID)
	}
	return metas, nil
}

// DeleteChat removes a chat's persisted transcript.
func (s *Store) DeleteChat(chatUUID string) error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE chat_uuid = ?`, chatUUID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// chatPreview returns the first user message of a chat, truncated.
func (s *Store) chatPreview(chatUUID string) string {
	var content string
	err := s.db.QueryRow(
		`SELECT content FROM messages
		 WHERE chat_uuid = ? AND role = ? ORDER BY created_at, id LIMIT 1`,
		chatUUID, string(model.RoleUser)).Scan(&content)
	if err != nil {
		return ""
	}
	return model.Message{Content: content}.Preview(80)
}
