package models

import "time"

// Session is a per-conversation history identified by a "channel:chat" key.
type Session struct {
	Key       string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `json:"-"`
}

// SessionMeta is the first line written to a session's JSONL file.
type SessionMeta struct {
	Type      string    `json:"_type"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSummary describes a persisted session without loading its full
// message history, returned by Store.ListSessions.
type SessionSummary struct {
	Key       string
	UpdatedAt time.Time
}
