// Package memorynotes implements the free-form note store surfaced by the
// context builder's Memory section (spec §4.5).
//
// The teacher's memory subsystem (internal/memory/backend/*) is
// vector-retrieval-backed (pgvector, lancedb, sqlitevec) — a scale and a
// runtime dependency the spec's single-binary "free-form notes" surface
// doesn't call for. No corpus library fits this narrower shape, so this
// package is deliberately stdlib-only: a mutex-guarded slice. See
// DESIGN.md for the full justification.
package memorynotes

import (
	"context"
	"sync"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Store holds an ordered list of free-form notes in memory.
type Store struct {
	mu    sync.RWMutex
	notes []models.MemoryNote
}

// New creates an empty note store.
func New() *Store {
	return &Store{}
}

// Add appends a note.
func (s *Store) Add(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	s.mu.Lock()
	s.notes = append(s.notes, models.MemoryNote{Text: text})
	s.mu.Unlock()
	return nil
}

// All returns every stored note, oldest first.
func (s *Store) All(ctx context.Context) []models.MemoryNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MemoryNote, len(s.notes))
	copy(out, s.notes)
	return out
}

// Clear removes every stored note.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.notes = nil
	s.mu.Unlock()
}
