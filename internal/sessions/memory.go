package sessions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// MemoryStore is a pure in-memory Store implementation: no disk I/O.
// The serve command uses it when sessions.dir is empty; tests use it too.
//
// Grounded directly on internal/sessions/memory.go of the teacher.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) GetOrCreate(ctx context.Context, key string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return cloneSession(s), nil
	}
	now := time.Now()
	s := &models.Session{Key: key, CreatedAt: now, UpdatedAt: now}
	m.sessions[key] = s
	return cloneSession(s), nil
}

func (m *MemoryStore) Append(ctx context.Context, key string, msg models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return errors.New("session not found: " + key)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, key string) error {
	// No-op: MemoryStore has no backing disk representation.
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.sessions[key]; !ok {
		return errors.New("session not found: " + key)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) GetHistory(ctx context.Context, key string, n int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	if n <= 0 || n >= len(s.Messages) {
		return append([]models.ChatMessage(nil), s.Messages...), nil
	}
	return append([]models.ChatMessage(nil), s.Messages[len(s.Messages)-n:]...), nil
}

func (m *MemoryStore) GetHistoryWithinBudget(ctx context.Context, key string, maxTokens int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	return withinBudget(s.Messages, maxTokens), nil
}

func (m *MemoryStore) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SessionSummary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, models.SessionSummary{Key: s.Key, UpdatedAt: s.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func cloneSession(s *models.Session) *models.Session {
	clone := *s
	clone.Messages = append([]models.ChatMessage(nil), s.Messages...)
	return &clone
}
