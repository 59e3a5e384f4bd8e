// Package skills loads skill definitions (a YAML-frontmatter-tagged
// markdown body per skill, one directory per skill) from a single
// directory and keeps them current via a debounced fsnotify watch.
//
// Grounded on the teacher's internal/skills package, narrowed from its
// multi-source (local/git/registry) discovery with priority-based
// conflict resolution to the spec's single workspace skills directory.
package skills

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

const defaultDebounce = 250 * time.Millisecond

// Store discovers and caches skills found under a directory, one
// subdirectory per skill, each containing a SKILL.md file.
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	skills map[string]models.SkillEntry

	watchMu     sync.Mutex
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	watchWg     sync.WaitGroup
}

// New creates a skill store rooted at dir. Load must be called before any
// skill is visible.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		logger: logger.With("component", "skills"),
		skills: make(map[string]models.SkillEntry),
	}
}

// Load scans dir for skill subdirectories and replaces the cached set.
// A missing directory is not an error — it yields zero skills.
func (s *Store) Load(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if os.IsNotExist(err) {
		s.replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat skills dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("skills path is not a directory: %s", s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read skills dir: %w", err)
	}

	found := make(map[string]models.SkillEntry)
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !entry.IsDir() {
			continue
		}

		skillDir := filepath.Join(s.dir, entry.Name())
		skillFile := filepath.Join(skillDir, Filename)
		data, err := os.ReadFile(skillFile)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			s.logger.Warn("failed to read skill file", "path", skillFile, "error", err)
			continue
		}

		skill, err := parseSkill(data, skillDir)
		if err != nil {
			s.logger.Warn("failed to parse skill", "path", skillFile, "error", err)
			continue
		}

		found[skill.Name] = skill
	}

	s.replace(found)
	s.logger.Info("loaded skills", "count", len(found), "dir", s.dir)
	return nil
}

func (s *Store) replace(found map[string]models.SkillEntry) {
	s.mu.Lock()
	s.skills = found
	if s.skills == nil {
		s.skills = make(map[string]models.SkillEntry)
	}
	s.mu.Unlock()
}

// Get returns a single skill's frontmatter-stripped body by name.
func (s *Store) Get(name string) (models.SkillEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.skills[name]
	return entry, ok
}

// All returns every discovered skill, sorted by name, for the context
// builder's skills-summary section.
func (s *Store) All() []models.SkillEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SkillEntry, 0, len(s.skills))
	for _, entry := range s.skills {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Watch starts a debounced fsnotify watch over dir, reloading the skill
// set on any create/write/remove/rename event. Only dir itself is
// watched, not the per-skill subdirectories: adding, removing or renaming
// a skill directory triggers a reload, but editing a SKILL.md inside an
// existing skill directory does not. Grounded on
// internal/skills/manager.go's watchLoop.
func (s *Store) Watch(ctx context.Context) error {
	s.watchMu.Lock()
	if s.watcher != nil {
		s.watchMu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.watchMu.Unlock()
		return fmt.Errorf("create skill watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		s.watchMu.Unlock()
		_ = watcher.Close()
		return fmt.Errorf("watch skills dir: %w", err)
	}
	s.watcher = watcher
	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	s.watchMu.Unlock()

	s.watchWg.Add(1)
	go s.watchLoop(watchCtx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer s.watchWg.Done()

	var mu sync.Mutex
	var timer *time.Timer
	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(defaultDebounce, func() {
			if err := s.Load(context.Background()); err != nil {
				s.logger.Warn("skill reload failed", "error", err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("skill watch error", "error", err)
		}
	}
}

// Close stops any active watch.
func (s *Store) Close() error {
	s.watchMu.Lock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	watcher := s.watcher
	s.watcher = nil
	s.watchMu.Unlock()

	if watcher != nil {
		_ = watcher.Close()
	}
	s.watchWg.Wait()
	return nil
}
