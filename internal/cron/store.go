// Package cron persists scheduled jobs as a single JSON document and
// computes which are due to fire, per spec §4.7.
//
// Grounded on internal/cron/execution_store.go's rewrite-on-every-mutation
// discipline and internal/sessions/file.go's temp-file-then-rename pattern
// for atomic persistence, narrowed to the spec's single-document
// {jobs:[CronJob…]} shape (no separate execution-history store: out of
// scope for this spec).
package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// document is the on-disk shape: a single JSON object wrapping the job list.
type document struct {
	Jobs []models.CronJob `json:"jobs"`
}

// Store owns the persisted job list: an in-memory cache backed by a single
// JSON file, rewritten atomically on every mutation.
type Store struct {
	path string

	mu   sync.Mutex
	jobs map[string]models.CronJob
}

// NewStore creates a Store backed by path. If path does not yet exist the
// store starts empty; it is created on the first mutation.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, jobs: make(map[string]models.CronJob)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cron store: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse cron store: %w", err)
	}
	for _, j := range doc.Jobs {
		s.jobs[j.ID] = j
	}
	return nil
}

// writeLocked rewrites the backing file with the current job set. Caller
// must hold s.mu.
func (s *Store) writeLocked() error {
	doc := document{Jobs: make([]models.CronJob, 0, len(s.jobs))}
	for _, j := range s.jobs {
		doc.Jobs = append(doc.Jobs, j)
	}
	sort.Slice(doc.Jobs, func(i, j int) bool { return doc.Jobs[i].ID < doc.Jobs[j].ID })

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cron store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cron store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "cron-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp cron file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cron file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cron file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename cron file: %w", err)
	}
	return nil
}

// AddJob validates job's schedule, assigns an id if absent, computes its
// first next_run_ms, and persists it. A cron-kind job whose expression
// fails to parse is rejected up front; an interval-kind job accepts any
// positive integer seconds.
func (s *Store) AddJob(ctx context.Context, job models.CronJob) (models.CronJob, error) {
	if err := validateSchedule(job); err != nil {
		return models.CronJob{}, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	next, err := nextRun(job, time.Now())
	if err != nil {
		return models.CronJob{}, err
	}
	job.NextRunMillis = next

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	if err := s.writeLocked(); err != nil {
		return models.CronJob{}, err
	}
	return job, nil
}

// RemoveJob deletes a job by id and persists the result. Removing an
// unknown id is not an error.
func (s *Store) RemoveJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return nil
	}
	delete(s.jobs, id)
	return s.writeLocked()
}

// Get returns a copy of the job by id.
func (s *Store) Get(id string) (models.CronJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// List returns every job, sorted by id.
func (s *Store) List() []models.CronJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CronJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetDueJobs returns and atomically mutates every enabled job whose
// next_run_ms is zero or in the past: last_run is set to now, next_run_ms
// is recomputed, and a clone of the fired job is returned. The store is
// re-persisted only if at least one job fired, per spec §4.7.
func (s *Store) GetDueJobs(ctx context.Context, now time.Time) ([]models.CronJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []models.CronJob
	nowMillis := now.UnixMilli()
	for id, job := range s.jobs {
		if !job.Enabled {
			continue
		}
		if job.NextRunMillis != 0 && job.NextRunMillis > nowMillis {
			continue
		}
		job.LastRun = now
		next, err := nextRun(job, now)
		if err != nil {
			continue
		}
		job.NextRunMillis = next
		s.jobs[id] = job
		fired = append(fired, job)
	}

	if len(fired) == 0 {
		return nil, nil
	}
	if err := s.writeLocked(); err != nil {
		return nil, err
	}
	sort.Slice(fired, func(i, j int) bool { return fired[i].ID < fired[j].ID })
	return fired, nil
}
