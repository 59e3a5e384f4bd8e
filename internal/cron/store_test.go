package cron

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cron.json"))
	require.NoError(t, err)
	return s
}

func TestStore_AddJobRejectsInvalidCronExpression(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleCron,
		CronExpr:     "not a cron expression",
		Enabled:      true,
	})
	assert.Error(t, err)
}

func TestStore_AddJobRejectsNonPositiveInterval(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 0,
		Enabled:      true,
	})
	assert.Error(t, err)
}

func TestStore_AddJobAssignsIDAndNextRun(t *testing.T) {
	s := newTestStore(t)
	job, err := s.AddJob(context.Background(), models.CronJob{
		Name:         "reminder",
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 60,
		Message:      "time to stretch",
		Channel:      "telegram",
		ChatID:       "123",
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Greater(t, job.NextRunMillis, time.Now().UnixMilli())
}

func TestStore_AddRemoveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	job, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 30,
		Enabled:      true,
	})
	require.NoError(t, err)
	require.Len(t, s.List(), 1)

	require.NoError(t, s.RemoveJob(context.Background(), job.ID))
	assert.Empty(t, s.List())
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cron.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	job, err := s.AddJob(context.Background(), models.CronJob{
		Name:         "heartbeat ping",
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 10,
		Enabled:      true,
	})
	require.NoError(t, err)

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	got, ok := reloaded.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, "heartbeat ping", got.Name)
}

func TestStore_GetDueJobsFiresOnlyEnabledPastDue(t *testing.T) {
	s := newTestStore(t)
	past, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 3600,
		Enabled:      true,
	})
	require.NoError(t, err)

	s.mu.Lock()
	j := s.jobs[past.ID]
	j.NextRunMillis = time.Now().Add(-time.Minute).UnixMilli()
	s.jobs[past.ID] = j
	s.mu.Unlock()

	disabled, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 3600,
		Enabled:      false,
	})
	require.NoError(t, err)
	s.mu.Lock()
	dj := s.jobs[disabled.ID]
	dj.NextRunMillis = time.Now().Add(-time.Minute).UnixMilli()
	s.jobs[disabled.ID] = dj
	s.mu.Unlock()

	due, err := s.GetDueJobs(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)
	assert.False(t, due[0].LastRun.IsZero())
	assert.Greater(t, due[0].NextRunMillis, time.Now().UnixMilli())
}

func TestStore_GetDueJobsNoneDueReturnsEmptyWithoutPersisting(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 3600,
		Enabled:      true,
	})
	require.NoError(t, err)
	require.NoError(t, os.Remove(s.path))

	due, err := s.GetDueJobs(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.NoFileExists(t, s.path)
}

func TestStore_CronScheduleComputesNextMatchingInstant(t *testing.T) {
	s := newTestStore(t)
	job, err := s.AddJob(context.Background(), models.CronJob{
		ScheduleKind: models.ScheduleCron,
		CronExpr:     "0 0 * * *",
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.Greater(t, job.NextRunMillis, time.Now().UnixMilli())
}
