package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// cronParser accepts standard 5-field expressions plus the descriptor
// shorthands (@daily, @hourly, ...), grounded on internal/cron/schedule.go
// of the teacher.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// validateSchedule rejects a job whose schedule is malformed up front, per
// spec §4.7: add_job validates cron expressions; interval schedules accept
// any positive integer seconds.
func validateSchedule(job models.CronJob) error {
	switch job.ScheduleKind {
	case models.ScheduleCron:
		if job.CronExpr == "" {
			return fmt.Errorf("cron: cron expression required")
		}
		if _, err := cronParser.Parse(job.CronExpr); err != nil {
			return fmt.Errorf("cron: invalid cron expression %q: %w", job.CronExpr, err)
		}
		return nil
	case models.ScheduleInterval:
		if job.IntervalSecs <= 0 {
			return fmt.Errorf("cron: interval seconds must be positive")
		}
		return nil
	default:
		return fmt.Errorf("cron: unknown schedule kind %q", job.ScheduleKind)
	}
}

// nextRun computes the job's next_run_ms after now: for an interval
// schedule, now + seconds*1000; for a cron schedule, the next matching
// instant.
func nextRun(job models.CronJob, now time.Time) (int64, error) {
	switch job.ScheduleKind {
	case models.ScheduleInterval:
		return now.Add(time.Duration(job.IntervalSecs) * time.Second).UnixMilli(), nil
	case models.ScheduleCron:
		schedule, err := cronParser.Parse(job.CronExpr)
		if err != nil {
			return 0, fmt.Errorf("cron: invalid cron expression %q: %w", job.CronExpr, err)
		}
		return schedule.Next(now).UnixMilli(), nil
	default:
		return 0, fmt.Errorf("cron: unknown schedule kind %q", job.ScheduleKind)
	}
}
