package models

import "time"

// ScheduleKind discriminates CronJob schedule shapes.
type ScheduleKind string

const (
	ScheduleCron     ScheduleKind = "cron"
	ScheduleInterval ScheduleKind = "interval"
)

// CronJob is a persisted scheduled job that dispatches a message payload
// to a target channel/chat on a cron expression or fixed interval.
type CronJob struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ScheduleKind  ScheduleKind `json:"schedule_kind"`
	CronExpr      string       `json:"cron_expr,omitempty"`
	IntervalSecs  int          `json:"interval_secs,omitempty"`
	Message       string       `json:"message"`
	Channel       string       `json:"channel"`
	ChatID        string       `json:"chat_id"`
	Enabled       bool         `json:"enabled"`
	CreatedAt     time.Time    `json:"created_at"`
	LastRun       time.Time    `json:"last_run,omitempty"`
	NextRunMillis int64        `json:"next_run_ms,omitempty"`
}
