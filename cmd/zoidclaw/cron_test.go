package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

func TestCronAddCmd_CronExpressionTakesScheduleKindCron(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, "cron:\n  file: "+filepath.Join(dir, "jobs.json")+"\n")

	cmd := buildCronAddCmd()
	cmd.SetArgs([]string{
		"--config", configPath,
		"--name", "daily-report",
		"--cron", "0 9 * * *",
		"--message", "good morning",
		"--channel", "cli",
		"--chat-id", "direct",
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cron add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Created cron job") {
		t.Fatalf("expected creation confirmation, got: %s", out.String())
	}

	store, err := openCronStore(configPath)
	if err != nil {
		t.Fatalf("openCronStore failed: %v", err)
	}
	jobs := store.List()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ScheduleKind != models.ScheduleCron || jobs[0].CronExpr != "0 9 * * *" {
		t.Fatalf("unexpected job: %+v", jobs[0])
	}
}

func TestCronAddCmd_IntervalFlagTakesScheduleKindInterval(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, "cron:\n  file: "+filepath.Join(dir, "jobs.json")+"\n")

	cmd := buildCronAddCmd()
	cmd.SetArgs([]string{
		"--config", configPath,
		"--name", "ping",
		"--every", "30",
		"--message", "ping",
		"--channel", "cli",
		"--chat-id", "direct",
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cron add failed: %v", err)
	}

	store, err := openCronStore(configPath)
	if err != nil {
		t.Fatalf("openCronStore failed: %v", err)
	}
	jobs := store.List()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ScheduleKind != models.ScheduleInterval || jobs[0].IntervalSecs != 30 {
		t.Fatalf("unexpected job: %+v", jobs[0])
	}
}

func TestCronListCmd_NoFileConfiguredIsAnError(t *testing.T) {
	configPath := writeTestConfig(t, "")

	cmd := buildCronListCmd()
	cmd.SetArgs([]string{"--config", configPath})
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when cron.file is not configured")
	}
}

func TestCronRemoveCmd_RemovesJobByID(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, "cron:\n  file: "+filepath.Join(dir, "jobs.json")+"\n")

	store, err := openCronStore(configPath)
	if err != nil {
		t.Fatalf("openCronStore failed: %v", err)
	}
	created, err := store.AddJob(context.Background(), models.CronJob{
		Name:         "temp",
		ScheduleKind: models.ScheduleInterval,
		IntervalSecs: 60,
		Channel:      "cli",
		ChatID:       "direct",
		Enabled:      true,
	})
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	cmd := buildCronRemoveCmd()
	cmd.SetArgs([]string{"--config", configPath, created.ID})
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cron remove failed: %v", err)
	}
	if !strings.Contains(out.String(), created.ID) {
		t.Fatalf("expected confirmation to name the removed id, got: %s", out.String())
	}

	reopened, err := openCronStore(configPath)
	if err != nil {
		t.Fatalf("openCronStore failed: %v", err)
	}
	if len(reopened.List()) != 0 {
		t.Fatalf("expected job to be removed, got %d remaining", len(reopened.List()))
	}
}
