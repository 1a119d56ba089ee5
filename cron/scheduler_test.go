package cron

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func noopJob(context.Context, ...string) error { return nil }

func TestStartCron_SchedulesRegisteredJobs(t *testing.T) {
	Register("schedulertestjob", "@every 1h", noopJob)
	defer Unregister("schedulertestjob")

	c, err := StartCron(zap.NewNop())
	if err != nil {
		t.Fatalf("StartCron: %v", err)
	}
	defer c.Stop()

	if n := len(c.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestStartCron_InvalidSchedule(t *testing.T) {
	Register("badschedulejob", "every now and then", noopJob)
	defer Unregister("badschedulejob")

	if _, err := StartCron(zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRunner_LogsFailureWithJobName(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	job := Job{Name: "failing", Run: func(context.Context, ...string) error { return errors.New("feed down") }}

	runner(job, zap.New(core))()

	entries := logs.FilterMessage("cron job failed").All()
	if len(entries) != 1 {
		t.Fatalf("failure logs = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["job"] != "failing" || fields["error"] != "feed down" {
		t.Errorf("fields = %v", fields)
	}
}
