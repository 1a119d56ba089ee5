package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tiresync/config"
)

// ScheduleOff disables a registered job when used as a CRON_<JOB> override.
const ScheduleOff = "off"

// StartCron schedules every registered job and starts the scheduler.
// A job still running when its next tick fires is skipped, and panics are recovered.
func StartCron(log *zap.Logger) (*cron.Cron, error) {
	l := zapLogger{log.Named("cron").Sugar()}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	overrides := config.CronSchedules()
	for name, j := range Jobs() {
		sched := j.Schedule
		if o := overrides[name]; o != "" {
			sched = o
		}
		if sched == ScheduleOff {
			log.Info("cron job disabled", zap.String("job", name))
			continue
		}
		if _, err := c.AddFunc(sched, runner(j, log)); err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
		log.Info("cron job scheduled", zap.String("job", name), zap.String("schedule", sched))
	}
	c.Start()
	return c, nil
}

// runner wraps a job for the scheduler, logging its outcome and duration.
func runner(j Job, log *zap.Logger) func() {
	log = log.With(zap.String("job", j.Name))
	return func() {
		start := time.Now()
		if err := j.Run(context.Background()); err != nil {
			log.Error("cron job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
			return
		}
		log.Info("cron job finished", zap.Duration("took", time.Since(start)))
	}
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
