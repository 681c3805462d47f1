// Package worker runs the scheduled jobs. The only one today is the daily
// reminder that pushes calendar notes and due tasks every morning.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mykocapp/notifier/internal/config"
	"github.com/mykocapp/notifier/internal/service/notifier"
	"github.com/mykocapp/notifier/pkg/logger"
)

// Reminder is the part of the notification service the worker drives.
type Reminder interface {
	RunDailyReminder(ctx context.Context, now time.Time) *notifier.Summary
}

// ReminderWorker triggers the daily reminder on a cron schedule pinned to a
// configured timezone. The users' calendar day, not the host's, decides
// which notes and tasks are due.
type ReminderWorker struct {
	svc    Reminder
	cron   *cron.Cron
	spec   string
	loc    *time.Location
	logger *logger.Logger
}

func NewReminderWorker(svc Reminder, cfg config.SchedulerConfig, log *logger.Logger) (*ReminderWorker, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
	}

	return &ReminderWorker{
		svc:    svc,
		spec:   cfg.Cron,
		loc:    loc,
		logger: log.WithComponent("reminder-worker"),
	}, nil
}

// Start blocks until ctx is cancelled. The cron chain recovers panics so a
// bad run never kills the worker process.
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.cron = cron.New(
		cron.WithLocation(w.loc),
		cron.WithChain(cron.Recover(w.logger)),
	)

	if _, err := w.cron.AddFunc(w.spec, func() { w.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	w.logger.Info("reminder worker started", "cron", w.spec, "timezone", w.loc.String())
	w.cron.Start()

	<-ctx.Done()
	w.logger.Info("reminder worker shutting down")

	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (w *ReminderWorker) runOnce(ctx context.Context) {
	now := time.Now().In(w.loc)
	summary := w.svc.RunDailyReminder(ctx, now)
	w.logger.Info("daily reminder completed",
		"day", summary.Ref,
		"recipients", len(summary.Outcomes),
		"sent", summary.Sent(),
	)
}
