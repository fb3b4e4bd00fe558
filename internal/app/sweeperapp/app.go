package sweeperapp

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/config"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/jobs/consequence"
	conseqsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/consequences"
)

type reminderRunner interface {
	ProcessReminders(ctx context.Context) (conseqsvc.ReminderResult, error)
}

// App drives the consequence engine on two cadences: a full escalation pass
// on the sweep interval and a cheaper reminder-only pass in between.
type App struct {
	job       *consequence.Job
	reminders reminderRunner
	cfg       config.SweepConfig
	logger    *zap.Logger
}

func New(service *conseqsvc.Service, cfg config.SweepConfig, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 6 * time.Hour
	}
	return &App{
		job:       consequence.New(service, log),
		reminders: service,
		cfg:       cfg,
		logger:    log,
	}
}

// RunOnce executes a single full pass.
func (a *App) RunOnce(ctx context.Context) error {
	return a.job.Run(ctx)
}

// Run blocks until the context is cancelled. The first full pass happens
// immediately so a restarted sweeper does not wait a whole interval.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("sweeper started",
		zap.Duration("interval", a.cfg.Interval),
		zap.Duration("reminder_interval", a.cfg.ReminderInterval))

	if err := a.job.Run(ctx); err != nil {
		a.logger.Error("initial sweep pass failed", zap.Error(err))
	}

	sweepTicker := time.NewTicker(a.cfg.Interval)
	defer sweepTicker.Stop()
	reminderTicker := time.NewTicker(a.cfg.ReminderInterval)
	defer reminderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("sweeper stopping")
			return nil
		case <-sweepTicker.C:
			if err := a.job.Run(ctx); err != nil {
				a.logger.Error("sweep pass failed", zap.Error(err))
			}
		case <-reminderTicker.C:
			result, err := a.reminders.ProcessReminders(ctx)
			if err != nil {
				a.logger.Error("reminder pass failed", zap.Error(err))
				continue
			}
			if result.Sent > 0 {
				a.logger.Info("deadline reminders sent",
					zap.Int("expiring", result.Expiring),
					zap.Int("sent", result.Sent))
			}
		}
	}
}
