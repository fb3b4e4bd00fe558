package consequence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	conseqsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/consequences"
)

type sweeper interface {
	ProcessOverdue(ctx context.Context) (conseqsvc.SweepResult, error)
	ProcessReminders(ctx context.Context) (conseqsvc.ReminderResult, error)
}

// Job runs one pass of the consequence engine: escalate what is overdue,
// remind who is about to be.
type Job struct {
	sweeper sweeper
	logger  *zap.Logger
}

func New(svc sweeper, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{sweeper: svc, logger: logger}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return fmt.Errorf("consequence job has no sweeper configured")
	}

	sweep, err := j.sweeper.ProcessOverdue(ctx)
	if err != nil {
		return fmt.Errorf("process overdue compliances: %w", err)
	}
	if sweep.Candidates > 0 {
		j.logger.Info("overdue sweep completed",
			zap.Int("candidates", sweep.Candidates),
			zap.Int("escalated", sweep.Escalated),
			zap.Int("failed", sweep.Failed))
	}

	reminders, err := j.sweeper.ProcessReminders(ctx)
	if err != nil {
		return fmt.Errorf("process deadline reminders: %w", err)
	}
	if reminders.Sent > 0 {
		j.logger.Info("deadline reminders sent",
			zap.Int("expiring", reminders.Expiring),
			zap.Int("sent", reminders.Sent))
	}

	return nil
}
