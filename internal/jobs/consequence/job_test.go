package consequence

import (
	"context"
	"errors"
	"testing"

	conseqsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/consequences"
)

type sweeperStub struct {
	sweep       conseqsvc.SweepResult
	sweepErr    error
	reminders   conseqsvc.ReminderResult
	remindErr   error
	sweepCalls  int
	remindCalls int
}

func (s *sweeperStub) ProcessOverdue(context.Context) (conseqsvc.SweepResult, error) {
	s.sweepCalls++
	return s.sweep, s.sweepErr
}

func (s *sweeperStub) ProcessReminders(context.Context) (conseqsvc.ReminderResult, error) {
	s.remindCalls++
	return s.reminders, s.remindErr
}

func TestRunExecutesBothPhases(t *testing.T) {
	stub := &sweeperStub{
		sweep:     conseqsvc.SweepResult{Candidates: 3, Escalated: 2},
		reminders: conseqsvc.ReminderResult{Expiring: 1, Sent: 1},
	}
	job := New(stub, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run consequence job: %v", err)
	}
	if stub.sweepCalls != 1 || stub.remindCalls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", stub.sweepCalls, stub.remindCalls)
	}
}

func TestRunStopsWhenSweepFails(t *testing.T) {
	stub := &sweeperStub{sweepErr: errors.New("db down")}
	job := New(stub, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when sweep fails")
	}
	if stub.remindCalls != 0 {
		t.Fatal("reminders must not run after a failed sweep")
	}
}
