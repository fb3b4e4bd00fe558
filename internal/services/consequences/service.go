package consequences

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/metrics"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

type ComplianceStore interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, complianceID string) (model.Compliance, error)
	ListOverdueCandidates(ctx context.Context, now time.Time) ([]model.Compliance, error)
	ListExpiringSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Compliance, error)
	ApplyEscalation(ctx context.Context, tx pgx.Tx, complianceID string, upd pgrepo.EscalationUpdate, now time.Time) error
	ResetWarningLevel(ctx context.Context, tx pgx.Tx, complianceID string, now time.Time) error
}

type ClaimStore interface {
	GetByID(ctx context.Context, claimID string) (model.Claim, error)
}

type HiringClient interface {
	FindByID(ctx context.Context, hiringID string) (model.Hiring, error)
}

type UserClient interface {
	SuspendUser(ctx context.Context, userID string, days int, reason string) error
	BanUser(ctx context.Context, userID, reason string) error
}

type ReminderStore interface {
	MarkSent(ctx context.Context, complianceID string, day time.Time, ttl time.Duration) (bool, error)
}

type Notifier interface {
	DeadlineReminder(ctx context.Context, userID, complianceID string, deadline time.Time) error
	EscalationWarning(ctx context.Context, userID, complianceID string, warningLevel int, newDeadline time.Time) error
	ComplianceEscalated(ctx context.Context, userID, complianceID string) error
	NonComplianceNotice(ctx context.Context, userID, complianceID string, warningLevel int) error
}

type Config struct {
	SuspensionDays int
	ReminderWindow time.Duration
}

// Service is the consequence engine behind overdue compliance items. Each
// sweep advances an item at most one tier, so a user always gets the full
// extension window before the next consequence lands.
type Service struct {
	withTx      func(context.Context, func(context.Context, pgx.Tx) error) error
	compliances ComplianceStore
	claims      ClaimStore
	hirings     HiringClient
	users       UserClient
	reminders   ReminderStore
	notifier    Notifier
	cfg         Config
	log         *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Compliances ComplianceStore
	Claims      ClaimStore
	Hirings     HiringClient
	Users       UserClient
	Reminders   ReminderStore
	Notifier    Notifier
	Logger      *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.SuspensionDays <= 0 {
		cfg.SuspensionDays = 15
	}
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = 24 * time.Hour
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		withTx:      pgrepo.TxRunner(deps.Pool),
		compliances: deps.Compliances,
		claims:      deps.Claims,
		hirings:     deps.Hirings,
		users:       deps.Users,
		reminders:   deps.Reminders,
		notifier:    deps.Notifier,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

type SweepResult struct {
	Candidates int
	Escalated  int
	Failed     int
}

// ProcessOverdue walks every overdue, non-appealed item and applies the next
// escalation tier where one is due. A failure on one item never stops the
// sweep.
func (s *Service) ProcessOverdue(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()

	candidates, err := s.compliances.ListOverdueCandidates(ctx, now)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		return SweepResult{}, fmt.Errorf("list overdue candidates: %w", err)
	}

	result := SweepResult{Candidates: len(candidates)}
	for _, candidate := range candidates {
		escalated, err := s.escalateOne(ctx, candidate.ID, now)
		if err != nil {
			result.Failed++
			s.log.Error("escalate compliance", zap.String("compliance_id", candidate.ID), zap.Error(err))
			continue
		}
		if escalated {
			result.Escalated++
		}
	}

	metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// escalateOne re-reads the item under a row lock so a concurrent submit or
// review between listing and locking is respected.
func (s *Service) escalateOne(ctx context.Context, complianceID string, now time.Time) (bool, error) {
	var item model.Compliance
	var tier int

	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		locked, err := s.compliances.GetByIDForUpdate(txCtx, tx, complianceID)
		if err != nil {
			return err
		}

		if !rules.WarningLevelConsistent(locked) {
			s.log.Warn("warning level inconsistent with status, resetting",
				zap.String("compliance_id", locked.ID),
				zap.Int("warning_level", locked.WarningLevel),
				zap.String("status", string(locked.Status)))
			if err := s.compliances.ResetWarningLevel(txCtx, tx, locked.ID, now); err != nil {
				return err
			}
			locked.WarningLevel = rules.WarningLevelNone
		}

		tier = rules.NextTier(locked, now)
		if tier == 0 {
			return nil
		}

		upd := escalationFor(tier, now)
		if err := s.compliances.ApplyEscalation(txCtx, tx, locked.ID, upd, now); err != nil {
			return err
		}

		item = locked
		item.Status = upd.Status
		item.WarningLevel = upd.WarningLevel
		if upd.ExtendedDeadline != nil {
			item.ExtendedDeadline = upd.ExtendedDeadline
		}
		if upd.FinalDeadline != nil {
			item.FinalDeadline = upd.FinalDeadline
		}
		return nil
	})
	if err != nil || tier == 0 {
		return false, err
	}

	metrics.EscalationsTotal.WithLabelValues(strconv.Itoa(tier)).Inc()
	s.applyConsequence(ctx, item, tier)
	return true, nil
}

// escalationFor builds the persistence update for one ladder step. New
// deadlines are anchored to the sweep instant, so the user gets the full
// extension window from the moment the tier lands, however late the sweep ran.
func escalationFor(tier int, now time.Time) pgrepo.EscalationUpdate {
	switch tier {
	case 1:
		extended := now.AddDate(0, 0, rules.ExtendedDeadlineDays)
		return pgrepo.EscalationUpdate{
			Status:           enums.ComplianceStatusOverdue,
			WarningLevel:     rules.WarningLevelOverdue,
			ExtendedDeadline: &extended,
		}
	case 2:
		final := now.AddDate(0, 0, rules.FinalDeadlineDays)
		return pgrepo.EscalationUpdate{
			Status:        enums.ComplianceStatusWarning,
			WarningLevel:  rules.WarningLevelSuspended,
			FinalDeadline: &final,
		}
	default:
		return pgrepo.EscalationUpdate{
			Status:       enums.ComplianceStatusEscalated,
			WarningLevel: rules.WarningLevelBanned,
		}
	}
}

// applyConsequence runs the external side effects of a tier. They are
// best-effort: the persisted escalation is the source of truth and the next
// sweep will not retry them, so failures are logged loudly. Every tier also
// tells the waiting counter-party how far the item has slipped.
func (s *Service) applyConsequence(ctx context.Context, item model.Compliance, tier int) {
	switch tier {
	case 1:
		if s.notifier != nil && item.ExtendedDeadline != nil {
			if err := s.notifier.EscalationWarning(ctx, item.ResponsibleUserID, item.ID, item.WarningLevel, *item.ExtendedDeadline); err != nil {
				s.log.Warn("send escalation warning", zap.String("compliance_id", item.ID), zap.Error(err))
			}
		}
	case 2:
		if s.users != nil {
			if err := s.users.SuspendUser(ctx, item.ResponsibleUserID, s.cfg.SuspensionDays, "overdue compliance obligation"); err != nil {
				s.log.Error("suspend user for overdue compliance",
					zap.String("user_id", item.ResponsibleUserID), zap.String("compliance_id", item.ID), zap.Error(err))
			}
		}
		if s.notifier != nil && item.FinalDeadline != nil {
			if err := s.notifier.EscalationWarning(ctx, item.ResponsibleUserID, item.ID, item.WarningLevel, *item.FinalDeadline); err != nil {
				s.log.Warn("send final warning", zap.String("compliance_id", item.ID), zap.Error(err))
			}
		}
	case 3:
		if s.users != nil {
			if err := s.users.BanUser(ctx, item.ResponsibleUserID, "ignored final compliance deadline"); err != nil {
				s.log.Error("ban user for escalated compliance",
					zap.String("user_id", item.ResponsibleUserID), zap.String("compliance_id", item.ID), zap.Error(err))
			}
		}
		if s.notifier != nil {
			if err := s.notifier.ComplianceEscalated(ctx, item.ResponsibleUserID, item.ID); err != nil {
				s.log.Warn("send escalation notice", zap.String("compliance_id", item.ID), zap.Error(err))
			}
		}
	}

	s.notifyCounterparty(ctx, item)
}

// notifyCounterparty sends the other claim party a non-compliance notice
// carrying the warning level the item just reached.
func (s *Service) notifyCounterparty(ctx context.Context, item model.Compliance) {
	if s.notifier == nil || s.claims == nil || s.hirings == nil {
		return
	}

	peerID, err := s.counterparty(ctx, item)
	if err != nil {
		s.log.Warn("resolve counterparty", zap.String("compliance_id", item.ID), zap.Error(err))
		return
	}
	if err := s.notifier.NonComplianceNotice(ctx, peerID, item.ID, item.WarningLevel); err != nil {
		s.log.Warn("send non-compliance notice", zap.String("compliance_id", item.ID), zap.Error(err))
	}
}

// counterparty resolves the claim party who is not responsible for the item.
func (s *Service) counterparty(ctx context.Context, item model.Compliance) (string, error) {
	claim, err := s.claims.GetByID(ctx, item.ClaimID)
	if err != nil {
		return "", err
	}
	hiring, err := s.hirings.FindByID(ctx, claim.HiringID)
	if err != nil {
		return "", err
	}
	if item.ResponsibleUserID == hiring.ClientID {
		return hiring.ProviderID, nil
	}
	return hiring.ClientID, nil
}

type ReminderResult struct {
	Expiring int
	Sent     int
}

// ProcessReminders notifies users whose authoritative deadline falls inside
// the reminder window, at most once per item per day.
func (s *Service) ProcessReminders(ctx context.Context) (ReminderResult, error) {
	now := s.now().UTC()

	expiring, err := s.compliances.ListExpiringSoon(ctx, now, s.cfg.ReminderWindow)
	if err != nil {
		return ReminderResult{}, fmt.Errorf("list expiring compliances: %w", err)
	}

	result := ReminderResult{Expiring: len(expiring)}
	for _, item := range expiring {
		first, err := s.reminders.MarkSent(ctx, item.ID, now, 48*time.Hour)
		if err != nil {
			s.log.Warn("mark reminder sent", zap.String("compliance_id", item.ID), zap.Error(err))
			continue
		}
		if !first {
			continue
		}

		if err := s.notifier.DeadlineReminder(ctx, item.ResponsibleUserID, item.ID, item.CurrentDeadline()); err != nil {
			s.log.Warn("send deadline reminder", zap.String("compliance_id", item.ID), zap.Error(err))
			continue
		}
		metrics.RemindersSentTotal.Inc()
		result.Sent++
	}
	return result, nil
}
