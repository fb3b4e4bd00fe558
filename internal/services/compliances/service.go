package compliances

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

const reviewLockTTL = 30 * time.Second

// Moderator review decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionAdjust  = "adjust"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrComplianceNotFound = errors.New("compliance not found")
	ErrClaimNotFound      = errors.New("claim not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("operation not allowed in current compliance status")
	ErrAlreadyApproved    = errors.New("compliance already approved")
	ErrAppealRequired     = errors.New("rejected compliance requires an appeal before resubmission")
	ErrDeadlinePassed     = errors.New("submission window has closed")
	ErrDependencyPending  = errors.New("prerequisite compliance is not approved yet")
	ErrEvidenceRequired   = errors.New("evidence files are required")
	ErrReviewInProgress   = errors.New("another review of this compliance is in progress")
	ErrNoActionableItem   = errors.New("no actionable compliance for this claim")
)

type ComplianceStore interface {
	GetByID(ctx context.Context, complianceID string) (model.Compliance, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, complianceID string) (model.Compliance, error)
	ListByClaim(ctx context.Context, claimID string) ([]model.Compliance, error)
	List(ctx context.Context, filter pgrepo.ComplianceFilter) ([]model.Compliance, int64, error)
	SetSubmitted(ctx context.Context, tx pgx.Tx, complianceID string, evidence []string, notes *string, now time.Time) error
	SetPeerReview(ctx context.Context, tx pgx.Tx, complianceID, reviewerID string, approved bool, reason *string, now time.Time) error
	SetApproved(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes *string, now time.Time) error
	SetRejected(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes, reason *string, now time.Time) error
	SetRequiresAdjustment(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes *string, now time.Time) error
	UserStats(ctx context.Context, userID string) (pgrepo.UserStats, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, tx pgx.Tx, s model.Submission) error
	ListByCompliance(ctx context.Context, complianceID string) ([]model.Submission, error)
	CountByCompliance(ctx context.Context, tx pgx.Tx, complianceID string) (int, error)
	SetPeerOutcome(ctx context.Context, tx pgx.Tx, complianceID, reviewerID string, approved bool, reason *string, now time.Time) error
	SetModeratorOutcome(ctx context.Context, tx pgx.Tx, complianceID, moderatorID, decision string, notes *string, now time.Time) error
}

type ClaimStore interface {
	GetByID(ctx context.Context, claimID string) (model.Claim, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, claimID string, status enums.ClaimStatus, now time.Time) error
}

type HiringClient interface {
	FindByID(ctx context.Context, hiringID string) (model.Hiring, error)
}

type ReviewLocker interface {
	AcquireReview(ctx context.Context, complianceID, ownerID string, ttl time.Duration) (bool, error)
	ReleaseReview(ctx context.Context, complianceID, ownerID string) error
}

type Notifier interface {
	ComplianceSubmitted(ctx context.Context, counterpartyID, complianceID string) error
	PeerReviewResult(ctx context.Context, userID, complianceID string, approved bool, reason string) error
	ModeratorReviewResult(ctx context.Context, userID, complianceID, decision string, notes string) error
}

type Service struct {
	withTx      func(context.Context, func(context.Context, pgx.Tx) error) error
	compliances ComplianceStore
	submissions SubmissionStore
	claims      ClaimStore
	hirings     HiringClient
	locks       ReviewLocker
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Compliances ComplianceStore
	Submissions SubmissionStore
	Claims      ClaimStore
	Hirings     HiringClient
	Locks       ReviewLocker
	Notifier    Notifier
	Logger      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		withTx:      pgrepo.TxRunner(deps.Pool),
		compliances: deps.Compliances,
		submissions: deps.Submissions,
		claims:      deps.Claims,
		hirings:     deps.Hirings,
		locks:       deps.Locks,
		notifier:    deps.Notifier,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// List returns compliance items. Non-moderators only ever see their own.
func (s *Service) List(ctx context.Context, userID string, isModerator bool, filter pgrepo.ComplianceFilter) ([]model.Compliance, int64, error) {
	if !isModerator {
		filter.UserID = userID
	}
	if filter.Now.IsZero() {
		filter.Now = s.now().UTC()
	}
	return s.compliances.List(ctx, filter)
}

func (s *Service) ListByClaim(ctx context.Context, claimID string) ([]model.Compliance, error) {
	return s.compliances.ListByClaim(ctx, claimID)
}

func (s *Service) ListSubmissions(ctx context.Context, complianceID string) ([]model.Submission, error) {
	return s.submissions.ListByCompliance(ctx, complianceID)
}

func (s *Service) Stats(ctx context.Context, userID string) (pgrepo.UserStats, error) {
	if userID == "" {
		return pgrepo.UserStats{}, ErrValidation
	}
	return s.compliances.UserStats(ctx, userID)
}

type SubmitInput struct {
	EvidenceURLs []string
	Notes        *string
}

// Submit records an evidence submission for the responsible user. Items stay
// submittable through the escalation ladder until the grace window past the
// original deadline closes.
func (s *Service) Submit(ctx context.Context, userID, complianceID string, input SubmitInput) (model.Compliance, error) {
	if userID == "" || complianceID == "" {
		return model.Compliance{}, ErrValidation
	}
	if len(input.EvidenceURLs) > rules.MaxEvidenceURLs {
		return model.Compliance{}, ErrValidation
	}

	var updated model.Compliance
	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		item, err := s.compliances.GetByIDForUpdate(txCtx, tx, complianceID)
		if err != nil {
			return translateComplianceErr(err)
		}
		if item.ResponsibleUserID != userID {
			return ErrForbidden
		}

		now := s.now().UTC()
		if err := s.checkSubmittable(txCtx, item, input, now); err != nil {
			return err
		}

		attempts, err := s.submissions.CountByCompliance(txCtx, tx, complianceID)
		if err != nil {
			return err
		}

		if err := s.compliances.SetSubmitted(txCtx, tx, complianceID, input.EvidenceURLs, input.Notes, now); err != nil {
			return err
		}
		if err := s.submissions.Create(txCtx, tx, model.Submission{
			ID:            s.newID(),
			ComplianceID:  complianceID,
			AttemptNumber: attempts + 1,
			EvidenceURLs:  input.EvidenceURLs,
			UserNotes:     input.Notes,
			SubmittedAt:   now,
		}); err != nil {
			return err
		}

		updated = item
		updated.Status = enums.ComplianceStatusSubmitted
		updated.EvidenceURLs = input.EvidenceURLs
		updated.UserNotes = input.Notes
		updated.SubmittedAt = &now
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Compliance{}, err
	}

	if peerID, perr := s.counterparty(ctx, updated); perr == nil {
		s.notify(func() error {
			return s.notifier.ComplianceSubmitted(ctx, peerID, updated.ID)
		}, updated.ID, "compliance submitted")
	}

	return updated, nil
}

// SubmitByClaim submits for the caller's next actionable item on the claim:
// lowest order number, non-terminal, dependency satisfied.
func (s *Service) SubmitByClaim(ctx context.Context, userID, claimID string, input SubmitInput) (model.Compliance, error) {
	if userID == "" || claimID == "" {
		return model.Compliance{}, ErrValidation
	}

	items, err := s.compliances.ListByClaim(ctx, claimID)
	if err != nil {
		return model.Compliance{}, err
	}

	byID := indexByID(items)
	for _, item := range items {
		if item.ResponsibleUserID != userID || item.Status.Terminal() {
			continue
		}
		switch item.Status {
		case enums.ComplianceStatusSubmitted, enums.ComplianceStatusPeerApproved, enums.ComplianceStatusInReview:
			continue
		}
		if !rules.DependencySatisfied(item, byID[deref(item.DependsOn)]) {
			continue
		}
		return s.Submit(ctx, userID, item.ID, input)
	}
	return model.Compliance{}, ErrNoActionableItem
}

// PeerReview records the counter-party's verdict on a submitted item. An
// objection must explain itself.
func (s *Service) PeerReview(ctx context.Context, userID, complianceID string, approved bool, reason *string) (model.Compliance, error) {
	if userID == "" || complianceID == "" {
		return model.Compliance{}, ErrValidation
	}
	if !approved && (reason == nil || strings.TrimSpace(*reason) == "") {
		return model.Compliance{}, ErrValidation
	}

	item, err := s.compliances.GetByID(ctx, complianceID)
	if err != nil {
		return model.Compliance{}, translateComplianceErr(err)
	}
	peerID, err := s.counterparty(ctx, item)
	if err != nil {
		return model.Compliance{}, err
	}
	if peerID != userID {
		return model.Compliance{}, ErrForbidden
	}

	release, err := s.lockReview(ctx, complianceID, userID)
	if err != nil {
		return model.Compliance{}, err
	}
	defer release()

	var updated model.Compliance
	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		item, err := s.compliances.GetByIDForUpdate(txCtx, tx, complianceID)
		if err != nil {
			return translateComplianceErr(err)
		}
		if item.Status != enums.ComplianceStatusSubmitted {
			return ErrInvalidTransition
		}

		now := s.now().UTC()
		if err := s.compliances.SetPeerReview(txCtx, tx, complianceID, userID, approved, reason, now); err != nil {
			return err
		}
		if err := s.submissions.SetPeerOutcome(txCtx, tx, complianceID, userID, approved, reason, now); err != nil {
			return err
		}

		updated = item
		if approved {
			updated.Status = enums.ComplianceStatusPeerApproved
		} else {
			updated.Status = enums.ComplianceStatusPeerObjected
		}
		updated.PeerReviewedBy = &userID
		updated.PeerApproved = &approved
		updated.PeerReviewReason = reason
		updated.PeerReviewedAt = &now
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Compliance{}, err
	}

	s.notify(func() error {
		return s.notifier.PeerReviewResult(ctx, updated.ResponsibleUserID, updated.ID, approved, deref(reason))
	}, updated.ID, "peer review")

	return updated, nil
}

type ModeratorReviewInput struct {
	Decision        string
	Notes           *string
	RejectionReason *string
}

// ModeratorReview is the staff verdict. Approval clears the penalty state and,
// when it was the last outstanding item, closes the whole claim.
func (s *Service) ModeratorReview(ctx context.Context, moderatorID, complianceID string, input ModeratorReviewInput) (model.Compliance, error) {
	if moderatorID == "" || complianceID == "" {
		return model.Compliance{}, ErrValidation
	}
	switch input.Decision {
	case DecisionApprove, DecisionAdjust:
	case DecisionReject:
		if input.RejectionReason == nil || strings.TrimSpace(*input.RejectionReason) == "" {
			return model.Compliance{}, ErrValidation
		}
	default:
		return model.Compliance{}, ErrValidation
	}

	release, err := s.lockReview(ctx, complianceID, moderatorID)
	if err != nil {
		return model.Compliance{}, err
	}
	defer release()

	var updated model.Compliance
	claimClosed := false
	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		item, err := s.compliances.GetByIDForUpdate(txCtx, tx, complianceID)
		if err != nil {
			return translateComplianceErr(err)
		}
		if !item.Status.Reviewable() {
			return ErrInvalidTransition
		}

		now := s.now().UTC()
		switch input.Decision {
		case DecisionApprove:
			if err := s.compliances.SetApproved(txCtx, tx, complianceID, moderatorID, input.Notes, now); err != nil {
				return err
			}
			item.Status = enums.ComplianceStatusApproved
			item.WarningLevel = rules.WarningLevelNone
			item.ExtendedDeadline = nil
			item.FinalDeadline = nil
		case DecisionReject:
			if err := s.compliances.SetRejected(txCtx, tx, complianceID, moderatorID, input.Notes, input.RejectionReason, now); err != nil {
				return err
			}
			item.Status = enums.ComplianceStatusRejected
			item.RejectionReason = input.RejectionReason
			item.RejectionCount++
		case DecisionAdjust:
			if err := s.compliances.SetRequiresAdjustment(txCtx, tx, complianceID, moderatorID, input.Notes, now); err != nil {
				return err
			}
			item.Status = enums.ComplianceStatusRequiresAdjustment
		}
		if err := s.submissions.SetModeratorOutcome(txCtx, tx, complianceID, moderatorID, input.Decision, input.Notes, now); err != nil {
			if !errors.Is(err, pgrepo.ErrSubmissionNotFound) {
				return err
			}
		}

		item.ReviewedBy = &moderatorID
		item.ReviewedAt = &now
		item.ModeratorNotes = input.Notes
		item.UpdatedAt = now
		updated = item

		if input.Decision == DecisionApprove {
			closed, err := s.closeClaimIfSettled(txCtx, tx, item, now)
			if err != nil {
				return err
			}
			claimClosed = closed
		}
		return nil
	})
	if err != nil {
		return model.Compliance{}, err
	}

	if claimClosed {
		s.log.Info("claim settled by final compliance approval",
			zap.String("claim_id", updated.ClaimID), zap.String("compliance_id", updated.ID))
	}

	s.notify(func() error {
		return s.notifier.ModeratorReviewResult(ctx, updated.ResponsibleUserID, updated.ID, input.Decision, deref(input.Notes))
	}, updated.ID, "moderator review")

	return updated, nil
}

// closeClaimIfSettled moves the claim to its final moderation status once
// every compliance item on it is approved.
func (s *Service) closeClaimIfSettled(ctx context.Context, tx pgx.Tx, approved model.Compliance, now time.Time) (bool, error) {
	items, err := s.compliances.ListByClaim(ctx, approved.ClaimID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ID == approved.ID {
			continue
		}
		if item.Status != enums.ComplianceStatusApproved {
			return false, nil
		}
	}
	if err := s.claims.UpdateStatus(ctx, tx, approved.ClaimID, enums.ClaimStatusFinishedByModeration, now); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) checkSubmittable(ctx context.Context, item model.Compliance, input SubmitInput, now time.Time) error {
	switch item.Status {
	case enums.ComplianceStatusApproved:
		return ErrAlreadyApproved
	case enums.ComplianceStatusRejected:
		if !item.Appealed {
			return ErrAppealRequired
		}
	case enums.ComplianceStatusEscalated:
		return ErrInvalidTransition
	case enums.ComplianceStatusSubmitted, enums.ComplianceStatusPeerApproved, enums.ComplianceStatusInReview:
		return ErrInvalidTransition
	}
	if !rules.CanStillSubmit(item, now) {
		return ErrDeadlinePassed
	}
	if item.RequiresFiles && len(input.EvidenceURLs) == 0 {
		return ErrEvidenceRequired
	}

	if item.DependsOn != nil {
		parent, err := s.compliances.GetByID(ctx, *item.DependsOn)
		if err != nil {
			return translateComplianceErr(err)
		}
		if !rules.DependencySatisfied(item, &parent) {
			return ErrDependencyPending
		}
	}
	return nil
}

// counterparty resolves the claim party who is not responsible for the item.
func (s *Service) counterparty(ctx context.Context, item model.Compliance) (string, error) {
	claim, err := s.claims.GetByID(ctx, item.ClaimID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrClaimNotFound) {
			return "", ErrClaimNotFound
		}
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

func (s *Service) lockReview(ctx context.Context, complianceID, ownerID string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	ok, err := s.locks.AcquireReview(ctx, complianceID, ownerID, reviewLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire review lock: %w", err)
	}
	if !ok {
		return nil, ErrReviewInProgress
	}
	return func() {
		if err := s.locks.ReleaseReview(ctx, complianceID, ownerID); err != nil {
			s.log.Warn("release review lock", zap.String("compliance_id", complianceID), zap.Error(err))
		}
	}, nil
}

func (s *Service) notify(fn func() error, complianceID, what string) {
	if s.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("send notification", zap.String("compliance_id", complianceID), zap.String("kind", what), zap.Error(err))
	}
}

func indexByID(items []model.Compliance) map[string]*model.Compliance {
	byID := make(map[string]*model.Compliance, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func translateComplianceErr(err error) error {
	if errors.Is(err, pgrepo.ErrComplianceNotFound) {
		return ErrComplianceNotFound
	}
	return err
}
