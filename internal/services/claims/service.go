package claims

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

	hiringscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/hirings"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

const (
	maxDescriptionLen = 5000
	maxDeadlineDays   = 365
)

var (
	ErrValidation         = errors.New("validation error")
	ErrClaimNotFound      = errors.New("claim not found")
	ErrHiringNotFound     = errors.New("hiring not found")
	ErrForbidden          = errors.New("forbidden")
	ErrActiveClaimExists  = errors.New("hiring already has an active claim")
	ErrInvalidTransition  = errors.New("operation not allowed in current claim status")
	ErrEvidenceLimit      = errors.New("evidence limit exceeded")
	ErrAlreadyAnswered    = errors.New("respondent observations already recorded")
	ErrComplianceOverflow = errors.New("too many compliance items")
)

type ClaimStore interface {
	Create(ctx context.Context, tx pgx.Tx, claim model.Claim) error
	GetByID(ctx context.Context, claimID string) (model.Claim, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, claimID string) (model.Claim, error)
	HasActiveClaim(ctx context.Context, tx pgx.Tx, hiringID string) (bool, error)
	ListByHiring(ctx context.Context, hiringID string) ([]model.Claim, error)
	List(ctx context.Context, filter pgrepo.ClaimFilter) ([]model.Claim, int64, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, claimID string, status enums.ClaimStatus, now time.Time) error
	AssignModerator(ctx context.Context, tx pgx.Tx, claimID, moderatorID, moderatorEmail string, now time.Time) error
	SetObservations(ctx context.Context, tx pgx.Tx, claimID, moderatorID, text string, now time.Time) error
	SetClarification(ctx context.Context, tx pgx.Tx, claimID, response string, evidence []string, now time.Time) error
	SetRespondentObservations(ctx context.Context, tx pgx.Tx, claimID, respondentID, text string, evidence []string, now time.Time) error
	SetResolution(ctx context.Context, tx pgx.Tx, claimID string, upd pgrepo.ResolutionUpdate) error
}

type ComplianceStore interface {
	CreateBatch(ctx context.Context, tx pgx.Tx, items []model.Compliance) error
}

type HiringClient interface {
	FindByID(ctx context.Context, hiringID string) (model.Hiring, error)
	UpdateStatus(ctx context.Context, hiringID, statusID string) error
}

type UserClient interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

type Notifier interface {
	ClaimCreated(ctx context.Context, respondentID, claimID, serviceTitle string) error
	ClaimReceived(ctx context.Context, claimantID, claimID, serviceTitle string) error
	ClaimAwaitingModeration(ctx context.Context, claimID, serviceTitle string) error
	ClaimObservations(ctx context.Context, claimantID, claimID, observations string) error
	ClaimClarification(ctx context.Context, moderatorID, claimID string) error
	RespondentObservations(ctx context.Context, moderatorID, claimID string) error
	ClaimResolved(ctx context.Context, userID, claimID, resolutionType string) error
	ClaimCancelled(ctx context.Context, userID, claimID string) error
	ComplianceAssigned(ctx context.Context, userID, complianceID, instructions string, deadline time.Time) error
}

type Service struct {
	withTx      func(context.Context, func(context.Context, pgx.Tx) error) error
	claims      ClaimStore
	compliances ComplianceStore
	hirings     HiringClient
	users       UserClient
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	ClaimStore  ClaimStore
	Compliances ComplianceStore
	Hirings     HiringClient
	Users       UserClient
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
		claims:      deps.ClaimStore,
		compliances: deps.Compliances,
		hirings:     deps.Hirings,
		users:       deps.Users,
		notifier:    deps.Notifier,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

type CreateInput struct {
	HiringID     string
	Type         enums.ClaimType
	Description  string
	OtherReason  *string
	EvidenceURLs []string
}

// Create opens a claim against the hiring's counter-party and moves the
// hiring into dispute. The respondent is derived from the hiring, never
// stored.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (model.Claim, error) {
	if s.withTx == nil || s.claims == nil || s.hirings == nil {
		return model.Claim{}, fmt.Errorf("claims service dependencies are not configured")
	}

	description := strings.TrimSpace(input.Description)
	if userID == "" || input.HiringID == "" || description == "" || len(description) > maxDescriptionLen {
		return model.Claim{}, ErrValidation
	}
	if len(input.EvidenceURLs) > rules.MaxEvidenceURLs {
		return model.Claim{}, ErrEvidenceLimit
	}

	hiring, err := s.hirings.FindByID(ctx, input.HiringID)
	if err != nil {
		return model.Claim{}, translateHiringErr(err)
	}

	claimantRole, ok := rules.ClaimantRoleFor(hiring, userID)
	if !ok {
		return model.Claim{}, ErrForbidden
	}
	if !rules.ClaimTypeAllowed(claimantRole, input.Type) {
		return model.Claim{}, ErrValidation
	}
	if input.Type.RequiresOtherReason() {
		if input.OtherReason == nil || strings.TrimSpace(*input.OtherReason) == "" {
			return model.Claim{}, ErrValidation
		}
	} else if input.OtherReason != nil {
		return model.Claim{}, ErrValidation
	}

	now := s.now().UTC()
	claim := model.Claim{
		ID:                     s.newID(),
		HiringID:               hiring.ID,
		ClaimantUserID:         userID,
		ClaimantRole:           claimantRole,
		Type:                   input.Type,
		Description:            description,
		OtherReason:            input.OtherReason,
		EvidenceURLs:           dedupe(input.EvidenceURLs),
		Status:                 enums.ClaimStatusOpen,
		PreviousHiringStatusID: hiring.StatusID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		active, err := s.claims.HasActiveClaim(txCtx, tx, hiring.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrActiveClaimExists
		}
		return s.claims.Create(txCtx, tx, claim)
	}); err != nil {
		return model.Claim{}, err
	}

	if err := s.hirings.UpdateStatus(ctx, hiring.ID, string(enums.HiringStatusInDispute)); err != nil {
		s.log.Warn("move hiring into dispute",
			zap.String("claim_id", claim.ID), zap.String("hiring_id", hiring.ID), zap.Error(err))
	}

	s.notify(func() error {
		return s.notifier.ClaimCreated(ctx, rules.RespondentID(claim, hiring), claim.ID, hiring.ServiceTitle)
	}, claim.ID, "claim created")
	s.notify(func() error {
		return s.notifier.ClaimReceived(ctx, claim.ClaimantUserID, claim.ID, hiring.ServiceTitle)
	}, claim.ID, "claim received")
	s.notify(func() error {
		return s.notifier.ClaimAwaitingModeration(ctx, claim.ID, hiring.ServiceTitle)
	}, claim.ID, "claim awaiting moderation")

	return claim, nil
}

// Get returns the claim to its claimant, its respondent, or a moderator.
func (s *Service) Get(ctx context.Context, userID string, isModerator bool, claimID string) (model.Claim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return model.Claim{}, translateClaimErr(err)
	}
	if isModerator {
		return claim, nil
	}

	hiring, err := s.hirings.FindByID(ctx, claim.HiringID)
	if err != nil {
		return model.Claim{}, translateHiringErr(err)
	}
	if rules.RoleOf(claim, hiring, userID) == rules.PartyNone {
		return model.Claim{}, ErrForbidden
	}
	return claim, nil
}

func (s *Service) ListByHiring(ctx context.Context, userID string, isModerator bool, hiringID string) ([]model.Claim, error) {
	if hiringID == "" {
		return nil, ErrValidation
	}
	if !isModerator {
		hiring, err := s.hirings.FindByID(ctx, hiringID)
		if err != nil {
			return nil, translateHiringErr(err)
		}
		if !rules.IsHiringParty(hiring, userID) {
			return nil, ErrForbidden
		}
	}
	return s.claims.ListByHiring(ctx, hiringID)
}

// List is the moderation listing with filters and pagination.
func (s *Service) List(ctx context.Context, filter pgrepo.ClaimFilter) ([]model.Claim, int64, error) {
	return s.claims.List(ctx, filter)
}

// MarkInReview moves an open claim under the acting moderator. The first
// moderator to pick the claim up keeps the assignment; calling it again on a
// claim already in review is a no-op.
func (s *Service) MarkInReview(ctx context.Context, moderatorID, claimID string) (model.Claim, error) {
	return s.moderatorTransition(ctx, moderatorID, claimID,
		func(claim model.Claim) error {
			switch claim.Status {
			case enums.ClaimStatusOpen, enums.ClaimStatusInReview:
				return nil
			}
			return ErrInvalidTransition
		},
		func(txCtx context.Context, tx pgx.Tx, claim model.Claim, now time.Time) error {
			if claim.Status == enums.ClaimStatusInReview {
				return nil
			}
			return s.claims.UpdateStatus(txCtx, tx, claimID, enums.ClaimStatusInReview, now)
		})
}

// AddObservations asks the claimant for clarification and parks the claim
// until they answer.
func (s *Service) AddObservations(ctx context.Context, moderatorID, claimID, text string) (model.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Claim{}, ErrValidation
	}

	claim, err := s.moderatorTransition(ctx, moderatorID, claimID,
		func(claim model.Claim) error {
			switch claim.Status {
			case enums.ClaimStatusOpen, enums.ClaimStatusInReview:
				return nil
			}
			return ErrInvalidTransition
		},
		func(txCtx context.Context, tx pgx.Tx, claim model.Claim, now time.Time) error {
			return s.claims.SetObservations(txCtx, tx, claimID, moderatorID, text, now)
		})
	if err != nil {
		return model.Claim{}, err
	}

	s.notify(func() error {
		return s.notifier.ClaimObservations(ctx, claim.ClaimantUserID, claim.ID, text)
	}, claim.ID, "claim observations")

	return claim, nil
}

// SubmitClarification is the claimant's answer to the moderator's
// observations. New evidence is merged into the claim's existing set.
func (s *Service) SubmitClarification(ctx context.Context, userID, claimID, response string, evidence []string) (model.Claim, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return model.Claim{}, ErrValidation
	}

	var updated model.Claim
	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		claim, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		if claim.ClaimantUserID != userID {
			return ErrForbidden
		}
		if claim.Status != enums.ClaimStatusPendingClarification {
			return ErrInvalidTransition
		}

		merged, ok := rules.MergeEvidence(claim.EvidenceURLs, evidence)
		if !ok {
			return ErrEvidenceLimit
		}

		now := s.now().UTC()
		if err := s.claims.SetClarification(txCtx, tx, claimID, response, merged, now); err != nil {
			return err
		}

		updated = claim
		updated.Status = enums.ClaimStatusRequiresStaffResponse
		updated.ClarificationResponse = &response
		updated.EvidenceURLs = merged
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Claim{}, err
	}

	if updated.AssignedModeratorID != nil {
		moderatorID := *updated.AssignedModeratorID
		s.notify(func() error {
			return s.notifier.ClaimClarification(ctx, moderatorID, updated.ID)
		}, updated.ID, "claim clarification")
	}

	return updated, nil
}

// SubmitRespondentObservations records the counter-party's one-time answer to
// the claim and puts the claim back in front of the moderator.
func (s *Service) SubmitRespondentObservations(ctx context.Context, userID, claimID, text string, evidence []string) (model.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Claim{}, ErrValidation
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return model.Claim{}, translateClaimErr(err)
	}
	hiring, err := s.hirings.FindByID(ctx, claim.HiringID)
	if err != nil {
		return model.Claim{}, translateHiringErr(err)
	}
	if rules.RoleOf(claim, hiring, userID) != rules.PartyRespondent {
		return model.Claim{}, ErrForbidden
	}

	var updated model.Claim
	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		claim, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		if claim.Status != enums.ClaimStatusOpen {
			return ErrInvalidTransition
		}
		if claim.RespondentObservations != nil {
			return ErrAlreadyAnswered
		}

		merged, ok := rules.MergeEvidence(claim.EvidenceURLs, evidence)
		if !ok {
			return ErrEvidenceLimit
		}

		now := s.now().UTC()
		if err := s.claims.SetRespondentObservations(txCtx, tx, claimID, userID, text, merged, now); err != nil {
			return err
		}

		updated = claim
		updated.Status = enums.ClaimStatusInReview
		updated.RespondentObservations = &text
		updated.RespondentObservationsBy = &userID
		updated.RespondentObservationsAt = &now
		updated.EvidenceURLs = merged
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Claim{}, err
	}

	if updated.AssignedModeratorID != nil {
		moderatorID := *updated.AssignedModeratorID
		s.notify(func() error {
			return s.notifier.RespondentObservations(ctx, moderatorID, updated.ID)
		}, updated.ID, "respondent observations")
	}

	return updated, nil
}

type ComplianceInput struct {
	Type              enums.ComplianceType
	ResponsibleUserID string
	Instructions      string
	Amount            *float64
	Currency          *string
	PaymentLink       *string
	RequiresFiles     bool
	DeadlineDays      int
	DependsOnIndex    *int
	OrderNumber       *int
	Requirement       enums.Requirement
}

type ResolveInput struct {
	Rejected                bool
	Resolution              string
	ResolutionType          *enums.ResolutionType
	PartialAgreementDetails *string
	Compliances             []ComplianceInput
}

// Resolve closes the moderation phase. A rejection restores the hiring's
// pre-claim status; a resolution moves the hiring to its terminal status and
// attaches the compliance obligations the parties must now fulfil.
func (s *Service) Resolve(ctx context.Context, moderatorID, claimID string, input ResolveInput) (model.Claim, error) {
	resolution := strings.TrimSpace(input.Resolution)
	if moderatorID == "" || resolution == "" {
		return model.Claim{}, ErrValidation
	}
	if input.Rejected {
		if input.ResolutionType != nil || len(input.Compliances) > 0 {
			return model.Claim{}, ErrValidation
		}
	} else {
		if input.ResolutionType == nil || !input.ResolutionType.Valid() {
			return model.Claim{}, ErrValidation
		}
		if *input.ResolutionType == enums.ResolutionPartialAgreement {
			if input.PartialAgreementDetails == nil || strings.TrimSpace(*input.PartialAgreementDetails) == "" {
				return model.Claim{}, ErrValidation
			}
		}
	}
	if len(input.Compliances) > rules.MaxCompliancesPerClaim {
		return model.Claim{}, ErrComplianceOverflow
	}

	var updated model.Claim
	var hiring model.Hiring
	var created []model.Compliance

	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		claim, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		switch claim.Status {
		case enums.ClaimStatusInReview, enums.ClaimStatusRequiresStaffResponse:
		default:
			return ErrInvalidTransition
		}

		hiring, err = s.hirings.FindByID(txCtx, claim.HiringID)
		if err != nil {
			return translateHiringErr(err)
		}

		now := s.now().UTC()
		status := enums.ClaimStatusResolved
		if input.Rejected {
			status = enums.ClaimStatusRejected
		}

		if err := s.claims.AssignModerator(txCtx, tx, claimID, moderatorID, s.moderatorEmail(txCtx, moderatorID), now); err != nil {
			return err
		}
		if err := s.claims.SetResolution(txCtx, tx, claimID, pgrepo.ResolutionUpdate{
			Status:                  status,
			Resolution:              resolution,
			ResolutionType:          input.ResolutionType,
			PartialAgreementDetails: input.PartialAgreementDetails,
			ResolvedBy:              moderatorID,
			ResolvedAt:              now,
		}); err != nil {
			return err
		}

		if !input.Rejected && len(input.Compliances) > 0 {
			created, err = s.buildCompliances(claim, hiring, input.Compliances, now)
			if err != nil {
				return err
			}
			if err := s.compliances.CreateBatch(txCtx, tx, created); err != nil {
				return err
			}
		}

		updated = claim
		updated.Status = status
		updated.Resolution = &resolution
		updated.ResolutionType = input.ResolutionType
		updated.PartialAgreementDetails = input.PartialAgreementDetails
		updated.ResolvedBy = &moderatorID
		updated.ResolvedAt = &now
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Claim{}, err
	}

	hiringStatus := updated.PreviousHiringStatusID
	if !input.Rejected {
		hiringStatus = string(rules.HiringStatusForResolution(*input.ResolutionType))
	}
	if err := s.hirings.UpdateStatus(ctx, updated.HiringID, hiringStatus); err != nil {
		s.log.Warn("update hiring status after resolution",
			zap.String("claim_id", updated.ID), zap.String("hiring_id", updated.HiringID), zap.Error(err))
	}

	resolutionType := ""
	if updated.ResolutionType != nil {
		resolutionType = string(*updated.ResolutionType)
	}
	for _, userID := range []string{updated.ClaimantUserID, rules.RespondentID(updated, hiring)} {
		uid := userID
		s.notify(func() error {
			return s.notifier.ClaimResolved(ctx, uid, updated.ID, resolutionType)
		}, updated.ID, "claim resolved")
	}
	for _, item := range created {
		c := item
		s.notify(func() error {
			return s.notifier.ComplianceAssigned(ctx, c.ResponsibleUserID, c.ID, c.ModeratorInstructions, c.Deadline)
		}, updated.ID, "compliance assigned")
	}

	return updated, nil
}

// Cancel lets the claimant withdraw a claim at any point before it reaches a
// terminal status, restoring the hiring's pre-claim status.
func (s *Service) Cancel(ctx context.Context, userID, claimID string) (model.Claim, error) {
	var updated model.Claim
	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		claim, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		if claim.ClaimantUserID != userID {
			return ErrForbidden
		}
		if claim.Status.Terminal() {
			return ErrInvalidTransition
		}

		now := s.now().UTC()
		if err := s.claims.UpdateStatus(txCtx, tx, claimID, enums.ClaimStatusCancelled, now); err != nil {
			return err
		}

		updated = claim
		updated.Status = enums.ClaimStatusCancelled
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Claim{}, err
	}

	if err := s.hirings.UpdateStatus(ctx, updated.HiringID, updated.PreviousHiringStatusID); err != nil {
		s.log.Warn("restore hiring status after cancel",
			zap.String("claim_id", updated.ID), zap.String("hiring_id", updated.HiringID), zap.Error(err))
	}

	recipients := []string{updated.ClaimantUserID}
	if hiring, err := s.hirings.FindByID(ctx, updated.HiringID); err != nil {
		s.log.Warn("resolve respondent after cancel",
			zap.String("claim_id", updated.ID), zap.String("hiring_id", updated.HiringID), zap.Error(err))
	} else {
		recipients = append(recipients, rules.RespondentID(updated, hiring))
	}
	if updated.AssignedModeratorID != nil {
		recipients = append(recipients, *updated.AssignedModeratorID)
	}
	for _, recipient := range recipients {
		uid := recipient
		s.notify(func() error {
			return s.notifier.ClaimCancelled(ctx, uid, updated.ID)
		}, updated.ID, "claim cancelled")
	}

	return updated, nil
}

func (s *Service) buildCompliances(claim model.Claim, hiring model.Hiring, inputs []ComplianceInput, now time.Time) ([]model.Compliance, error) {
	items := make([]model.Compliance, 0, len(inputs))
	for i, in := range inputs {
		if !in.Type.Valid() {
			return nil, ErrValidation
		}
		instructions := strings.TrimSpace(in.Instructions)
		if instructions == "" {
			return nil, ErrValidation
		}
		if !rules.IsHiringParty(hiring, in.ResponsibleUserID) {
			return nil, ErrValidation
		}
		if in.DeadlineDays <= 0 || in.DeadlineDays > maxDeadlineDays {
			return nil, ErrValidation
		}
		if in.Type.Monetary() {
			if in.Amount == nil || *in.Amount <= 0 || in.Currency == nil || strings.TrimSpace(*in.Currency) == "" {
				return nil, ErrValidation
			}
		}

		requirement := in.Requirement
		if requirement == "" {
			requirement = enums.RequirementSequential
		}

		var dependsOn *string
		orderNumber := i
		if in.DependsOnIndex != nil {
			idx := *in.DependsOnIndex
			if idx < 0 || idx >= i {
				return nil, ErrValidation
			}
			dependsOn = &items[idx].ID
			orderNumber = items[idx].OrderNumber + 1
		}
		if in.OrderNumber != nil {
			if *in.OrderNumber < 0 {
				return nil, ErrValidation
			}
			orderNumber = *in.OrderNumber
		}

		items = append(items, model.Compliance{
			ID:                    s.newID(),
			ClaimID:               claim.ID,
			ResponsibleUserID:     in.ResponsibleUserID,
			Type:                  in.Type,
			Status:                enums.ComplianceStatusPending,
			ModeratorInstructions: instructions,
			Amount:                in.Amount,
			Currency:              in.Currency,
			PaymentLink:           in.PaymentLink,
			RequiresFiles:         in.RequiresFiles,
			Deadline:              now.AddDate(0, 0, in.DeadlineDays),
			OriginalDeadlineDays:  in.DeadlineDays,
			EvidenceURLs:          []string{},
			DependsOn:             dependsOn,
			OrderNumber:           orderNumber,
			Requirement:           requirement,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
	}
	return items, nil
}

// moderatorTransition wraps the lock-check-write cycle the moderator status
// changes share, assigning the moderator along the way.
func (s *Service) moderatorTransition(
	ctx context.Context,
	moderatorID, claimID string,
	check func(model.Claim) error,
	apply func(context.Context, pgx.Tx, model.Claim, time.Time) error,
) (model.Claim, error) {
	if moderatorID == "" || claimID == "" {
		return model.Claim{}, ErrValidation
	}

	var updated model.Claim
	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		claim, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		if err := check(claim); err != nil {
			return err
		}

		now := s.now().UTC()
		if err := s.claims.AssignModerator(txCtx, tx, claimID, moderatorID, s.moderatorEmail(txCtx, moderatorID), now); err != nil {
			return err
		}
		if err := apply(txCtx, tx, claim, now); err != nil {
			return err
		}

		refreshed, err := s.claims.GetByIDForUpdate(txCtx, tx, claimID)
		if err != nil {
			return translateClaimErr(err)
		}
		updated = refreshed
		return nil
	})
	if err != nil {
		return model.Claim{}, err
	}
	return updated, nil
}

func (s *Service) moderatorEmail(ctx context.Context, moderatorID string) string {
	if s.users == nil {
		return ""
	}
	user, err := s.users.GetUserByID(ctx, moderatorID)
	if err != nil {
		s.log.Warn("resolve moderator email", zap.String("moderator_id", moderatorID), zap.Error(err))
		return ""
	}
	return user.Email
}

func (s *Service) notify(fn func() error, claimID, what string) {
	if s.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("send notification", zap.String("claim_id", claimID), zap.String("kind", what), zap.Error(err))
	}
}

func dedupe(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func translateClaimErr(err error) error {
	if errors.Is(err, pgrepo.ErrClaimNotFound) {
		return ErrClaimNotFound
	}
	return err
}

func translateHiringErr(err error) error {
	if errors.Is(err, hiringscli.ErrHiringNotFound) {
		return ErrHiringNotFound
	}
	return err
}
