package claimview

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

// Actions a viewer may take on the claim in its current state.
const (
	ActionCancel              = "cancel"
	ActionSubmitClarification = "submit_clarification"
	ActionSubmitObservations  = "submit_observations"
	ActionMarkInReview        = "mark_in_review"
	ActionAddObservations     = "add_observations"
	ActionResolve             = "resolve"
	ActionSubmitCompliance    = "submit_compliance"
	ActionPeerReview          = "peer_review"
	ActionReviewCompliance    = "review_compliance"
)

var (
	ErrClaimNotFound = errors.New("claim not found")
	ErrForbidden     = errors.New("forbidden")
)

type ClaimStore interface {
	GetByID(ctx context.Context, claimID string) (model.Claim, error)
}

type ComplianceStore interface {
	ListByClaim(ctx context.Context, claimID string) ([]model.Compliance, error)
}

type SubmissionStore interface {
	ListByCompliance(ctx context.Context, complianceID string) ([]model.Submission, error)
}

type HiringClient interface {
	FindByID(ctx context.Context, hiringID string) (model.Hiring, error)
}

type UserClient interface {
	GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error)
}

type ComplianceDetail struct {
	model.Compliance

	IsOverdue   bool               `json:"is_overdue"`
	Submissions []model.Submission `json:"submissions,omitempty"`
}

type Detail struct {
	Claim        model.Claim        `json:"claim"`
	Hiring       model.Hiring       `json:"hiring"`
	RespondentID string             `json:"respondent_id"`
	Claimant     *model.User        `json:"claimant,omitempty"`
	Respondent   *model.User        `json:"respondent,omitempty"`
	Moderator    *model.User        `json:"moderator,omitempty"`
	Compliances  []ComplianceDetail `json:"compliances"`
	Actions      []string           `json:"available_actions"`
}

// Service assembles the full claim view: claim, hiring, resolved parties,
// compliance items with their submission history, and the actions the viewer
// may take.
type Service struct {
	claims      ClaimStore
	compliances ComplianceStore
	submissions SubmissionStore
	hirings     HiringClient
	users       UserClient
	log         *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Claims      ClaimStore
	Compliances ComplianceStore
	Submissions SubmissionStore
	Hirings     HiringClient
	Users       UserClient
	Logger      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		claims:      deps.Claims,
		compliances: deps.Compliances,
		submissions: deps.Submissions,
		hirings:     deps.Hirings,
		users:       deps.Users,
		log:         log,
		now:         time.Now,
	}
}

func (s *Service) Detail(ctx context.Context, viewerID string, isModerator bool, claimID string) (Detail, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrClaimNotFound) {
			return Detail{}, ErrClaimNotFound
		}
		return Detail{}, err
	}

	hiring, err := s.hirings.FindByID(ctx, claim.HiringID)
	if err != nil {
		return Detail{}, err
	}

	viewerRole := rules.RoleOf(claim, hiring, viewerID)
	if !isModerator && viewerRole == rules.PartyNone {
		return Detail{}, ErrForbidden
	}

	respondentID := rules.RespondentID(claim, hiring)

	var (
		items []model.Compliance
		users map[string]model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.compliances.ListByClaim(gctx, claimID)
		return err
	})
	g.Go(func() error {
		ids := []string{claim.ClaimantUserID, respondentID}
		if claim.AssignedModeratorID != nil {
			ids = append(ids, *claim.AssignedModeratorID)
		}
		var err error
		users, err = s.users.GetUsersByIDs(gctx, ids)
		if err != nil {
			// The view degrades to bare ids rather than failing outright.
			s.log.Warn("resolve claim parties", zap.String("claim_id", claimID), zap.Error(err))
			users = map[string]model.User{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	now := s.now().UTC()
	details := make([]ComplianceDetail, 0, len(items))
	for _, item := range items {
		detail := ComplianceDetail{
			Compliance: item,
			IsOverdue:  rules.IsOverdue(item, now),
		}
		if isModerator || item.ResponsibleUserID == viewerID {
			history, err := s.submissions.ListByCompliance(ctx, item.ID)
			if err != nil {
				return Detail{}, err
			}
			detail.Submissions = history
		}
		details = append(details, detail)
	}

	view := Detail{
		Claim:        claim,
		Hiring:       hiring,
		RespondentID: respondentID,
		Compliances:  details,
		Actions:      availableActions(claim, items, viewerID, viewerRole, isModerator, now),
	}
	if u, ok := users[claim.ClaimantUserID]; ok {
		view.Claimant = &u
	}
	if u, ok := users[respondentID]; ok {
		view.Respondent = &u
	}
	if claim.AssignedModeratorID != nil {
		if u, ok := users[*claim.AssignedModeratorID]; ok {
			view.Moderator = &u
		}
	}
	return view, nil
}

func availableActions(claim model.Claim, items []model.Compliance, viewerID string, viewerRole rules.PartyRole, isModerator bool, now time.Time) []string {
	actions := []string{}

	if isModerator {
		switch claim.Status {
		case enums.ClaimStatusOpen:
			actions = append(actions, ActionMarkInReview, ActionAddObservations, ActionResolve)
		case enums.ClaimStatusInReview, enums.ClaimStatusRequiresStaffResponse:
			actions = append(actions, ActionAddObservations, ActionResolve)
		}
		for _, item := range items {
			if item.Status.Reviewable() {
				actions = append(actions, ActionReviewCompliance)
				break
			}
		}
		return actions
	}

	switch viewerRole {
	case rules.PartyClaimant:
		switch claim.Status {
		case enums.ClaimStatusOpen:
			actions = append(actions, ActionCancel)
		case enums.ClaimStatusPendingClarification:
			actions = append(actions, ActionCancel, ActionSubmitClarification)
		}
	case rules.PartyRespondent:
		switch claim.Status {
		case enums.ClaimStatusOpen, enums.ClaimStatusInReview:
			if claim.RespondentObservations == nil {
				actions = append(actions, ActionSubmitObservations)
			}
		}
	}

	byID := make(map[string]*model.Compliance, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	canSubmit := false
	canPeerReview := false
	for _, item := range items {
		if item.ResponsibleUserID == viewerID {
			switch item.Status {
			case enums.ComplianceStatusSubmitted, enums.ComplianceStatusPeerApproved, enums.ComplianceStatusInReview:
			default:
				var parent *model.Compliance
				if item.DependsOn != nil {
					parent = byID[*item.DependsOn]
				}
				if rules.CanStillSubmit(item, now) && rules.DependencySatisfied(item, parent) {
					canSubmit = true
				}
			}
		} else if item.Status == enums.ComplianceStatusSubmitted {
			canPeerReview = true
		}
	}
	if canSubmit {
		actions = append(actions, ActionSubmitCompliance)
	}
	if canPeerReview {
		actions = append(actions, ActionPeerReview)
	}
	return actions
}
