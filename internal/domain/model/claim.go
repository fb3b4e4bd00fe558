package model

import (
	"time"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
)

type Claim struct {
	ID            string             `json:"id"`
	HiringID      string             `json:"hiring_id"`
	ClaimantUserID string            `json:"claimant_user_id"`
	ClaimantRole  enums.ClaimantRole `json:"claimant_role"`
	Type          enums.ClaimType    `json:"claim_type"`
	Description   string             `json:"description"`
	OtherReason   *string            `json:"other_reason,omitempty"`
	EvidenceURLs  []string           `json:"evidence_urls"`
	Status        enums.ClaimStatus  `json:"status"`

	// Moderator asks the claimant to clarify.
	Observations   *string    `json:"observations,omitempty"`
	ObservationsBy *string    `json:"observations_by,omitempty"`
	ObservationsAt *time.Time `json:"observations_at,omitempty"`

	// Respondent's answer, recorded while the claim was open.
	RespondentObservations   *string    `json:"respondent_observations,omitempty"`
	RespondentObservationsBy *string    `json:"respondent_observations_by,omitempty"`
	RespondentObservationsAt *time.Time `json:"respondent_observations_at,omitempty"`

	// Claimant's clarification, kept apart from the original description.
	ClarificationResponse *string `json:"clarification_response,omitempty"`

	AssignedModeratorID    *string    `json:"assigned_moderator_id,omitempty"`
	AssignedModeratorEmail *string    `json:"assigned_moderator_email,omitempty"`
	AssignedModeratorAt    *time.Time `json:"assigned_moderator_at,omitempty"`

	Resolution              *string               `json:"resolution,omitempty"`
	ResolutionType          *enums.ResolutionType `json:"resolution_type,omitempty"`
	PartialAgreementDetails *string               `json:"partial_agreement_details,omitempty"`
	ResolvedBy              *string               `json:"resolved_by,omitempty"`
	ResolvedAt              *time.Time            `json:"resolved_at,omitempty"`

	// Hiring status snapshot taken at creation, restored on reject/cancel.
	PreviousHiringStatusID string `json:"previous_hiring_status_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
