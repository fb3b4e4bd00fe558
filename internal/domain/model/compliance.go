package model

import (
	"time"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
)

type Compliance struct {
	ID                string                 `json:"id"`
	ClaimID           string                 `json:"claim_id"`
	ResponsibleUserID string                 `json:"responsible_user_id"`
	Type              enums.ComplianceType   `json:"compliance_type"`
	Status            enums.ComplianceStatus `json:"status"`

	ModeratorInstructions string   `json:"moderator_instructions"`
	Amount                *float64 `json:"amount,omitempty"`
	Currency              *string  `json:"currency,omitempty"`
	PaymentLink           *string  `json:"payment_link,omitempty"`
	RequiresFiles         bool     `json:"requires_files"`

	Deadline             time.Time  `json:"deadline"`
	ExtendedDeadline     *time.Time `json:"extended_deadline,omitempty"`
	FinalDeadline        *time.Time `json:"final_deadline,omitempty"`
	OriginalDeadlineDays int        `json:"original_deadline_days"`

	EvidenceURLs []string   `json:"evidence_urls"`
	UserNotes    *string    `json:"user_notes,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`

	PeerReviewedBy   *string    `json:"peer_reviewed_by,omitempty"`
	PeerApproved     *bool      `json:"peer_approved,omitempty"`
	PeerReviewReason *string    `json:"peer_review_reason,omitempty"`
	PeerReviewedAt   *time.Time `json:"peer_reviewed_at,omitempty"`

	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ModeratorNotes  *string    `json:"moderator_notes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	RejectionCount  int        `json:"rejection_count"`

	WarningLevel int  `json:"warning_level"`
	Appealed     bool `json:"appealed"`

	DependsOn   *string           `json:"depends_on,omitempty"`
	OrderNumber int               `json:"order_number"`
	Requirement enums.Requirement `json:"requirement"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentDeadline returns the deadline the escalation ladder is tracking for
// the item's warning level.
func (c Compliance) CurrentDeadline() time.Time {
	switch {
	case c.WarningLevel >= 2 && c.FinalDeadline != nil:
		return *c.FinalDeadline
	case c.WarningLevel >= 1 && c.ExtendedDeadline != nil:
		return *c.ExtendedDeadline
	default:
		return c.Deadline
	}
}
