package model

import "time"

// Submission is the append-only audit record of one evidence-submission
// attempt. Rows are never mutated after their review outcomes are written.
type Submission struct {
	ID            string   `json:"id"`
	ComplianceID  string   `json:"compliance_id"`
	AttemptNumber int      `json:"attempt_number"`
	EvidenceURLs  []string `json:"evidence_urls"`
	UserNotes     *string  `json:"user_notes,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`

	PeerApproved     *bool      `json:"peer_approved,omitempty"`
	PeerReviewReason *string    `json:"peer_review_reason,omitempty"`
	PeerReviewedBy   *string    `json:"peer_reviewed_by,omitempty"`
	PeerReviewedAt   *time.Time `json:"peer_reviewed_at,omitempty"`

	ModeratorDecision *string    `json:"moderator_decision,omitempty"`
	ModeratorNotes    *string    `json:"moderator_notes,omitempty"`
	ReviewedBy        *string    `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
}
