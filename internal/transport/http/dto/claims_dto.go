package dto

import (
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claimview"
)

type CreateClaimRequest struct {
	HiringID     string   `json:"hiring_id"`
	ClaimType    string   `json:"claim_type"`
	Description  string   `json:"description"`
	OtherReason  *string  `json:"other_reason,omitempty"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

type ClaimResponse struct {
	Claim model.Claim `json:"claim"`
}

type ClaimListResponse struct {
	Claims []model.Claim `json:"claims"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
	Limit  int           `json:"limit"`
}

type HiringClaimsResponse struct {
	Claims []model.Claim `json:"claims"`
}

type ClaimDetailResponse struct {
	claimview.Detail
}

type ObservationsRequest struct {
	Observations string `json:"observations"`
}

type ClarificationRequest struct {
	Response     string   `json:"response"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

type RespondentObservationsRequest struct {
	Observations string   `json:"observations"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

type ResolveComplianceRequest struct {
	ComplianceType    string   `json:"compliance_type"`
	ResponsibleUserID string   `json:"responsible_user_id"`
	Instructions      string   `json:"instructions"`
	Amount            *float64 `json:"amount,omitempty"`
	Currency          *string  `json:"currency,omitempty"`
	PaymentLink       *string  `json:"payment_link,omitempty"`
	RequiresFiles     bool     `json:"requires_files"`
	DeadlineDays      int      `json:"deadline_days"`
	DependsOnIndex    *int     `json:"depends_on_index,omitempty"`
	OrderNumber       *int     `json:"order_number,omitempty"`
	Requirement       string   `json:"requirement,omitempty"`
}

type ResolveClaimRequest struct {
	Rejected                bool                       `json:"rejected"`
	Resolution              string                     `json:"resolution"`
	ResolutionType          *string                    `json:"resolution_type,omitempty"`
	PartialAgreementDetails *string                    `json:"partial_agreement_details,omitempty"`
	Compliances             []ResolveComplianceRequest `json:"compliances,omitempty"`
}
