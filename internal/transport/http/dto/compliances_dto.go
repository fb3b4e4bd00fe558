package dto

import (
	"time"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
)

// ComplianceItem decorates the stored record with the overdue flag so clients
// never re-derive deadline arithmetic.
type ComplianceItem struct {
	model.Compliance
	IsOverdue bool `json:"is_overdue"`
}

func NewComplianceItem(c model.Compliance, now time.Time) ComplianceItem {
	return ComplianceItem{Compliance: c, IsOverdue: rules.IsOverdue(c, now)}
}

func NewComplianceItems(items []model.Compliance, now time.Time) []ComplianceItem {
	out := make([]ComplianceItem, 0, len(items))
	for _, c := range items {
		out = append(out, NewComplianceItem(c, now))
	}
	return out
}

type ComplianceListResponse struct {
	Compliances []ComplianceItem `json:"compliances"`
	Total       int64            `json:"total"`
	Page        int              `json:"page"`
	Pages       int              `json:"pages"`
	Limit       int              `json:"limit"`
}

type ComplianceResponse struct {
	Compliance ComplianceItem `json:"compliance"`
}

type SubmitComplianceRequest struct {
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

type PeerReviewRequest struct {
	Approved bool    `json:"approved"`
	Reason   *string `json:"reason,omitempty"`
}

type ModeratorReviewRequest struct {
	Decision        string  `json:"decision"`
	Notes           *string `json:"notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type ComplianceStatsResponse struct {
	UserID                string  `json:"user_id"`
	TotalPending          int     `json:"total_pending"`
	TotalCompleted        int     `json:"total_completed"`
	TotalOverdue          int     `json:"total_overdue"`
	AverageCompletionDays float64 `json:"average_completion_days"`
	ComplianceRate        float64 `json:"compliance_rate"`
}

// Pages converts a total row count into a page count for the given limit.
func Pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return pages
}
