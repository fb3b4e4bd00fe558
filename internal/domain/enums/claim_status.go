package enums

type ClaimStatus string

const (
	ClaimStatusOpen                  ClaimStatus = "open"
	ClaimStatusInReview              ClaimStatus = "in_review"
	ClaimStatusPendingClarification  ClaimStatus = "pending_clarification"
	ClaimStatusRequiresStaffResponse ClaimStatus = "requires_staff_response"
	ClaimStatusResolved              ClaimStatus = "resolved"
	ClaimStatusRejected              ClaimStatus = "rejected"
	ClaimStatusCancelled             ClaimStatus = "cancelled"
	ClaimStatusFinishedByModeration  ClaimStatus = "finished_by_moderation"
)

// ClaimStatusRequiresResponse is a virtual filter value: it never appears on a
// stored claim but expands to two underlying status+field combinations in the
// claim listing query.
const ClaimStatusRequiresResponse ClaimStatus = "requires_response"

func (s ClaimStatus) Terminal() bool {
	switch s {
	case ClaimStatusResolved, ClaimStatusRejected, ClaimStatusCancelled, ClaimStatusFinishedByModeration:
		return true
	}
	return false
}

// Active reports whether the claim blocks opening another claim on the same hiring.
func (s ClaimStatus) Active() bool {
	switch s {
	case ClaimStatusOpen, ClaimStatusInReview, ClaimStatusPendingClarification, ClaimStatusRequiresStaffResponse:
		return true
	}
	return false
}
