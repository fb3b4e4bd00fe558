package enums

type ComplianceStatus string

const (
	ComplianceStatusPending            ComplianceStatus = "pending"
	ComplianceStatusSubmitted          ComplianceStatus = "submitted"
	ComplianceStatusPeerApproved       ComplianceStatus = "peer_approved"
	ComplianceStatusPeerObjected       ComplianceStatus = "peer_objected"
	ComplianceStatusInReview           ComplianceStatus = "in_review"
	ComplianceStatusRequiresAdjustment ComplianceStatus = "requires_adjustment"
	ComplianceStatusApproved           ComplianceStatus = "approved"
	ComplianceStatusRejected           ComplianceStatus = "rejected"
	ComplianceStatusOverdue            ComplianceStatus = "overdue"
	ComplianceStatusWarning            ComplianceStatus = "warning"
	ComplianceStatusEscalated          ComplianceStatus = "escalated"
)

func (s ComplianceStatus) Terminal() bool {
	switch s {
	case ComplianceStatusApproved, ComplianceStatusRejected, ComplianceStatusEscalated:
		return true
	}
	return false
}

// Reviewable reports whether a moderator may act on the item.
func (s ComplianceStatus) Reviewable() bool {
	switch s {
	case ComplianceStatusSubmitted, ComplianceStatusPeerApproved, ComplianceStatusPeerObjected, ComplianceStatusInReview:
		return true
	}
	return false
}
