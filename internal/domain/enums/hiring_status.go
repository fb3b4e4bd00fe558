package enums

// HiringStatus mirrors the status ids owned by the hiring service. Only the
// statuses the claim flow writes are enumerated here; the previous status
// captured at claim creation can be any id the hiring service uses.
type HiringStatus string

const (
	HiringStatusInDispute              HiringStatus = "in_dispute"
	HiringStatusCancelledByClaim       HiringStatus = "cancelled_by_claim"
	HiringStatusCompletedByClaim       HiringStatus = "completed_by_claim"
	HiringStatusCompletedWithAgreement HiringStatus = "completed_with_agreement"
)
