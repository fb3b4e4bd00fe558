package enums

// ComplianceType is the kind of remediation a moderator can attach to a
// resolved claim.
type ComplianceType string

const (
	ComplianceTypeFullRefund          ComplianceType = "full_refund"
	ComplianceTypePartialRefund       ComplianceType = "partial_refund"
	ComplianceTypeRedoService         ComplianceType = "redo_service"
	ComplianceTypeCompletePendingWork ComplianceType = "complete_pending_work"
	ComplianceTypeDeliverMissingItems ComplianceType = "deliver_missing_items"
	ComplianceTypePayRemainingAmount  ComplianceType = "pay_remaining_amount"
	ComplianceTypePartialPayment      ComplianceType = "partial_payment"
	ComplianceTypeCompensationPayment ComplianceType = "compensation_payment"
	ComplianceTypeProvideEvidence     ComplianceType = "provide_evidence"
	ComplianceTypeWrittenCommitment   ComplianceType = "written_commitment"
	ComplianceTypeConfirmCompletion   ComplianceType = "confirm_completion"
)

func (t ComplianceType) Valid() bool {
	switch t {
	case ComplianceTypeFullRefund, ComplianceTypePartialRefund, ComplianceTypeRedoService,
		ComplianceTypeCompletePendingWork, ComplianceTypeDeliverMissingItems,
		ComplianceTypePayRemainingAmount, ComplianceTypePartialPayment,
		ComplianceTypeCompensationPayment, ComplianceTypeProvideEvidence,
		ComplianceTypeWrittenCommitment, ComplianceTypeConfirmCompletion:
		return true
	}
	return false
}

// Monetary reports whether the type moves money and therefore expects
// amount/currency (and usually a payment link).
func (t ComplianceType) Monetary() bool {
	switch t {
	case ComplianceTypeFullRefund, ComplianceTypePartialRefund, ComplianceTypePayRemainingAmount,
		ComplianceTypePartialPayment, ComplianceTypeCompensationPayment:
		return true
	}
	return false
}
