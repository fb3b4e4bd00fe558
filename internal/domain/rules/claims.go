package rules

import "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"

const (
	// MaxEvidenceURLs caps the total evidence items a claim may accumulate
	// across creation and clarification merges.
	MaxEvidenceURLs = 10

	// MaxCompliancesPerClaim caps remediation items attached at resolution.
	MaxCompliancesPerClaim = 5
)

var clientClaimTypes = map[enums.ClaimType]struct{}{
	enums.ClaimTypeServiceNotDelivered: {},
	enums.ClaimTypePoorQuality:         {},
	enums.ClaimTypeProviderNoShow:      {},
	enums.ClaimTypeUnjustifiedCharge:   {},
	enums.ClaimTypeProviderMisconduct:  {},
	enums.ClaimTypeOtherClient:         {},
}

var providerClaimTypes = map[enums.ClaimType]struct{}{
	enums.ClaimTypePaymentNotReceived: {},
	enums.ClaimTypeClientNoShow:       {},
	enums.ClaimTypeScopeAbuse:         {},
	enums.ClaimTypeClientMisconduct:   {},
	enums.ClaimTypeOtherProvider:      {},
}

// ClaimTypeAllowed reports whether a claim type belongs to the allowed set of
// the claimant's role. The two sets are disjoint.
func ClaimTypeAllowed(role enums.ClaimantRole, t enums.ClaimType) bool {
	switch role {
	case enums.ClaimantRoleClient:
		_, ok := clientClaimTypes[t]
		return ok
	case enums.ClaimantRoleProvider:
		_, ok := providerClaimTypes[t]
		return ok
	}
	return false
}

// HiringStatusForResolution maps a resolution type to the hiring's terminal
// status.
func HiringStatusForResolution(t enums.ResolutionType) enums.HiringStatus {
	switch t {
	case enums.ResolutionClientFavor:
		return enums.HiringStatusCancelledByClaim
	case enums.ResolutionPartialAgreement:
		return enums.HiringStatusCompletedWithAgreement
	default:
		return enums.HiringStatusCompletedByClaim
	}
}

// MergeEvidence appends new evidence to existing, skipping duplicates. The
// second return is false when the merge would exceed MaxEvidenceURLs.
func MergeEvidence(existing, incoming []string) ([]string, bool) {
	merged := append([]string(nil), existing...)
	seen := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		seen[u] = struct{}{}
	}
	for _, u := range incoming {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		merged = append(merged, u)
	}
	if len(merged) > MaxEvidenceURLs {
		return nil, false
	}
	return merged, true
}
