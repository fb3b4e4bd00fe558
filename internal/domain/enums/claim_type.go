package enums

type ClaimType string

// Client-side claim types.
const (
	ClaimTypeServiceNotDelivered ClaimType = "service_not_delivered"
	ClaimTypePoorQuality         ClaimType = "poor_quality"
	ClaimTypeProviderNoShow      ClaimType = "provider_no_show"
	ClaimTypeUnjustifiedCharge   ClaimType = "unjustified_charge"
	ClaimTypeProviderMisconduct  ClaimType = "provider_misconduct"
	ClaimTypeOtherClient         ClaimType = "other_client"
)

// Provider-side claim types.
const (
	ClaimTypePaymentNotReceived ClaimType = "payment_not_received"
	ClaimTypeClientNoShow       ClaimType = "client_no_show"
	ClaimTypeScopeAbuse         ClaimType = "scope_abuse"
	ClaimTypeClientMisconduct   ClaimType = "client_misconduct"
	ClaimTypeOtherProvider      ClaimType = "other_provider"
)

// RequiresOtherReason reports whether the type is an "other" variant that must
// carry a free-text reason.
func (t ClaimType) RequiresOtherReason() bool {
	return t == ClaimTypeOtherClient || t == ClaimTypeOtherProvider
}
