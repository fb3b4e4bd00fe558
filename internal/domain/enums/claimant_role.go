package enums

// ClaimantRole identifies which side of the hiring opened the claim.
type ClaimantRole string

const (
	ClaimantRoleClient   ClaimantRole = "client"
	ClaimantRoleProvider ClaimantRole = "provider"
)

func (r ClaimantRole) Valid() bool {
	return r == ClaimantRoleClient || r == ClaimantRoleProvider
}
