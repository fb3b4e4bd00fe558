package rules

import (
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
)

// PartyRole is a viewer's relation to a claim.
type PartyRole string

const (
	PartyClaimant   PartyRole = "claimant"
	PartyRespondent PartyRole = "respondent"
	PartyNone       PartyRole = "none"
)

// RespondentID derives the counter-party of a claim from the hiring's two
// party ids. The respondent is never persisted; it is always recomputed so it
// cannot drift from the hiring's actual parties.
func RespondentID(claim model.Claim, hiring model.Hiring) string {
	if claim.ClaimantRole == enums.ClaimantRoleClient {
		return hiring.ProviderID
	}
	return hiring.ClientID
}

// RoleOf classifies userID against a claim and its hiring.
func RoleOf(claim model.Claim, hiring model.Hiring, userID string) PartyRole {
	switch userID {
	case "":
		return PartyNone
	case claim.ClaimantUserID:
		return PartyClaimant
	case RespondentID(claim, hiring):
		return PartyRespondent
	}
	return PartyNone
}

// ClaimantRoleFor maps a hiring participant to the role they would claim
// under. Returns false when userID is not a party to the hiring.
func ClaimantRoleFor(hiring model.Hiring, userID string) (enums.ClaimantRole, bool) {
	switch userID {
	case hiring.ClientID:
		return enums.ClaimantRoleClient, true
	case hiring.ProviderID:
		return enums.ClaimantRoleProvider, true
	}
	return "", false
}

// IsHiringParty reports whether userID is the hiring's client or provider.
func IsHiringParty(hiring model.Hiring, userID string) bool {
	return userID != "" && (userID == hiring.ClientID || userID == hiring.ProviderID)
}
