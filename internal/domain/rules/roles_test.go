package rules

import (
	"testing"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
)

func TestRespondentDerivation(t *testing.T) {
	hiring := model.Hiring{ID: "h1", ClientID: "client-1", ProviderID: "provider-1"}

	tests := []struct {
		name     string
		claimant string
		role     enums.ClaimantRole
		viewer   string
		want     PartyRole
	}{
		{name: "client claimant sees claimant", claimant: "client-1", role: enums.ClaimantRoleClient, viewer: "client-1", want: PartyClaimant},
		{name: "provider is respondent of client claim", claimant: "client-1", role: enums.ClaimantRoleClient, viewer: "provider-1", want: PartyRespondent},
		{name: "client is respondent of provider claim", claimant: "provider-1", role: enums.ClaimantRoleProvider, viewer: "client-1", want: PartyRespondent},
		{name: "stranger is none", claimant: "client-1", role: enums.ClaimantRoleClient, viewer: "someone-else", want: PartyNone},
		{name: "empty viewer is none", claimant: "client-1", role: enums.ClaimantRoleClient, viewer: "", want: PartyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := model.Claim{ClaimantUserID: tt.claimant, ClaimantRole: tt.role}
			if got := RoleOf(claim, hiring, tt.viewer); got != tt.want {
				t.Fatalf("RoleOf(%s) = %s, want %s", tt.viewer, got, tt.want)
			}
		})
	}
}

func TestClaimTypeSetsAreRoleScoped(t *testing.T) {
	if !ClaimTypeAllowed(enums.ClaimantRoleClient, enums.ClaimTypePoorQuality) {
		t.Fatal("poor_quality should be a client type")
	}
	if ClaimTypeAllowed(enums.ClaimantRoleProvider, enums.ClaimTypePoorQuality) {
		t.Fatal("poor_quality must not be allowed for providers")
	}
	if !ClaimTypeAllowed(enums.ClaimantRoleProvider, enums.ClaimTypePaymentNotReceived) {
		t.Fatal("payment_not_received should be a provider type")
	}
	if ClaimTypeAllowed(enums.ClaimantRoleClient, enums.ClaimTypeOtherProvider) {
		t.Fatal("other_provider must not be allowed for clients")
	}
}

func TestHiringStatusForResolution(t *testing.T) {
	tests := []struct {
		resolution enums.ResolutionType
		want       enums.HiringStatus
	}{
		{enums.ResolutionClientFavor, enums.HiringStatusCancelledByClaim},
		{enums.ResolutionProviderFavor, enums.HiringStatusCompletedByClaim},
		{enums.ResolutionPartialAgreement, enums.HiringStatusCompletedWithAgreement},
	}
	for _, tt := range tests {
		if got := HiringStatusForResolution(tt.resolution); got != tt.want {
			t.Fatalf("resolution %s: got %s, want %s", tt.resolution, got, tt.want)
		}
	}
}

func TestMergeEvidence(t *testing.T) {
	merged, ok := MergeEvidence([]string{"a", "b"}, []string{"b", "c"})
	if !ok || len(merged) != 3 {
		t.Fatalf("expected deduped merge of 3 items, got %v ok=%v", merged, ok)
	}

	ten := make([]string, 9)
	for i := range ten {
		ten[i] = string(rune('a' + i))
	}
	if _, ok := MergeEvidence(ten, []string{"x", "y"}); ok {
		t.Fatal("merge above the evidence cap must fail")
	}
	if merged, ok := MergeEvidence(ten, []string{"x"}); !ok || len(merged) != 10 {
		t.Fatalf("merge to exactly the cap should pass, got %d ok=%v", len(merged), ok)
	}
}
