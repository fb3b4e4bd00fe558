package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	hiringscli "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/clients/hirings"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

type claimStoreStub struct {
	ClaimStore

	claim    model.Claim
	claimErr error
	active   bool

	created       []model.Claim
	statusUpdates []enums.ClaimStatus
	resolution    *pgrepo.ResolutionUpdate
}

func (s *claimStoreStub) GetByID(context.Context, string) (model.Claim, error) {
	return s.claim, s.claimErr
}

func (s *claimStoreStub) GetByIDForUpdate(context.Context, pgx.Tx, string) (model.Claim, error) {
	return s.claim, s.claimErr
}

func (s *claimStoreStub) HasActiveClaim(context.Context, pgx.Tx, string) (bool, error) {
	return s.active, nil
}

func (s *claimStoreStub) Create(_ context.Context, _ pgx.Tx, claim model.Claim) error {
	s.created = append(s.created, claim)
	return nil
}

func (s *claimStoreStub) UpdateStatus(_ context.Context, _ pgx.Tx, _ string, status enums.ClaimStatus, _ time.Time) error {
	s.statusUpdates = append(s.statusUpdates, status)
	s.claim.Status = status
	return nil
}

func (s *claimStoreStub) AssignModerator(_ context.Context, _ pgx.Tx, _ string, moderatorID, _ string, _ time.Time) error {
	if s.claim.AssignedModeratorID == nil {
		id := moderatorID
		s.claim.AssignedModeratorID = &id
	}
	return nil
}

func (s *claimStoreStub) SetRespondentObservations(_ context.Context, _ pgx.Tx, _ string, respondentID, text string, evidence []string, now time.Time) error {
	s.claim.Status = enums.ClaimStatusInReview
	s.claim.RespondentObservations = &text
	s.claim.RespondentObservationsBy = &respondentID
	s.claim.RespondentObservationsAt = &now
	s.claim.EvidenceURLs = evidence
	return nil
}

func (s *claimStoreStub) SetResolution(_ context.Context, _ pgx.Tx, _ string, upd pgrepo.ResolutionUpdate) error {
	s.resolution = &upd
	s.claim.Status = upd.Status
	return nil
}

func (s *claimStoreStub) ListByHiring(context.Context, string) ([]model.Claim, error) {
	return []model.Claim{s.claim}, nil
}

type hiringClientStub struct {
	hiring    model.Hiring
	hiringErr error

	statusCalls  int
	lastStatusID string
}

func (s *hiringClientStub) FindByID(context.Context, string) (model.Hiring, error) {
	return s.hiring, s.hiringErr
}

func (s *hiringClientStub) UpdateStatus(_ context.Context, _, statusID string) error {
	s.statusCalls++
	s.lastStatusID = statusID
	return nil
}

type notifierStub struct {
	Notifier

	createdTo   []string
	receivedTo  []string
	moderation  int
	cancelledTo []string
}

func (s *notifierStub) ClaimCreated(_ context.Context, respondentID, _, _ string) error {
	s.createdTo = append(s.createdTo, respondentID)
	return nil
}

func (s *notifierStub) ClaimReceived(_ context.Context, claimantID, _, _ string) error {
	s.receivedTo = append(s.receivedTo, claimantID)
	return nil
}

func (s *notifierStub) ClaimAwaitingModeration(context.Context, string, string) error {
	s.moderation++
	return nil
}

func (s *notifierStub) ClaimCancelled(_ context.Context, userID, _ string) error {
	s.cancelledTo = append(s.cancelledTo, userID)
	return nil
}

func newTestService(claims *claimStoreStub, hirings *hiringClientStub) *Service {
	ids := 0
	return &Service{
		withTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		claims:  claims,
		hirings: hirings,
		log:     zap.NewNop(),
		now:     func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
		newID: func() string {
			ids++
			return string(rune('a' + ids - 1))
		},
	}
}

func testHiring() model.Hiring {
	return model.Hiring{
		ID:           "hiring-1",
		ClientID:     "client-1",
		ProviderID:   "provider-1",
		StatusID:     "active",
		ServiceTitle: "Kitchen remodeling",
	}
}

func TestCreateValidation(t *testing.T) {
	other := "because"

	cases := []struct {
		name    string
		userID  string
		input   CreateInput
		wantErr error
	}{
		{
			name:   "claim type from the wrong role",
			userID: "client-1",
			input: CreateInput{
				HiringID:    "hiring-1",
				Type:        enums.ClaimTypePaymentNotReceived,
				Description: "provider never paid",
			},
			wantErr: ErrValidation,
		},
		{
			name:   "other type without reason",
			userID: "client-1",
			input: CreateInput{
				HiringID:    "hiring-1",
				Type:        enums.ClaimTypeOtherClient,
				Description: "something else entirely",
			},
			wantErr: ErrValidation,
		},
		{
			name:   "reason on a non-other type",
			userID: "client-1",
			input: CreateInput{
				HiringID:    "hiring-1",
				Type:        enums.ClaimTypePoorQuality,
				Description: "bad work",
				OtherReason: &other,
			},
			wantErr: ErrValidation,
		},
		{
			name:   "stranger to the hiring",
			userID: "intruder",
			input: CreateInput{
				HiringID:    "hiring-1",
				Type:        enums.ClaimTypePoorQuality,
				Description: "bad work",
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "too much evidence",
			userID: "client-1",
			input: CreateInput{
				HiringID:    "hiring-1",
				Type:        enums.ClaimTypePoorQuality,
				Description: "bad work",
				EvidenceURLs: []string{
					"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9", "u10", "u11",
				},
			},
			wantErr: ErrEvidenceLimit,
		},
		{
			name:    "empty description",
			userID:  "client-1",
			input:   CreateInput{HiringID: "hiring-1", Type: enums.ClaimTypePoorQuality, Description: "   "},
			wantErr: ErrValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&claimStoreStub{}, &hiringClientStub{hiring: testHiring()})
			_, err := svc.Create(context.Background(), tc.userID, tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateUnknownHiring(t *testing.T) {
	svc := newTestService(&claimStoreStub{}, &hiringClientStub{hiringErr: hiringscli.ErrHiringNotFound})

	_, err := svc.Create(context.Background(), "client-1", CreateInput{
		HiringID:    "missing",
		Type:        enums.ClaimTypePoorQuality,
		Description: "bad work",
	})
	if !errors.Is(err, ErrHiringNotFound) {
		t.Fatalf("Create() error = %v, want ErrHiringNotFound", err)
	}
}

func TestCreateRejectsSecondActiveClaim(t *testing.T) {
	store := &claimStoreStub{active: true}
	svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

	_, err := svc.Create(context.Background(), "client-1", CreateInput{
		HiringID:    "hiring-1",
		Type:        enums.ClaimTypePoorQuality,
		Description: "bad work",
	})
	if !errors.Is(err, ErrActiveClaimExists) {
		t.Fatalf("Create() error = %v, want ErrActiveClaimExists", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("created %d claims, want none", len(store.created))
	}
}

func TestCreateNotifiesAllParties(t *testing.T) {
	store := &claimStoreStub{}
	hirings := &hiringClientStub{hiring: testHiring()}
	notifier := &notifierStub{}
	svc := newTestService(store, hirings)
	svc.notifier = notifier

	claim, err := svc.Create(context.Background(), "client-1", CreateInput{
		HiringID:    "hiring-1",
		Type:        enums.ClaimTypePoorQuality,
		Description: "bad work",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if claim.Status != enums.ClaimStatusOpen {
		t.Fatalf("status = %s, want open", claim.Status)
	}

	if len(notifier.createdTo) != 1 || notifier.createdTo[0] != "provider-1" {
		t.Fatalf("respondent notice to %v, want provider-1", notifier.createdTo)
	}
	if len(notifier.receivedTo) != 1 || notifier.receivedTo[0] != "client-1" {
		t.Fatalf("claimant confirmation to %v, want client-1", notifier.receivedTo)
	}
	if notifier.moderation != 1 {
		t.Fatalf("moderation inbox notices = %d, want 1", notifier.moderation)
	}
	if hirings.lastStatusID != string(enums.HiringStatusInDispute) {
		t.Fatalf("hiring status = %q, want in dispute", hirings.lastStatusID)
	}
}

func TestGetVisibility(t *testing.T) {
	claim := model.Claim{
		ID:             "claim-1",
		HiringID:       "hiring-1",
		ClaimantUserID: "client-1",
		ClaimantRole:   enums.ClaimantRoleClient,
		Status:         enums.ClaimStatusOpen,
	}
	store := &claimStoreStub{claim: claim}
	svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

	if _, err := svc.Get(context.Background(), "", true, "claim-1"); err != nil {
		t.Fatalf("moderator Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "provider-1", false, "claim-1"); err != nil {
		t.Fatalf("respondent Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "stranger", false, "claim-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger Get error = %v, want ErrForbidden", err)
	}
}

func TestGetTranslatesNotFound(t *testing.T) {
	store := &claimStoreStub{claimErr: pgrepo.ErrClaimNotFound}
	svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

	if _, err := svc.Get(context.Background(), "", true, "missing"); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("Get error = %v, want ErrClaimNotFound", err)
	}
}

func TestMarkInReviewRepeatIsNoOp(t *testing.T) {
	store := &claimStoreStub{claim: model.Claim{ID: "claim-1", Status: enums.ClaimStatusInReview}}
	svc := newTestService(store, &hiringClientStub{})

	claim, err := svc.MarkInReview(context.Background(), "mod-1", "claim-1")
	if err != nil {
		t.Fatalf("repeat MarkInReview: %v", err)
	}
	if claim.Status != enums.ClaimStatusInReview {
		t.Fatalf("status = %s, want in review", claim.Status)
	}
	if len(store.statusUpdates) != 0 {
		t.Fatalf("status rewritten %d times, want none", len(store.statusUpdates))
	}
}

func TestMarkInReviewRejectsLaterStatuses(t *testing.T) {
	store := &claimStoreStub{claim: model.Claim{ID: "claim-1", Status: enums.ClaimStatusResolved}}
	svc := newTestService(store, &hiringClientStub{})

	if _, err := svc.MarkInReview(context.Background(), "mod-1", "claim-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("MarkInReview error = %v, want ErrInvalidTransition", err)
	}
}

func TestAddObservationsStatusGate(t *testing.T) {
	for _, status := range []enums.ClaimStatus{
		enums.ClaimStatusPendingClarification,
		enums.ClaimStatusRequiresStaffResponse,
		enums.ClaimStatusResolved,
	} {
		t.Run(string(status), func(t *testing.T) {
			store := &claimStoreStub{claim: model.Claim{ID: "claim-1", Status: status}}
			svc := newTestService(store, &hiringClientStub{})

			if _, err := svc.AddObservations(context.Background(), "mod-1", "claim-1", "please clarify"); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("AddObservations error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestSubmitRespondentObservationsOnlyWhileOpen(t *testing.T) {
	claim := model.Claim{
		ID:             "claim-1",
		HiringID:       "hiring-1",
		ClaimantUserID: "client-1",
		ClaimantRole:   enums.ClaimantRoleClient,
		Status:         enums.ClaimStatusInReview,
	}
	store := &claimStoreStub{claim: claim}
	svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

	_, err := svc.SubmitRespondentObservations(context.Background(), "provider-1", "claim-1", "my side", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("in-review error = %v, want ErrInvalidTransition", err)
	}

	store.claim.Status = enums.ClaimStatusOpen
	updated, err := svc.SubmitRespondentObservations(context.Background(), "provider-1", "claim-1", "my side", nil)
	if err != nil {
		t.Fatalf("open submit: %v", err)
	}
	if updated.Status != enums.ClaimStatusInReview {
		t.Fatalf("status = %s, want in review", updated.Status)
	}
}

func TestSubmitRespondentObservationsOnce(t *testing.T) {
	answered := "already said my piece"
	store := &claimStoreStub{claim: model.Claim{
		ID:                     "claim-1",
		HiringID:               "hiring-1",
		ClaimantUserID:         "client-1",
		ClaimantRole:           enums.ClaimantRoleClient,
		Status:                 enums.ClaimStatusOpen,
		RespondentObservations: &answered,
	}}
	svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

	if _, err := svc.SubmitRespondentObservations(context.Background(), "provider-1", "claim-1", "again", nil); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second answer error = %v, want ErrAlreadyAnswered", err)
	}
}

func TestResolveInputValidation(t *testing.T) {
	partial := enums.ResolutionPartialAgreement
	clientFavor := enums.ResolutionClientFavor

	cases := []struct {
		name  string
		input ResolveInput
	}{
		{
			name:  "missing resolution text",
			input: ResolveInput{ResolutionType: &clientFavor},
		},
		{
			name:  "approval without resolution type",
			input: ResolveInput{Resolution: "done"},
		},
		{
			name: "rejection with compliances",
			input: ResolveInput{
				Rejected:   true,
				Resolution: "unfounded",
				Compliances: []ComplianceInput{
					{Type: enums.ComplianceTypeProvideEvidence},
				},
			},
		},
		{
			name:  "partial agreement without details",
			input: ResolveInput{Resolution: "split it", ResolutionType: &partial},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&claimStoreStub{}, &hiringClientStub{hiring: testHiring()})
			_, err := svc.Resolve(context.Background(), "mod-1", "claim-1", tc.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Resolve() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestResolveTooManyCompliances(t *testing.T) {
	clientFavor := enums.ResolutionClientFavor
	inputs := make([]ComplianceInput, 6)
	for i := range inputs {
		inputs[i] = ComplianceInput{Type: enums.ComplianceTypeProvideEvidence}
	}

	svc := newTestService(&claimStoreStub{}, &hiringClientStub{hiring: testHiring()})
	_, err := svc.Resolve(context.Background(), "mod-1", "claim-1", ResolveInput{
		Resolution:     "fix everything",
		ResolutionType: &clientFavor,
		Compliances:    inputs,
	})
	if !errors.Is(err, ErrComplianceOverflow) {
		t.Fatalf("Resolve() error = %v, want ErrComplianceOverflow", err)
	}
}

func TestRejectionRestoresHiringStatus(t *testing.T) {
	store := &claimStoreStub{claim: model.Claim{
		ID:                     "claim-1",
		HiringID:               "hiring-1",
		ClaimantUserID:         "client-1",
		Status:                 enums.ClaimStatusInReview,
		PreviousHiringStatusID: "active",
	}}
	hirings := &hiringClientStub{hiring: testHiring()}
	svc := newTestService(store, hirings)

	updated, err := svc.Resolve(context.Background(), "mod-1", "claim-1", ResolveInput{
		Rejected:   true,
		Resolution: "unfounded",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if updated.Status != enums.ClaimStatusRejected {
		t.Fatalf("status = %s, want rejected", updated.Status)
	}
	if hirings.lastStatusID != "active" {
		t.Fatalf("hiring status = %q, want the pre-claim status restored", hirings.lastStatusID)
	}
}

func TestCancelWhileNonTerminal(t *testing.T) {
	moderator := "mod-1"
	store := &claimStoreStub{claim: model.Claim{
		ID:                     "claim-1",
		HiringID:               "hiring-1",
		ClaimantUserID:         "client-1",
		ClaimantRole:           enums.ClaimantRoleClient,
		Status:                 enums.ClaimStatusRequiresStaffResponse,
		PreviousHiringStatusID: "active",
		AssignedModeratorID:    &moderator,
	}}
	hirings := &hiringClientStub{hiring: testHiring()}
	notifier := &notifierStub{}
	svc := newTestService(store, hirings)
	svc.notifier = notifier

	updated, err := svc.Cancel(context.Background(), "client-1", "claim-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if updated.Status != enums.ClaimStatusCancelled {
		t.Fatalf("status = %s, want cancelled", updated.Status)
	}
	if hirings.lastStatusID != "active" {
		t.Fatalf("hiring status = %q, want the pre-claim status restored", hirings.lastStatusID)
	}

	want := []string{"client-1", "provider-1", "mod-1"}
	if len(notifier.cancelledTo) != len(want) {
		t.Fatalf("cancel notices to %v, want %v", notifier.cancelledTo, want)
	}
	for i, userID := range notifier.cancelledTo {
		if userID != want[i] {
			t.Fatalf("cancel notice %d to %q, want %q", i, userID, want[i])
		}
	}
}

func TestCancelRefusedOnTerminalClaims(t *testing.T) {
	for _, status := range []enums.ClaimStatus{
		enums.ClaimStatusResolved,
		enums.ClaimStatusRejected,
		enums.ClaimStatusCancelled,
		enums.ClaimStatusFinishedByModeration,
	} {
		t.Run(string(status), func(t *testing.T) {
			store := &claimStoreStub{claim: model.Claim{
				ID:             "claim-1",
				ClaimantUserID: "client-1",
				Status:         status,
			}}
			svc := newTestService(store, &hiringClientStub{hiring: testHiring()})

			if _, err := svc.Cancel(context.Background(), "client-1", "claim-1"); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Cancel error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestBuildCompliances(t *testing.T) {
	svc := newTestService(&claimStoreStub{}, &hiringClientStub{})
	hiring := testHiring()
	claim := model.Claim{ID: "claim-1", HiringID: hiring.ID}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	amount := 150.0
	currency := "USD"
	dependsOnFirst := 0

	items, err := svc.buildCompliances(claim, hiring, []ComplianceInput{
		{
			Type:              enums.ComplianceTypePartialRefund,
			ResponsibleUserID: "provider-1",
			Instructions:      "refund half the fee",
			Amount:            &amount,
			Currency:          &currency,
			DeadlineDays:      7,
		},
		{
			Type:              enums.ComplianceTypeConfirmCompletion,
			ResponsibleUserID: "client-1",
			Instructions:      "confirm the refund arrived",
			DeadlineDays:      3,
			DependsOnIndex:    &dependsOnFirst,
		},
	}, now)
	if err != nil {
		t.Fatalf("buildCompliances: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first, second := items[0], items[1]
	if first.Status != enums.ComplianceStatusPending {
		t.Fatalf("first status = %s, want pending", first.Status)
	}
	if got, want := first.Deadline, now.AddDate(0, 0, 7); !got.Equal(want) {
		t.Fatalf("first deadline = %v, want %v", got, want)
	}
	if second.DependsOn == nil || *second.DependsOn != first.ID {
		t.Fatalf("second DependsOn = %v, want %q", second.DependsOn, first.ID)
	}
	if second.OrderNumber != first.OrderNumber+1 {
		t.Fatalf("second OrderNumber = %d, want %d", second.OrderNumber, first.OrderNumber+1)
	}
	if second.Requirement != enums.RequirementSequential {
		t.Fatalf("second Requirement = %s, want sequential", second.Requirement)
	}
}

func TestBuildCompliancesValidation(t *testing.T) {
	svc := newTestService(&claimStoreStub{}, &hiringClientStub{})
	hiring := testHiring()
	claim := model.Claim{ID: "claim-1", HiringID: hiring.ID}
	now := time.Now().UTC()
	forward := 1

	cases := []struct {
		name   string
		inputs []ComplianceInput
	}{
		{
			name: "monetary type without amount",
			inputs: []ComplianceInput{{
				Type:              enums.ComplianceTypeFullRefund,
				ResponsibleUserID: "provider-1",
				Instructions:      "refund",
				DeadlineDays:      7,
			}},
		},
		{
			name: "responsible user outside the hiring",
			inputs: []ComplianceInput{{
				Type:              enums.ComplianceTypeProvideEvidence,
				ResponsibleUserID: "stranger",
				Instructions:      "send proof",
				DeadlineDays:      7,
			}},
		},
		{
			name: "forward dependency",
			inputs: []ComplianceInput{{
				Type:              enums.ComplianceTypeProvideEvidence,
				ResponsibleUserID: "provider-1",
				Instructions:      "send proof",
				DeadlineDays:      7,
				DependsOnIndex:    &forward,
			}},
		},
		{
			name: "non-positive deadline",
			inputs: []ComplianceInput{{
				Type:              enums.ComplianceTypeProvideEvidence,
				ResponsibleUserID: "provider-1",
				Instructions:      "send proof",
				DeadlineDays:      0,
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.buildCompliances(claim, hiring, tc.inputs, now); !errors.Is(err, ErrValidation) {
				t.Fatalf("buildCompliances error = %v, want ErrValidation", err)
			}
		})
	}
}
