package consequences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/rules"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
)

func TestEscalationForTierOne(t *testing.T) {
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	upd := escalationFor(1, now)
	if upd.Status != enums.ComplianceStatusOverdue {
		t.Fatalf("status = %s, want overdue", upd.Status)
	}
	if upd.WarningLevel != rules.WarningLevelOverdue {
		t.Fatalf("warning level = %d, want %d", upd.WarningLevel, rules.WarningLevelOverdue)
	}
	want := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	if upd.ExtendedDeadline == nil || !upd.ExtendedDeadline.Equal(want) {
		t.Fatalf("extended deadline = %v, want %v", upd.ExtendedDeadline, want)
	}
}

func TestEscalationForTierTwoAnchorsToSweepTime(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	upd := escalationFor(2, now)
	if upd.Status != enums.ComplianceStatusWarning {
		t.Fatalf("status = %s, want warning", upd.Status)
	}
	want := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	if upd.FinalDeadline == nil || !upd.FinalDeadline.Equal(want) {
		t.Fatalf("final deadline = %v, want %v", upd.FinalDeadline, want)
	}
	if upd.ExtendedDeadline != nil {
		t.Fatal("tier two must not rewrite the extended deadline")
	}
}

func TestEscalationForTierThree(t *testing.T) {
	upd := escalationFor(3, time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))
	if upd.Status != enums.ComplianceStatusEscalated {
		t.Fatalf("status = %s, want escalated", upd.Status)
	}
	if upd.WarningLevel != rules.WarningLevelBanned {
		t.Fatalf("warning level = %d, want %d", upd.WarningLevel, rules.WarningLevelBanned)
	}
	if upd.ExtendedDeadline != nil || upd.FinalDeadline != nil {
		t.Fatal("tier three grants no further deadlines")
	}
}

type escalationStoreStub struct {
	items map[string]model.Compliance
}

func (s *escalationStoreStub) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id string) (model.Compliance, error) {
	item, ok := s.items[id]
	if !ok {
		return model.Compliance{}, pgrepo.ErrComplianceNotFound
	}
	return item, nil
}

func (s *escalationStoreStub) ListOverdueCandidates(_ context.Context, _ time.Time) ([]model.Compliance, error) {
	out := make([]model.Compliance, 0, len(s.items))
	for _, item := range s.items {
		if !item.Status.Terminal() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *escalationStoreStub) ListExpiringSoon(context.Context, time.Time, time.Duration) ([]model.Compliance, error) {
	return nil, nil
}

func (s *escalationStoreStub) ApplyEscalation(_ context.Context, _ pgx.Tx, id string, upd pgrepo.EscalationUpdate, now time.Time) error {
	item := s.items[id]
	item.Status = upd.Status
	item.WarningLevel = upd.WarningLevel
	if upd.ExtendedDeadline != nil {
		item.ExtendedDeadline = upd.ExtendedDeadline
	}
	if upd.FinalDeadline != nil {
		item.FinalDeadline = upd.FinalDeadline
	}
	item.UpdatedAt = now
	s.items[id] = item
	return nil
}

func (s *escalationStoreStub) ResetWarningLevel(_ context.Context, _ pgx.Tx, id string, now time.Time) error {
	item := s.items[id]
	item.WarningLevel = rules.WarningLevelNone
	item.UpdatedAt = now
	s.items[id] = item
	return nil
}

type userClientStub struct {
	suspended []string
	banned    []string
}

func (s *userClientStub) SuspendUser(_ context.Context, userID string, _ int, _ string) error {
	s.suspended = append(s.suspended, userID)
	return nil
}

func (s *userClientStub) BanUser(_ context.Context, userID, _ string) error {
	s.banned = append(s.banned, userID)
	return nil
}

type claimStoreStub struct {
	claim model.Claim
}

func (s *claimStoreStub) GetByID(context.Context, string) (model.Claim, error) {
	return s.claim, nil
}

type hiringStub struct {
	hiring model.Hiring
}

func (s hiringStub) FindByID(context.Context, string) (model.Hiring, error) {
	return s.hiring, nil
}

type noticeCall struct {
	userID string
	level  int
}

type notifierStub struct {
	reminders   []string
	reminderErr error
	warnings    []int
	escalated   []string
	notices     []noticeCall
}

func (s *notifierStub) DeadlineReminder(_ context.Context, _, complianceID string, _ time.Time) error {
	if s.reminderErr != nil {
		return s.reminderErr
	}
	s.reminders = append(s.reminders, complianceID)
	return nil
}

func (s *notifierStub) EscalationWarning(_ context.Context, _, _ string, warningLevel int, _ time.Time) error {
	s.warnings = append(s.warnings, warningLevel)
	return nil
}

func (s *notifierStub) ComplianceEscalated(_ context.Context, _, complianceID string) error {
	s.escalated = append(s.escalated, complianceID)
	return nil
}

func (s *notifierStub) NonComplianceNotice(_ context.Context, userID, _ string, warningLevel int) error {
	s.notices = append(s.notices, noticeCall{userID: userID, level: warningLevel})
	return nil
}

func newEscalationService(store *escalationStoreStub, users *userClientStub, notifier *notifierStub, now func() time.Time) *Service {
	return &Service{
		withTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		compliances: store,
		claims:      &claimStoreStub{claim: model.Claim{ID: "claim-1", HiringID: "hiring-1"}},
		hirings:     hiringStub{hiring: model.Hiring{ID: "hiring-1", ClientID: "client-1", ProviderID: "provider-1"}},
		users:       users,
		notifier:    notifier,
		cfg:         Config{SuspensionDays: 15, ReminderWindow: 24 * time.Hour},
		log:         zap.NewNop(),
		now:         now,
	}
}

// Walks one item through all three tiers across consecutive sweeps: overdue
// with an extension, then warning with a suspension, then escalated with a
// ban, with a counter-party notice at every step.
func TestProcessOverdueWalksTheLadder(t *testing.T) {
	start := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	item := model.Compliance{
		ID:                "comp-1",
		ClaimID:           "claim-1",
		ResponsibleUserID: "provider-1",
		Type:              enums.ComplianceTypeProvideEvidence,
		Status:            enums.ComplianceStatusPending,
		Deadline:          start.AddDate(0, 0, -1),
	}

	store := &escalationStoreStub{items: map[string]model.Compliance{item.ID: item}}
	users := &userClientStub{}
	notifier := &notifierStub{}
	current := start
	svc := newEscalationService(store, users, notifier, func() time.Time { return current })

	// First sweep: the missed deadline lands tier one, extension anchored to
	// the sweep instant rather than the original deadline.
	result, err := svc.ProcessOverdue(context.Background())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if result.Escalated != 1 {
		t.Fatalf("first sweep Escalated = %d, want 1", result.Escalated)
	}
	got := store.items[item.ID]
	if got.Status != enums.ComplianceStatusOverdue || got.WarningLevel != rules.WarningLevelOverdue {
		t.Fatalf("after first sweep status = %s level = %d", got.Status, got.WarningLevel)
	}
	wantExtended := start.AddDate(0, 0, rules.ExtendedDeadlineDays)
	if got.ExtendedDeadline == nil || !got.ExtendedDeadline.Equal(wantExtended) {
		t.Fatalf("extended deadline = %v, want %v", got.ExtendedDeadline, wantExtended)
	}

	// Re-running inside the extension window changes nothing.
	result, err = svc.ProcessOverdue(context.Background())
	if err != nil {
		t.Fatalf("repeat sweep: %v", err)
	}
	if result.Escalated != 0 {
		t.Fatalf("repeat sweep Escalated = %d, want 0", result.Escalated)
	}

	// Second sweep past the extension: tier two suspends and grants the final
	// window from this sweep's instant.
	current = wantExtended.Add(time.Hour)
	if _, err = svc.ProcessOverdue(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	got = store.items[item.ID]
	if got.Status != enums.ComplianceStatusWarning || got.WarningLevel != rules.WarningLevelSuspended {
		t.Fatalf("after second sweep status = %s level = %d", got.Status, got.WarningLevel)
	}
	wantFinal := current.AddDate(0, 0, rules.FinalDeadlineDays)
	if got.FinalDeadline == nil || !got.FinalDeadline.Equal(wantFinal) {
		t.Fatalf("final deadline = %v, want %v", got.FinalDeadline, wantFinal)
	}
	if len(users.suspended) != 1 || users.suspended[0] != "provider-1" {
		t.Fatalf("suspended = %v, want exactly provider-1", users.suspended)
	}

	// Third sweep past the final deadline: tier three bans.
	current = wantFinal.Add(time.Hour)
	if _, err = svc.ProcessOverdue(context.Background()); err != nil {
		t.Fatalf("third sweep: %v", err)
	}
	got = store.items[item.ID]
	if got.Status != enums.ComplianceStatusEscalated || got.WarningLevel != rules.WarningLevelBanned {
		t.Fatalf("after third sweep status = %s level = %d", got.Status, got.WarningLevel)
	}
	if len(users.banned) != 1 || users.banned[0] != "provider-1" {
		t.Fatalf("banned = %v, want exactly provider-1", users.banned)
	}
	if len(users.suspended) != 1 {
		t.Fatalf("suspended twice: %v", users.suspended)
	}

	want := []noticeCall{
		{userID: "client-1", level: 1},
		{userID: "client-1", level: 2},
		{userID: "client-1", level: 3},
	}
	if len(notifier.notices) != len(want) {
		t.Fatalf("counter-party notices = %v, want %v", notifier.notices, want)
	}
	for i, n := range notifier.notices {
		if n != want[i] {
			t.Fatalf("notice %d = %v, want %v", i, n, want[i])
		}
	}
}

type reminderComplianceStub struct {
	ComplianceStore

	expiring []model.Compliance
	listErr  error
}

func (s *reminderComplianceStub) ListExpiringSoon(context.Context, time.Time, time.Duration) ([]model.Compliance, error) {
	return s.expiring, s.listErr
}

type reminderStoreStub struct {
	sent map[string]bool
}

func (s *reminderStoreStub) MarkSent(_ context.Context, complianceID string, _ time.Time, _ time.Duration) (bool, error) {
	if s.sent == nil {
		s.sent = map[string]bool{}
	}
	if s.sent[complianceID] {
		return false, nil
	}
	s.sent[complianceID] = true
	return true, nil
}

func newReminderService(store *reminderComplianceStub, reminders *reminderStoreStub, notifier *notifierStub) *Service {
	return &Service{
		compliances: store,
		reminders:   reminders,
		notifier:    notifier,
		cfg:         Config{SuspensionDays: 15, ReminderWindow: 24 * time.Hour},
		log:         zap.NewNop(),
		now:         func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
}

func TestProcessRemindersDeduplicates(t *testing.T) {
	expiring := []model.Compliance{
		{ID: "comp-1", ResponsibleUserID: "user-1", Deadline: time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)},
		{ID: "comp-2", ResponsibleUserID: "user-2", Deadline: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)},
	}
	store := &reminderComplianceStub{expiring: expiring}
	notifier := &notifierStub{}
	svc := newReminderService(store, &reminderStoreStub{}, notifier)

	result, err := svc.ProcessReminders(context.Background())
	if err != nil {
		t.Fatalf("ProcessReminders: %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("Sent = %d, want 2", result.Sent)
	}

	// Second run inside the same day sends nothing.
	result, err = svc.ProcessReminders(context.Background())
	if err != nil {
		t.Fatalf("second ProcessReminders: %v", err)
	}
	if result.Sent != 0 {
		t.Fatalf("second run Sent = %d, want 0", result.Sent)
	}
	if len(notifier.reminders) != 2 {
		t.Fatalf("reminders delivered = %d, want 2", len(notifier.reminders))
	}
}

func TestProcessRemindersNotifyFailureDoesNotCount(t *testing.T) {
	store := &reminderComplianceStub{expiring: []model.Compliance{{ID: "comp-1", ResponsibleUserID: "user-1"}}}
	notifier := &notifierStub{reminderErr: errors.New("smtp down")}
	svc := newReminderService(store, &reminderStoreStub{}, notifier)

	result, err := svc.ProcessReminders(context.Background())
	if err != nil {
		t.Fatalf("ProcessReminders: %v", err)
	}
	if result.Sent != 0 {
		t.Fatalf("Sent = %d, want 0 after notify failure", result.Sent)
	}
}
