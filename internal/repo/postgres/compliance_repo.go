package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
)

var ErrComplianceNotFound = errors.New("compliance not found")

type ComplianceRepo struct {
	pool *pgxpool.Pool
}

func NewComplianceRepo(pool *pgxpool.Pool) *ComplianceRepo {
	return &ComplianceRepo{pool: pool}
}

// authoritativeDeadline is the deadline the escalation ladder tracks for the
// row's warning level.
const authoritativeDeadline = `
	CASE warning_level
		WHEN 2 THEN COALESCE(final_deadline, deadline)
		WHEN 1 THEN COALESCE(extended_deadline, deadline)
		ELSE deadline
	END`

const complianceColumns = `
	id, claim_id, responsible_user_id, compliance_type, status,
	moderator_instructions, amount, currency, payment_link, requires_files,
	deadline, extended_deadline, final_deadline, original_deadline_days,
	evidence_urls, user_notes, submitted_at,
	peer_reviewed_by, peer_approved, peer_review_reason, peer_reviewed_at,
	reviewed_by, reviewed_at, moderator_notes, rejection_reason, rejection_count,
	warning_level, appealed, depends_on, order_number, requirement,
	created_at, updated_at`

func (r *ComplianceRepo) CreateBatch(ctx context.Context, tx pgx.Tx, items []model.Compliance) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
INSERT INTO claim_compliances (
	id, claim_id, responsible_user_id, compliance_type, status,
	moderator_instructions, amount, currency, payment_link, requires_files,
	deadline, original_deadline_days, evidence_urls,
	depends_on, order_number, requirement,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
`,
			item.ID, item.ClaimID, item.ResponsibleUserID, string(item.Type), string(item.Status),
			item.ModeratorInstructions, item.Amount, item.Currency, item.PaymentLink, item.RequiresFiles,
			item.Deadline, item.OriginalDeadlineDays, item.EvidenceURLs,
			item.DependsOn, item.OrderNumber, string(item.Requirement),
			item.CreatedAt,
		); err != nil {
			return fmt.Errorf("create compliance: %w", err)
		}
	}
	return nil
}

func (r *ComplianceRepo) GetByID(ctx context.Context, complianceID string) (model.Compliance, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+complianceColumns+` FROM claim_compliances WHERE id = $1`, complianceID)
	item, err := scanCompliance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Compliance{}, ErrComplianceNotFound
		}
		return model.Compliance{}, fmt.Errorf("get compliance by id: %w", err)
	}
	return item, nil
}

func (r *ComplianceRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, complianceID string) (model.Compliance, error) {
	if tx == nil {
		return model.Compliance{}, fmt.Errorf("transaction is required")
	}
	row := tx.QueryRow(ctx, `SELECT `+complianceColumns+` FROM claim_compliances WHERE id = $1 FOR UPDATE`, complianceID)
	item, err := scanCompliance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Compliance{}, ErrComplianceNotFound
		}
		return model.Compliance{}, fmt.Errorf("get compliance for update: %w", err)
	}
	return item, nil
}

func (r *ComplianceRepo) ListByClaim(ctx context.Context, claimID string) ([]model.Compliance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+complianceColumns+` FROM claim_compliances
WHERE claim_id = $1
ORDER BY order_number ASC, created_at ASC`, claimID)
	if err != nil {
		return nil, fmt.Errorf("list compliances by claim: %w", err)
	}
	defer rows.Close()

	return collectCompliances(rows)
}

type ComplianceFilter struct {
	ClaimID     string
	UserID      string
	Status      enums.ComplianceStatus
	OnlyOverdue bool
	Now         time.Time
	Page        int
	Limit       int
}

func (r *ComplianceRepo) List(ctx context.Context, filter ComplianceFilter) ([]model.Compliance, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ClaimID != "" {
		where = append(where, "claim_id = "+arg(filter.ClaimID))
	}
	if filter.UserID != "" {
		where = append(where, "responsible_user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.OnlyOverdue {
		now := filter.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		where = append(where, fmt.Sprintf(
			"status NOT IN ('approved', 'rejected', 'escalated') AND %s < %s",
			authoritativeDeadline, arg(now)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claim_compliances WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count compliances: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	listArgs := append(args, limit, (page-1)*limit)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT %s FROM claim_compliances WHERE %s
ORDER BY deadline ASC, order_number ASC
LIMIT $%d OFFSET $%d`, complianceColumns, cond, len(args)+1, len(args)+2), listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list compliances: %w", err)
	}
	defer rows.Close()

	items, err := collectCompliances(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetSubmitted records a new evidence submission and clears the review
// outcomes of the previous cycle.
func (r *ComplianceRepo) SetSubmitted(ctx context.Context, tx pgx.Tx, complianceID string, evidence []string, notes *string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = 'submitted',
	evidence_urls = $2,
	user_notes = $3,
	submitted_at = $4,
	peer_reviewed_by = NULL,
	peer_approved = NULL,
	peer_review_reason = NULL,
	peer_reviewed_at = NULL,
	reviewed_by = NULL,
	reviewed_at = NULL,
	moderator_notes = NULL,
	rejection_reason = NULL,
	updated_at = $4
WHERE id = $1`,
		complianceID, evidence, notes, now)
}

func (r *ComplianceRepo) SetPeerReview(ctx context.Context, tx pgx.Tx, complianceID, reviewerID string, approved bool, reason *string, now time.Time) error {
	status := enums.ComplianceStatusPeerObjected
	if approved {
		status = enums.ComplianceStatusPeerApproved
	}
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = $2,
	peer_reviewed_by = $3,
	peer_approved = $4,
	peer_review_reason = $5,
	peer_reviewed_at = $6,
	updated_at = $6
WHERE id = $1`,
		complianceID, string(status), reviewerID, approved, reason, now)
}

// SetApproved closes the item and clears the penalty state: a user who
// eventually complies is not penalized retroactively.
func (r *ComplianceRepo) SetApproved(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes *string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = 'approved',
	reviewed_by = $2,
	reviewed_at = $3,
	moderator_notes = $4,
	warning_level = 0,
	extended_deadline = NULL,
	final_deadline = NULL,
	updated_at = $3
WHERE id = $1`,
		complianceID, moderatorID, now, notes)
}

func (r *ComplianceRepo) SetRejected(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes, reason *string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = 'rejected',
	reviewed_by = $2,
	reviewed_at = $3,
	moderator_notes = $4,
	rejection_reason = $5,
	rejection_count = rejection_count + 1,
	updated_at = $3
WHERE id = $1`,
		complianceID, moderatorID, now, notes, reason)
}

func (r *ComplianceRepo) SetRequiresAdjustment(ctx context.Context, tx pgx.Tx, complianceID, moderatorID string, notes *string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = 'requires_adjustment',
	reviewed_by = $2,
	reviewed_at = $3,
	moderator_notes = $4,
	updated_at = $3
WHERE id = $1`,
		complianceID, moderatorID, now, notes)
}

type EscalationUpdate struct {
	Status           enums.ComplianceStatus
	WarningLevel     int
	ExtendedDeadline *time.Time
	FinalDeadline    *time.Time
}

// ApplyEscalation persists one ladder step. Deadline fields are only written
// when the step sets them, so an earlier tier's grant is never erased.
func (r *ComplianceRepo) ApplyEscalation(ctx context.Context, tx pgx.Tx, complianceID string, upd EscalationUpdate, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET
	status = $2,
	warning_level = $3,
	extended_deadline = COALESCE($4, extended_deadline),
	final_deadline = COALESCE($5, final_deadline),
	updated_at = $6
WHERE id = $1`,
		complianceID, string(upd.Status), upd.WarningLevel, upd.ExtendedDeadline, upd.FinalDeadline, now)
}

// ResetWarningLevel self-heals a row whose warning level contradicts its
// status, before the sweep evaluates it.
func (r *ComplianceRepo) ResetWarningLevel(ctx context.Context, tx pgx.Tx, complianceID string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claim_compliances SET warning_level = 0, updated_at = $2 WHERE id = $1`,
		complianceID, now)
}

// ListOverdueCandidates returns every non-terminal, non-appealed item whose
// original deadline has passed. Tier evaluation happens in the service so a
// partially applied previous run can be reconstructed safely.
func (r *ComplianceRepo) ListOverdueCandidates(ctx context.Context, now time.Time) ([]model.Compliance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+complianceColumns+` FROM claim_compliances
WHERE status NOT IN ('approved', 'rejected', 'escalated')
AND appealed = FALSE
AND deadline < $1
ORDER BY deadline ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue candidates: %w", err)
	}
	defer rows.Close()

	return collectCompliances(rows)
}

// ListExpiringSoon returns actionable items whose authoritative deadline
// falls inside the reminder window.
func (r *ComplianceRepo) ListExpiringSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Compliance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+complianceColumns+` FROM claim_compliances
WHERE status NOT IN ('approved', 'rejected', 'escalated')
AND appealed = FALSE
AND `+authoritativeDeadline+` BETWEEN $1 AND $2
ORDER BY deadline ASC`, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("list expiring compliances: %w", err)
	}
	defer rows.Close()

	return collectCompliances(rows)
}

type UserStats struct {
	TotalPending          int
	TotalCompleted        int
	TotalOverdue          int
	AverageCompletionDays float64
	ComplianceRate        float64
}

func (r *ComplianceRepo) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*) FILTER (WHERE status IN ('pending', 'submitted', 'peer_approved', 'peer_objected', 'in_review', 'requires_adjustment')),
	COUNT(*) FILTER (WHERE status = 'approved'),
	COUNT(*) FILTER (WHERE status IN ('overdue', 'warning', 'escalated')),
	COALESCE(AVG(EXTRACT(EPOCH FROM (reviewed_at - created_at)) / 86400.0) FILTER (WHERE status = 'approved'), 0),
	COALESCE(
		COUNT(*) FILTER (WHERE status = 'approved')::FLOAT
		/ NULLIF(COUNT(*) FILTER (WHERE status IN ('approved', 'rejected', 'escalated')), 0),
		0
	)
FROM claim_compliances
WHERE responsible_user_id = $1`, userID).Scan(
		&stats.TotalPending, &stats.TotalCompleted, &stats.TotalOverdue,
		&stats.AverageCompletionDays, &stats.ComplianceRate,
	)
	if err != nil {
		return UserStats{}, fmt.Errorf("aggregate user compliance stats: %w", err)
	}
	return stats, nil
}

func (r *ComplianceRepo) exec(ctx context.Context, tx pgx.Tx, query string, args ...any) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update compliance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrComplianceNotFound
	}
	return nil
}

func scanCompliance(row pgx.Row) (model.Compliance, error) {
	var c model.Compliance
	var complianceType, status, requirement string

	err := row.Scan(
		&c.ID, &c.ClaimID, &c.ResponsibleUserID, &complianceType, &status,
		&c.ModeratorInstructions, &c.Amount, &c.Currency, &c.PaymentLink, &c.RequiresFiles,
		&c.Deadline, &c.ExtendedDeadline, &c.FinalDeadline, &c.OriginalDeadlineDays,
		&c.EvidenceURLs, &c.UserNotes, &c.SubmittedAt,
		&c.PeerReviewedBy, &c.PeerApproved, &c.PeerReviewReason, &c.PeerReviewedAt,
		&c.ReviewedBy, &c.ReviewedAt, &c.ModeratorNotes, &c.RejectionReason, &c.RejectionCount,
		&c.WarningLevel, &c.Appealed, &c.DependsOn, &c.OrderNumber, &requirement,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Compliance{}, err
	}

	c.Type = enums.ComplianceType(complianceType)
	c.Status = enums.ComplianceStatus(status)
	c.Requirement = enums.Requirement(requirement)
	return c, nil
}

func collectCompliances(rows pgx.Rows) ([]model.Compliance, error) {
	var items []model.Compliance
	for rows.Next() {
		item, err := scanCompliance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compliance rows: %w", err)
	}
	return items, nil
}
