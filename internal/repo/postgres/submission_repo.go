package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepo persists the append-only history of evidence submissions.
// Rows are only ever touched again to attach a review outcome to the latest
// attempt.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

const submissionColumns = `
	id, compliance_id, attempt_number, evidence_urls, user_notes, submitted_at,
	peer_approved, peer_review_reason, peer_reviewed_by, peer_reviewed_at,
	moderator_decision, moderator_notes, reviewed_by, reviewed_at`

func (r *SubmissionRepo) Create(ctx context.Context, tx pgx.Tx, s model.Submission) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	_, err := tx.Exec(ctx, `
INSERT INTO compliance_submissions (
	id, compliance_id, attempt_number, evidence_urls, user_notes, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.ComplianceID, s.AttemptNumber, s.EvidenceURLs, s.UserNotes, s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepo) ListByCompliance(ctx context.Context, complianceID string) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+submissionColumns+` FROM compliance_submissions
WHERE compliance_id = $1
ORDER BY attempt_number ASC`, complianceID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var items []model.Submission
	for rows.Next() {
		item, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return items, nil
}

func (r *SubmissionRepo) CountByCompliance(ctx context.Context, tx pgx.Tx, complianceID string) (int, error) {
	var count int
	var err error
	query := `SELECT COUNT(*) FROM compliance_submissions WHERE compliance_id = $1`
	if tx != nil {
		err = tx.QueryRow(ctx, query, complianceID).Scan(&count)
	} else {
		err = r.pool.QueryRow(ctx, query, complianceID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// SetPeerOutcome stamps the peer verdict on the latest attempt for the
// compliance item.
func (r *SubmissionRepo) SetPeerOutcome(ctx context.Context, tx pgx.Tx, complianceID, reviewerID string, approved bool, reason *string, now time.Time) error {
	return r.stampLatest(ctx, tx, `
UPDATE compliance_submissions SET
	peer_approved = $2,
	peer_review_reason = $3,
	peer_reviewed_by = $4,
	peer_reviewed_at = $5
WHERE id = (
	SELECT id FROM compliance_submissions
	WHERE compliance_id = $1
	ORDER BY attempt_number DESC LIMIT 1
)`,
		complianceID, approved, reason, reviewerID, now)
}

func (r *SubmissionRepo) SetModeratorOutcome(ctx context.Context, tx pgx.Tx, complianceID, moderatorID, decision string, notes *string, now time.Time) error {
	return r.stampLatest(ctx, tx, `
UPDATE compliance_submissions SET
	moderator_decision = $2,
	moderator_notes = $3,
	reviewed_by = $4,
	reviewed_at = $5
WHERE id = (
	SELECT id FROM compliance_submissions
	WHERE compliance_id = $1
	ORDER BY attempt_number DESC LIMIT 1
)`,
		complianceID, decision, notes, moderatorID, now)
}

func (r *SubmissionRepo) stampLatest(ctx context.Context, tx pgx.Tx, query string, args ...any) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func scanSubmission(rows pgx.Rows) (model.Submission, error) {
	var s model.Submission
	err := rows.Scan(
		&s.ID, &s.ComplianceID, &s.AttemptNumber, &s.EvidenceURLs, &s.UserNotes, &s.SubmittedAt,
		&s.PeerApproved, &s.PeerReviewReason, &s.PeerReviewedBy, &s.PeerReviewedAt,
		&s.ModeratorDecision, &s.ModeratorNotes, &s.ReviewedBy, &s.ReviewedAt,
	)
	if err != nil {
		return model.Submission{}, err
	}
	return s, nil
}
