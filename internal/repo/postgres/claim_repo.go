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

var ErrClaimNotFound = errors.New("claim not found")

type ClaimRepo struct {
	pool *pgxpool.Pool
}

func NewClaimRepo(pool *pgxpool.Pool) *ClaimRepo {
	return &ClaimRepo{pool: pool}
}

const claimColumns = `
	id, hiring_id, claimant_user_id, claimant_role, claim_type, description,
	other_reason, evidence_urls, status,
	observations, observations_by, observations_at,
	respondent_observations, respondent_observations_by, respondent_observations_at,
	clarification_response,
	assigned_moderator_id, assigned_moderator_email, assigned_moderator_at,
	resolution, resolution_type, partial_agreement_details, resolved_by, resolved_at,
	previous_hiring_status_id, created_at, updated_at`

func (r *ClaimRepo) Create(ctx context.Context, tx pgx.Tx, claim model.Claim) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO claims (
	id, hiring_id, claimant_user_id, claimant_role, claim_type, description,
	other_reason, evidence_urls, status, previous_hiring_status_id,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
`,
		claim.ID, claim.HiringID, claim.ClaimantUserID, string(claim.ClaimantRole),
		string(claim.Type), claim.Description, claim.OtherReason, claim.EvidenceURLs,
		string(claim.Status), claim.PreviousHiringStatusID, claim.CreatedAt,
	); err != nil {
		return fmt.Errorf("create claim: %w", err)
	}

	return nil
}

func (r *ClaimRepo) GetByID(ctx context.Context, claimID string) (model.Claim, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, claimID)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Claim{}, ErrClaimNotFound
		}
		return model.Claim{}, fmt.Errorf("get claim by id: %w", err)
	}
	return claim, nil
}

// GetByIDForUpdate locks the claim row for the duration of the transaction so
// state-machine checks and the following write are atomic.
func (r *ClaimRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, claimID string) (model.Claim, error) {
	if tx == nil {
		return model.Claim{}, fmt.Errorf("transaction is required")
	}
	row := tx.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1 FOR UPDATE`, claimID)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Claim{}, ErrClaimNotFound
		}
		return model.Claim{}, fmt.Errorf("get claim for update: %w", err)
	}
	return claim, nil
}

// HasActiveClaim reports whether the hiring already has a claim in one of the
// active statuses. At most one such claim may exist per hiring.
func (r *ClaimRepo) HasActiveClaim(ctx context.Context, tx pgx.Tx, hiringID string) (bool, error) {
	q := `
SELECT EXISTS (
	SELECT 1 FROM claims
	WHERE hiring_id = $1
	AND status IN ('open', 'in_review', 'pending_clarification', 'requires_staff_response')
)`
	var exists bool
	var err error
	if tx != nil {
		err = tx.QueryRow(ctx, q, hiringID).Scan(&exists)
	} else {
		err = r.pool.QueryRow(ctx, q, hiringID).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check active claim: %w", err)
	}
	return exists, nil
}

func (r *ClaimRepo) ListByHiring(ctx context.Context, hiringID string) ([]model.Claim, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+claimColumns+` FROM claims WHERE hiring_id = $1 ORDER BY created_at DESC`, hiringID)
	if err != nil {
		return nil, fmt.Errorf("list claims by hiring: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// ClaimFilter narrows the moderation claim listing. Status accepts the
// virtual value "requires_response", which expands to claims awaiting a staff
// reply: status requires_staff_response, or in_review claims where the
// respondent has already answered.
type ClaimFilter struct {
	HiringID     string
	Status       enums.ClaimStatus
	ClaimantRole enums.ClaimantRole
	SearchTerm   string
	Page         int
	Limit        int
}

func (r *ClaimRepo) List(ctx context.Context, filter ClaimFilter) ([]model.Claim, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.HiringID != "" {
		where = append(where, "hiring_id = "+arg(filter.HiringID))
	}
	if filter.Status != "" {
		if filter.Status == enums.ClaimStatusRequiresResponse {
			where = append(where, `(status = 'requires_staff_response' OR (status = 'in_review' AND respondent_observations IS NOT NULL))`)
		} else {
			where = append(where, "status = "+arg(string(filter.Status)))
		}
	}
	if filter.ClaimantRole != "" {
		where = append(where, "claimant_role = "+arg(string(filter.ClaimantRole)))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		p := arg("%" + term + "%")
		where = append(where, fmt.Sprintf("(description ILIKE %s OR COALESCE(resolution, '') ILIKE %s)", p, p))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
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
SELECT %s FROM claims WHERE %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, claimColumns, cond, len(args)+1, len(args)+2), listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (r *ClaimRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, claimID string, status enums.ClaimStatus, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claims SET status = $2, updated_at = $3 WHERE id = $1`,
		claimID, string(status), now)
}

// AssignModerator records the acting moderator only when none is assigned
// yet: the first moderator to pick the claim up keeps it.
func (r *ClaimRepo) AssignModerator(ctx context.Context, tx pgx.Tx, claimID, moderatorID, moderatorEmail string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claims SET
	assigned_moderator_id = COALESCE(assigned_moderator_id, $2),
	assigned_moderator_email = COALESCE(assigned_moderator_email, $3),
	assigned_moderator_at = COALESCE(assigned_moderator_at, $4),
	updated_at = $4
WHERE id = $1`,
		claimID, moderatorID, moderatorEmail, now)
}

func (r *ClaimRepo) SetObservations(ctx context.Context, tx pgx.Tx, claimID, moderatorID, text string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claims SET
	status = 'pending_clarification',
	observations = $3,
	observations_by = $2,
	observations_at = $4,
	updated_at = $4
WHERE id = $1`,
		claimID, moderatorID, text, now)
}

func (r *ClaimRepo) SetClarification(ctx context.Context, tx pgx.Tx, claimID, response string, evidence []string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claims SET
	status = 'requires_staff_response',
	clarification_response = $2,
	evidence_urls = $3,
	updated_at = $4
WHERE id = $1`,
		claimID, response, evidence, now)
}

func (r *ClaimRepo) SetRespondentObservations(ctx context.Context, tx pgx.Tx, claimID, respondentID, text string, evidence []string, now time.Time) error {
	return r.exec(ctx, tx, `
UPDATE claims SET
	status = 'in_review',
	respondent_observations = $3,
	respondent_observations_by = $2,
	respondent_observations_at = $4,
	evidence_urls = $5,
	updated_at = $4
WHERE id = $1`,
		claimID, respondentID, text, now, evidence)
}

type ResolutionUpdate struct {
	Status                  enums.ClaimStatus
	Resolution              string
	ResolutionType          *enums.ResolutionType
	PartialAgreementDetails *string
	ResolvedBy              string
	ResolvedAt              time.Time
}

func (r *ClaimRepo) SetResolution(ctx context.Context, tx pgx.Tx, claimID string, upd ResolutionUpdate) error {
	var resolutionType *string
	if upd.ResolutionType != nil {
		s := string(*upd.ResolutionType)
		resolutionType = &s
	}
	return r.exec(ctx, tx, `
UPDATE claims SET
	status = $2,
	resolution = $3,
	resolution_type = $4,
	partial_agreement_details = $5,
	resolved_by = $6,
	resolved_at = $7,
	updated_at = $7
WHERE id = $1`,
		claimID, string(upd.Status), upd.Resolution, resolutionType,
		upd.PartialAgreementDetails, upd.ResolvedBy, upd.ResolvedAt)
}

func (r *ClaimRepo) exec(ctx context.Context, tx pgx.Tx, query string, args ...any) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func scanClaim(row pgx.Row) (model.Claim, error) {
	var c model.Claim
	var role, claimType, status string
	var resolutionType *string

	err := row.Scan(
		&c.ID, &c.HiringID, &c.ClaimantUserID, &role, &claimType, &c.Description,
		&c.OtherReason, &c.EvidenceURLs, &status,
		&c.Observations, &c.ObservationsBy, &c.ObservationsAt,
		&c.RespondentObservations, &c.RespondentObservationsBy, &c.RespondentObservationsAt,
		&c.ClarificationResponse,
		&c.AssignedModeratorID, &c.AssignedModeratorEmail, &c.AssignedModeratorAt,
		&c.Resolution, &resolutionType, &c.PartialAgreementDetails, &c.ResolvedBy, &c.ResolvedAt,
		&c.PreviousHiringStatusID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return model.Claim{}, err
	}

	c.ClaimantRole = enums.ClaimantRole(role)
	c.Type = enums.ClaimType(claimType)
	c.Status = enums.ClaimStatus(status)
	if resolutionType != nil {
		rt := enums.ResolutionType(*resolutionType)
		c.ResolutionType = &rt
	}
	return c, nil
}

func collectClaims(rows pgx.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim rows: %w", err)
	}
	return claims, nil
}
