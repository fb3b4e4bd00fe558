package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
	compsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/compliances"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/transport/http/dto"
	httperrors "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/transport/http/errors"
)

type CompliancesHandler struct {
	service *compsvc.Service
}

func NewCompliancesHandler(service *compsvc.Service) *CompliancesHandler {
	return &CompliancesHandler{service: service}
}

func (h *CompliancesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	filter := pgrepo.ComplianceFilter{
		ClaimID:     r.URL.Query().Get("claim_id"),
		UserID:      r.URL.Query().Get("user_id"),
		Status:      enums.ComplianceStatus(r.URL.Query().Get("status")),
		OnlyOverdue: r.URL.Query().Get("overdue") == "true",
		Page:        page,
		Limit:       limit,
	}

	items, total, err := h.service.List(r.Context(), identity.UserID, identity.IsModerator(), filter)
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceListResponse{
		Compliances: dto.NewComplianceItems(items, time.Now()),
		Total:       total,
		Page:        page,
		Pages:       dto.Pages(total, limit),
		Limit:       limit,
	})
}

func (h *CompliancesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SubmitComplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	item, err := h.service.Submit(r.Context(), identity.UserID, chi.URLParam(r, "complianceID"), compsvc.SubmitInput{
		EvidenceURLs: req.EvidenceURLs,
		Notes:        req.Notes,
	})
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceResponse{Compliance: dto.NewComplianceItem(item, time.Now())})
}

// SubmitByClaim targets the caller's next actionable item on the claim
// without requiring the client to know the compliance id.
func (h *CompliancesHandler) SubmitByClaim(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SubmitComplianceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	item, err := h.service.SubmitByClaim(r.Context(), identity.UserID, chi.URLParam(r, "claimID"), compsvc.SubmitInput{
		EvidenceURLs: req.EvidenceURLs,
		Notes:        req.Notes,
	})
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceResponse{Compliance: dto.NewComplianceItem(item, time.Now())})
}

func (h *CompliancesHandler) PeerReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PeerReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	item, err := h.service.PeerReview(r.Context(), identity.UserID, chi.URLParam(r, "complianceID"), req.Approved, req.Reason)
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceResponse{Compliance: dto.NewComplianceItem(item, time.Now())})
}

func (h *CompliancesHandler) ModeratorReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ModeratorReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	item, err := h.service.ModeratorReview(r.Context(), identity.UserID, chi.URLParam(r, "complianceID"), compsvc.ModeratorReviewInput{
		Decision:        req.Decision,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceResponse{Compliance: dto.NewComplianceItem(item, time.Now())})
}

func (h *CompliancesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	userID := chi.URLParam(r, "userID")
	if !identity.IsModerator() && userID != identity.UserID {
		writeForbidden(w, "FORBIDDEN", "stats are only visible to their owner")
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		handleComplianceError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ComplianceStatsResponse{
		UserID:                userID,
		TotalPending:          stats.TotalPending,
		TotalCompleted:        stats.TotalCompleted,
		TotalOverdue:          stats.TotalOverdue,
		AverageCompletionDays: stats.AverageCompletionDays,
		ComplianceRate:        stats.ComplianceRate,
	})
}

func handleComplianceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, compsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "compliance request validation failed")
	case errors.Is(err, compsvc.ErrEvidenceRequired):
		writeBadRequest(w, "EVIDENCE_REQUIRED", "this compliance requires evidence files")
	case errors.Is(err, compsvc.ErrComplianceNotFound):
		writeNotFound(w, "COMPLIANCE_NOT_FOUND", "compliance not found")
	case errors.Is(err, compsvc.ErrClaimNotFound):
		writeNotFound(w, "CLAIM_NOT_FOUND", "claim not found")
	case errors.Is(err, compsvc.ErrNoActionableItem):
		writeNotFound(w, "NO_ACTIONABLE_COMPLIANCE", "no actionable compliance for this claim")
	case errors.Is(err, compsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "not allowed for this compliance")
	case errors.Is(err, compsvc.ErrAlreadyApproved):
		writeBadRequest(w, "ALREADY_APPROVED", "compliance is already approved")
	case errors.Is(err, compsvc.ErrAppealRequired):
		writeBadRequest(w, "APPEAL_REQUIRED", "rejected compliance requires an appeal before resubmission")
	case errors.Is(err, compsvc.ErrDeadlinePassed):
		writeBadRequest(w, "SUBMISSION_WINDOW_CLOSED", "submission window has closed")
	case errors.Is(err, compsvc.ErrDependencyPending):
		writeBadRequest(w, "DEPENDENCY_PENDING", "prerequisite compliance is not approved yet")
	// A held review lock is transient contention, not a broken precondition.
	case errors.Is(err, compsvc.ErrReviewInProgress):
		writeConflict(w, "REVIEW_IN_PROGRESS", "another review of this compliance is in progress")
	case errors.Is(err, compsvc.ErrInvalidTransition):
		writeBadRequest(w, "INVALID_COMPLIANCE_STATUS", "operation not allowed in current compliance status")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
