package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	pgrepo "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/repo/postgres"
	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
	claimssvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claims"
	claimviewsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claimview"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/transport/http/dto"
	httperrors "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/transport/http/errors"
)

type ClaimsHandler struct {
	service *claimssvc.Service
	view    *claimviewsvc.Service
}

func NewClaimsHandler(service *claimssvc.Service, view *claimviewsvc.Service) *ClaimsHandler {
	return &ClaimsHandler{service: service, view: view}
}

func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreateClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	claim, err := h.service.Create(r.Context(), identity.UserID, claimssvc.CreateInput{
		HiringID:     req.HiringID,
		Type:         enums.ClaimType(req.ClaimType),
		Description:  req.Description,
		OtherReason:  req.OtherReason,
		EvidenceURLs: req.EvidenceURLs,
	})
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	filter := pgrepo.ClaimFilter{
		HiringID:     r.URL.Query().Get("hiring_id"),
		Status:       enums.ClaimStatus(r.URL.Query().Get("status")),
		ClaimantRole: enums.ClaimantRole(r.URL.Query().Get("claimant_role")),
		SearchTerm:   r.URL.Query().Get("search"),
		Page:         page,
		Limit:        limit,
	}

	claims, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimListResponse{
		Claims: claims,
		Total:  total,
		Page:   page,
		Pages:  dto.Pages(total, limit),
		Limit:  limit,
	})
}

func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	claim, err := h.service.Get(r.Context(), identity.UserID, identity.IsModerator(), chi.URLParam(r, "claimID"))
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) ListByHiring(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	claims, err := h.service.ListByHiring(r.Context(), identity.UserID, identity.IsModerator(), chi.URLParam(r, "hiringID"))
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.HiringClaimsResponse{Claims: claims})
}

func (h *ClaimsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.view == nil {
		writeInternal(w, "CLAIM_VIEW_UNAVAILABLE", "claim detail view is unavailable")
		return
	}

	detail, err := h.view.Detail(r.Context(), identity.UserID, identity.IsModerator(), chi.URLParam(r, "claimID"))
	if err != nil {
		switch {
		case errors.Is(err, claimviewsvc.ErrClaimNotFound):
			writeNotFound(w, "CLAIM_NOT_FOUND", "claim not found")
		case errors.Is(err, claimviewsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "not a party to this claim")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load claim detail")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, detail)
}

func (h *ClaimsHandler) MarkInReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	claim, err := h.service.MarkInReview(r.Context(), identity.UserID, chi.URLParam(r, "claimID"))
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) AddObservations(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ObservationsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	claim, err := h.service.AddObservations(r.Context(), identity.UserID, chi.URLParam(r, "claimID"), req.Observations)
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) SubmitClarification(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ClarificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	claim, err := h.service.SubmitClarification(r.Context(), identity.UserID, chi.URLParam(r, "claimID"), req.Response, req.EvidenceURLs)
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) SubmitRespondentObservations(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.RespondentObservationsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	claim, err := h.service.SubmitRespondentObservations(r.Context(), identity.UserID, chi.URLParam(r, "claimID"), req.Observations, req.EvidenceURLs)
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ResolveClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	input := claimssvc.ResolveInput{
		Rejected:                req.Rejected,
		Resolution:              req.Resolution,
		PartialAgreementDetails: req.PartialAgreementDetails,
	}
	if req.ResolutionType != nil {
		rt := enums.ResolutionType(*req.ResolutionType)
		input.ResolutionType = &rt
	}
	for _, c := range req.Compliances {
		requirement := enums.Requirement(strings.TrimSpace(c.Requirement))
		input.Compliances = append(input.Compliances, claimssvc.ComplianceInput{
			Type:              enums.ComplianceType(c.ComplianceType),
			ResponsibleUserID: c.ResponsibleUserID,
			Instructions:      c.Instructions,
			Amount:            c.Amount,
			Currency:          c.Currency,
			PaymentLink:       c.PaymentLink,
			RequiresFiles:     c.RequiresFiles,
			DeadlineDays:      c.DeadlineDays,
			DependsOnIndex:    c.DependsOnIndex,
			OrderNumber:       c.OrderNumber,
			Requirement:       requirement,
		})
	}

	claim, err := h.service.Resolve(r.Context(), identity.UserID, chi.URLParam(r, "claimID"), input)
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func (h *ClaimsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	claim, err := h.service.Cancel(r.Context(), identity.UserID, chi.URLParam(r, "claimID"))
	if err != nil {
		handleClaimError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClaimResponse{Claim: claim})
}

func handleClaimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, claimssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "claim request validation failed")
	case errors.Is(err, claimssvc.ErrEvidenceLimit):
		writeBadRequest(w, "EVIDENCE_LIMIT_EXCEEDED", "too many evidence items")
	case errors.Is(err, claimssvc.ErrComplianceOverflow):
		writeBadRequest(w, "COMPLIANCE_LIMIT_EXCEEDED", "too many compliance items")
	case errors.Is(err, claimssvc.ErrClaimNotFound):
		writeNotFound(w, "CLAIM_NOT_FOUND", "claim not found")
	case errors.Is(err, claimssvc.ErrHiringNotFound):
		writeNotFound(w, "HIRING_NOT_FOUND", "hiring not found")
	case errors.Is(err, claimssvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "not allowed for this claim")
	case errors.Is(err, claimssvc.ErrActiveClaimExists):
		writeBadRequest(w, "ACTIVE_CLAIM_EXISTS", "hiring already has an active claim")
	case errors.Is(err, claimssvc.ErrAlreadyAnswered):
		writeBadRequest(w, "ALREADY_ANSWERED", "respondent observations already recorded")
	case errors.Is(err, claimssvc.ErrInvalidTransition):
		writeBadRequest(w, "INVALID_CLAIM_STATUS", "operation not allowed in current claim status")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
