package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/config"
	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
	claimssvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claims"
	claimviewsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/claimview"
	compsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/compliances"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/transport/http/handlers"
)

type Dependencies struct {
	ClaimsService     *claimssvc.Service
	ComplianceService *compsvc.Service
	ClaimViewService  *claimviewsvc.Service
	JWTManager        *authsvc.JWTManager
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	claimsHandler := handlers.NewClaimsHandler(deps.ClaimsService, deps.ClaimViewService)
	compliancesHandler := handlers.NewCompliancesHandler(deps.ComplianceService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Route("/claims", func(r chi.Router) {
			r.Post("/", claimsHandler.Create)
			r.With(RequireModerator).Get("/", claimsHandler.List)
			r.Get("/{claimID}", claimsHandler.Get)
			r.Get("/{claimID}/detail", claimsHandler.Detail)
			r.Post("/{claimID}/clarification", claimsHandler.SubmitClarification)
			r.Post("/{claimID}/respondent-observations", claimsHandler.SubmitRespondentObservations)
			r.Post("/{claimID}/cancel", claimsHandler.Cancel)
			r.Post("/{claimID}/compliance/submit", compliancesHandler.SubmitByClaim)
		})

		r.Get("/hirings/{hiringID}/claims", claimsHandler.ListByHiring)

		r.Route("/compliances", func(r chi.Router) {
			r.Get("/", compliancesHandler.List)
			r.Post("/{complianceID}/submit", compliancesHandler.Submit)
			r.Post("/{complianceID}/peer-review", compliancesHandler.PeerReview)
		})

		r.Get("/users/{userID}/compliance-stats", compliancesHandler.Stats)

		r.Route("/moderation", func(r chi.Router) {
			r.Use(RequireModerator)
			r.Post("/claims/{claimID}/review", claimsHandler.MarkInReview)
			r.Post("/claims/{claimID}/observations", claimsHandler.AddObservations)
			r.Post("/claims/{claimID}/resolve", claimsHandler.Resolve)
			r.Post("/compliances/{complianceID}/review", compliancesHandler.ModeratorReview)
		})
	})
}
