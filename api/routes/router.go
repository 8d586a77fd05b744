package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/merrymatch/membership-backend/api/controllers"
	webhookcontrollers "github.com/merrymatch/membership-backend/api/controllers/webhooks"
	"github.com/merrymatch/membership-backend/api/middleware"
	"github.com/merrymatch/membership-backend/api/responses"
	"github.com/merrymatch/membership-backend/internal/catalog"
	stripewebhook "github.com/merrymatch/membership-backend/internal/webhooks/stripe"
	"github.com/merrymatch/membership-backend/pkg/config"
	"github.com/merrymatch/membership-backend/pkg/db"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
	"github.com/merrymatch/membership-backend/pkg/redis"
)

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	metricsHandler http.Handler,
	catalogService catalog.Service,
	eligibilityService controllers.EligibilityService,
	purchaseService controllers.PurchaseService,
	membershipService controllers.MembershipService,
	stripeWebhookService stripewebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(methodNotAllowed(r, logg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.With(middleware.RawBody(cfg.Webhook.MaxBodyBytes, logg)).
			Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/packages", controllers.PackagesList(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Route("/payments", func(r chi.Router) {
				r.Post("/check-package", controllers.PaymentsCheckPackage(eligibilityService, logg))
				r.Post("/purchase", controllers.PaymentsPurchase(purchaseService, logg))
			})
			r.Get("/memberships/me", controllers.MembershipMe(membershipService, logg))
		})
	})

	return r
}

// methodNotAllowed answers with the methods the path does accept.
func methodNotAllowed(routes chi.Routes, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		allowed := make([]string, 0, len(routeMethods))
		for _, method := range routeMethods {
			if routes.Match(chi.NewRouteContext(), method, req.URL.Path) {
				allowed = append(allowed, method)
			}
		}
		allow := strings.Join(allowed, ", ")
		w.Header().Set("Allow", allow)
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "Method "+req.Method+" not allowed.").
			WithDetails(map[string]any{"allow": allowed}))
	}
}
