package webhooks

import (
	"net/http"

	"github.com/merrymatch/membership-backend/api/middleware"
	"github.com/merrymatch/membership-backend/api/responses"
	stripewebhook "github.com/merrymatch/membership-backend/internal/webhooks/stripe"
	"github.com/merrymatch/membership-backend/pkg/enums"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

const signatureHeader = "Stripe-Signature"

type ackResponse struct {
	Received bool                 `json:"received"`
	Outcome  enums.WebhookOutcome `json:"outcome"`
}

// StripeWebhook hands the untouched request body to the reconciler. It must
// be mounted behind middleware.RawBody.
func StripeWebhook(svc stripewebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, ok := middleware.RawBodyFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "raw body unavailable"))
			return
		}

		result, err := svc.Reconcile(ctx, payload, r.Header.Get(signatureHeader))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, ackResponse{Received: true, Outcome: result.Outcome})
	}
}
