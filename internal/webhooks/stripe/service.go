package stripewebhook

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/merrymatch/membership-backend/internal/ledger"
	"github.com/merrymatch/membership-backend/pkg/enums"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
	"github.com/merrymatch/membership-backend/pkg/metrics"
)

// Service reconciles verified Stripe events into the subscription ledger.
type Service interface {
	Reconcile(ctx context.Context, payload []byte, sigHeader string) (Result, error)
}

type eventVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type paymentRecorder interface {
	RecordPayment(ctx context.Context, input ledger.RecordPaymentInput) (*ledger.RecordPaymentResult, error)
}

// eventGuard is a fast path in front of the ledger. Only ids whose handling
// reached a final outcome are remembered.
type eventGuard interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

// Result describes how a delivery was handled.
type Result struct {
	EventID   string
	EventType string
	Outcome   enums.WebhookOutcome
}

type ServiceParams struct {
	Verifier eventVerifier
	Ledger   paymentRecorder
	// Guard is optional; the ledger rejects duplicates on its own.
	Guard   eventGuard
	Metrics *metrics.WebhookMetrics
	Logger  *logger.Logger
}

type service struct {
	verifier eventVerifier
	ledger   paymentRecorder
	guard    eventGuard
	metrics  *metrics.WebhookMetrics
	logg     *logger.Logger
}

// NewService builds a reconciler with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Verifier == nil {
		return nil, fmt.Errorf("stripe verifier required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		verifier: params.Verifier,
		ledger:   params.Ledger,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}
	// a typed nil pointer would pass the interface check below
	if g, ok := params.Guard.(*IdempotencyGuard); !ok || g != nil {
		s.guard = params.Guard
	}
	return s, nil
}

func (s *service) Reconcile(ctx context.Context, payload []byte, sigHeader string) (Result, error) {
	started := time.Now()

	event, err := s.verifier.VerifyEvent(payload, sigHeader)
	if err != nil {
		logCtx := s.logg.WithField(ctx, "failure_class", pkgerrors.ClassPermanent)
		s.logg.WarnErr(logCtx, "stripe.webhook.signature_rejected", err)
		s.metrics.IncEvent("", string(enums.WebhookOutcomeRejected))
		return Result{Outcome: enums.WebhookOutcomeRejected},
			pkgerrors.Wrap(pkgerrors.CodeAuthenticity, err, "verify stripe signature")
	}

	eventType := string(event.Type)
	res := Result{EventID: event.ID, EventType: eventType}
	ctx = s.logg.WithEventID(ctx, event.ID)
	ctx = s.logg.WithField(ctx, "event_type", eventType)
	defer func() {
		s.metrics.ObserveDuration(eventType, time.Since(started))
		s.metrics.IncEvent(eventType, string(res.Outcome))
	}()

	if s.guard != nil {
		seen, err := s.guard.Seen(ctx, event.ID)
		switch {
		case err != nil:
			s.logg.WarnErr(ctx, "stripe.webhook.guard_unavailable", err)
		case seen:
			s.logg.Info(ctx, "stripe.webhook.duplicate_event")
			res.Outcome = enums.WebhookOutcomeDuplicate
			return res, nil
		}
	}

	outcome, err := s.dispatch(ctx, &event)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeMalformedEvent {
			logCtx := s.logg.WithField(ctx, "failure_class", pkgerrors.ClassPermanent)
			s.logg.Error(logCtx, "stripe.webhook.malformed_event", err)
			res.Outcome = enums.WebhookOutcomeMalformed
			return res, nil
		}
		logCtx := s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		s.logg.Error(logCtx, "stripe.webhook.reconcile_failed", err)
		res.Outcome = enums.WebhookOutcomeFailed
		return res, err
	}

	if s.guard != nil {
		if err := s.guard.Remember(ctx, event.ID); err != nil {
			s.logg.WarnErr(ctx, "stripe.webhook.guard_mark_failed", err)
		}
	}
	res.Outcome = outcome
	return res, nil
}

func (s *service) dispatch(ctx context.Context, event *stripe.Event) (enums.WebhookOutcome, error) {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	default:
		s.logg.Info(ctx, "stripe.webhook.event_ignored")
		return enums.WebhookOutcomeIgnored, nil
	}
}

func (s *service) handlePaymentSucceeded(ctx context.Context, event *stripe.Event) (enums.WebhookOutcome, error) {
	pi, err := decodePaymentIntent(event)
	if err != nil {
		return "", err
	}
	ctx = s.logg.WithField(ctx, "payment_intent_id", pi.ID)

	input, err := paymentInputFromIntent(pi)
	if err != nil {
		return "", err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"user_id":    input.UserID.String(),
		"package_id": input.PackageID,
	})

	result, err := s.ledger.RecordPayment(ctx, input)
	if err != nil {
		switch pkgerrors.CodeOf(err) {
		case pkgerrors.CodeNotFound, pkgerrors.CodeValidation:
			return "", pkgerrors.Wrap(pkgerrors.CodeMalformedEvent, err, "payment intent references unknown records")
		}
		return "", err
	}
	if result.Duplicate {
		s.logg.Info(ctx, "stripe.webhook.payment_already_recorded")
		return enums.WebhookOutcomeDuplicate, nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_id":              result.PaymentID.String(),
		"subscription_id":         result.SubscriptionID.String(),
		"cancelled_subscriptions": result.Cancelled,
	})
	s.logg.Info(ctx, "stripe.webhook.payment_recorded")
	return enums.WebhookOutcomeProcessed, nil
}

func (s *service) handlePaymentFailed(ctx context.Context, event *stripe.Event) (enums.WebhookOutcome, error) {
	pi, err := decodePaymentIntent(event)
	if err != nil {
		return "", err
	}
	fields := map[string]any{
		"payment_intent_id": pi.ID,
		"user_id":           pi.Metadata[metadataUserID],
	}
	if pi.LastPaymentError != nil {
		fields["last_error_code"] = string(pi.LastPaymentError.Code)
		fields["last_error_message"] = pi.LastPaymentError.Msg
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "stripe.webhook.payment_failed")
	return enums.WebhookOutcomePaymentFailedRecorded, nil
}
