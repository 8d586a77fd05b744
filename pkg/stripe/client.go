package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/merrymatch/membership-backend/pkg/config"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errSecretRequired   = errors.New("stripe webhook secret is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)

	// ErrLivemodeMismatch marks a correctly signed event from the other Stripe
	// environment, e.g. a test-mode event delivered to the live endpoint.
	ErrLivemodeMismatch = errors.New("stripe event livemode does not match environment")
)

// Client verifies Stripe webhook deliveries. It is built once at startup and
// never mutated afterwards.
type Client struct {
	environment   string
	signingSecret string
	tolerance     time.Duration
}

// NewClient validates the credentials against the configured environment.
// The API key is only checked, never stored: its sk_/rk_ mode must agree with
// MEMBERSHIP_STRIPE_ENV so the livemode check on events means something.
// tolerance bounds the accepted signature age; zero falls back to the
// library default.
func NewClient(ctx context.Context, cfg config.StripeConfig, tolerance time.Duration, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	if !strings.HasPrefix(secret, "whsec_") {
		return nil, errors.New("stripe webhook secret must start with whsec_")
	}

	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "stripe_env", env), "stripe webhook verifier ready")
	}

	return &Client{
		environment:   env,
		signingSecret: secret,
		tolerance:     tolerance,
	}, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// VerifyEvent checks the Stripe-Signature header against the raw payload,
// decodes the event and rejects events from the other environment. payload
// must be the exact bytes Stripe sent.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if c == nil || c.signingSecret == "" {
		return stripe.Event{}, errSecretRequired
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.signingSecret, webhook.ConstructEventOptions{
		Tolerance: c.tolerance,
	})
	if err != nil {
		return stripe.Event{}, err
	}
	if event.Livemode != (c.environment == liveEnv) {
		return stripe.Event{}, fmt.Errorf("%w: event %s livemode=%t, environment %s", ErrLivemodeMismatch, event.ID, event.Livemode, c.environment)
	}
	return event, nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	prefixes := []string{"sk_" + env + "_", "rk_" + env + "_"}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return nil
		}
	}
	return fmt.Errorf("stripe environment %q requires a %s or %s key", env, prefixes[0], prefixes[1])
}
