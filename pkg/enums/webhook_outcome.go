package enums

import "fmt"

// WebhookOutcome classifies how a payment provider event was handled.
type WebhookOutcome string

const (
	WebhookOutcomeProcessed             WebhookOutcome = "processed"
	WebhookOutcomeDuplicate             WebhookOutcome = "duplicate"
	WebhookOutcomeIgnored               WebhookOutcome = "ignored"
	WebhookOutcomePaymentFailedRecorded WebhookOutcome = "payment_failed_recorded"
	WebhookOutcomeMalformed             WebhookOutcome = "malformed"
	WebhookOutcomeRejected              WebhookOutcome = "rejected"
	WebhookOutcomeFailed                WebhookOutcome = "failed"
)

var validWebhookOutcomes = []WebhookOutcome{
	WebhookOutcomeProcessed,
	WebhookOutcomeDuplicate,
	WebhookOutcomeIgnored,
	WebhookOutcomePaymentFailedRecorded,
	WebhookOutcomeMalformed,
	WebhookOutcomeRejected,
	WebhookOutcomeFailed,
}

// String implements fmt.Stringer.
func (o WebhookOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is known.
func (o WebhookOutcome) IsValid() bool {
	for _, candidate := range validWebhookOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseWebhookOutcome converts raw input into a WebhookOutcome.
func ParseWebhookOutcome(value string) (WebhookOutcome, error) {
	for _, candidate := range validWebhookOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook outcome %q", value)
}
