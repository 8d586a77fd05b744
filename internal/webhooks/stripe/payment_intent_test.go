package stripewebhook

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

func TestPaymentInputFromIntent(t *testing.T) {
	userID := uuid.New()
	pi := &stripe.PaymentIntent{
		ID:                 "pi_123",
		Currency:           "thb",
		Created:            1740823200,
		PaymentMethodTypes: []string{"promptpay"},
		Metadata: map[string]string{
			"user_id":     userID.String(),
			"packages_id": " 7 ",
		},
	}

	input, err := paymentInputFromIntent(pi)
	require.NoError(t, err)
	require.Equal(t, userID, input.UserID)
	require.Equal(t, int64(7), input.PackageID)
	require.Equal(t, "THB", input.CurrencyCode)
	require.Equal(t, "pi_123", input.GatewayTransactionID)
	require.Equal(t, "promptpay", input.PaymentMethod)
	require.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), input.PaymentDate)
}

func TestPaymentInputFromIntentDefaultsMethod(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:       "pi_123",
		Currency: "usd",
		Created:  1,
		Metadata: map[string]string{"user_id": uuid.NewString(), "package_id": "2"},
	}

	input, err := paymentInputFromIntent(pi)
	require.NoError(t, err)
	require.Equal(t, "card", input.PaymentMethod)
	require.Equal(t, int64(2), input.PackageID)
}

func TestPaymentInputFromIntentReportsMissingFields(t *testing.T) {
	_, err := paymentInputFromIntent(&stripe.PaymentIntent{Metadata: map[string]string{"packages_id": "0"}})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeMalformedEvent, typed.Code())
	require.Equal(t, map[string]any{
		"fields": []string{"id", "currency", "created", "metadata.user_id", "metadata.packages_id"},
	}, typed.Details())
}

func TestDecodePaymentIntentRejectsEmptyData(t *testing.T) {
	_, err := decodePaymentIntent(&stripe.Event{})
	require.Equal(t, pkgerrors.CodeMalformedEvent, pkgerrors.CodeOf(err))

	_, err = decodePaymentIntent(&stripe.Event{Data: &stripe.EventData{Raw: []byte(`[1,2]`)}})
	require.Equal(t, pkgerrors.CodeMalformedEvent, pkgerrors.CodeOf(err))
}
