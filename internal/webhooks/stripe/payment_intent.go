package stripewebhook

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/merrymatch/membership-backend/internal/ledger"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

const (
	metadataUserID       = "user_id"
	metadataPackagesID   = "packages_id"
	metadataPackageID    = "package_id"
	defaultPaymentMethod = "card"
)

func decodePaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedEvent, "event data is empty")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedEvent, err, "decode payment intent")
	}
	return &pi, nil
}

// paymentInputFromIntent maps a succeeded PaymentIntent onto a ledger write.
func paymentInputFromIntent(pi *stripe.PaymentIntent) (ledger.RecordPaymentInput, error) {
	var missing []string

	if strings.TrimSpace(pi.ID) == "" {
		missing = append(missing, "id")
	}
	currency := strings.ToUpper(strings.TrimSpace(string(pi.Currency)))
	if currency == "" {
		missing = append(missing, "currency")
	}
	if pi.Created <= 0 {
		missing = append(missing, "created")
	}

	rawUser := strings.TrimSpace(pi.Metadata[metadataUserID])
	userID, err := uuid.Parse(rawUser)
	if err != nil || userID == uuid.Nil {
		missing = append(missing, "metadata."+metadataUserID)
	}

	rawPackage := strings.TrimSpace(pi.Metadata[metadataPackagesID])
	if rawPackage == "" {
		rawPackage = strings.TrimSpace(pi.Metadata[metadataPackageID])
	}
	packageID, err := strconv.ParseInt(rawPackage, 10, 64)
	if err != nil || packageID <= 0 {
		missing = append(missing, "metadata."+metadataPackagesID)
	}

	if len(missing) > 0 {
		return ledger.RecordPaymentInput{}, pkgerrors.New(pkgerrors.CodeMalformedEvent, "payment intent is missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}

	method := defaultPaymentMethod
	if len(pi.PaymentMethodTypes) > 0 && strings.TrimSpace(pi.PaymentMethodTypes[0]) != "" {
		method = pi.PaymentMethodTypes[0]
	}

	return ledger.RecordPaymentInput{
		UserID:               userID,
		PackageID:            packageID,
		CurrencyCode:         currency,
		GatewayTransactionID: pi.ID,
		PaymentMethod:        method,
		PaymentDate:          time.Unix(pi.Created, 0).UTC(),
	}, nil
}
