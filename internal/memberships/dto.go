package memberships

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merrymatch/membership-backend/pkg/enums"
)

// MembershipDetail is the member-facing view of their current package.
type MembershipDetail struct {
	SubscriptionID     uuid.UUID                `json:"subscription_id"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscription_status"`
	PaymentID          uuid.UUID                `json:"payment_id"`
	UserID             uuid.UUID                `json:"user_id"`
	PackageID          int64                    `json:"package_id"`
	NamePackage        string                   `json:"name_package"`
	IconURL            *string                  `json:"icon_url,omitempty"`
	Price              decimal.Decimal          `json:"price"`
	Currency           string                   `json:"currency"`
	Description        string                   `json:"description"`
	StartDate          time.Time                `json:"subscription_start_date"`
	EndDate            *time.Time               `json:"subscription_end_date,omitempty"`
}

func toDetail(row *MembershipRow) *MembershipDetail {
	if row == nil {
		return nil
	}
	return &MembershipDetail{
		SubscriptionID:     row.SubscriptionID,
		SubscriptionStatus: row.SubscriptionStatus,
		PaymentID:          row.PaymentID,
		UserID:             row.UserID,
		PackageID:          row.PackageID,
		NamePackage:        row.NamePackage,
		IconURL:            row.IconURL,
		Price:              row.Price,
		Currency:           row.CurrencyCode,
		Description:        row.Description,
		StartDate:          row.StartDate.UTC(),
		EndDate:            row.EndDate,
	}
}
