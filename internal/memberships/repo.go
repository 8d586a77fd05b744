package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/internal/repo"
	"github.com/merrymatch/membership-backend/pkg/enums"
)

// MembershipRow is the latest subscription joined with its payment and package.
type MembershipRow struct {
	SubscriptionID     uuid.UUID                `gorm:"column:subscription_id"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status"`
	PaymentID          uuid.UUID                `gorm:"column:payment_id"`
	UserID             uuid.UUID                `gorm:"column:user_id"`
	PackageID          int64                    `gorm:"column:package_id"`
	NamePackage        string                   `gorm:"column:name_package"`
	IconURL            *string                  `gorm:"column:icon_url"`
	Price              decimal.Decimal          `gorm:"column:price"`
	CurrencyCode       string                   `gorm:"column:currency_code"`
	Description        string                   `gorm:"column:description"`
	StartDate          time.Time                `gorm:"column:subscription_start_date"`
	EndDate            *time.Time               `gorm:"column:subscription_end_date"`
}

// Repository reads membership details.
type Repository struct {
	repo.Base
}

// NewRepository constructs a memberships repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// LatestForUser returns the most recently started subscription of the user,
// or nil when the user never subscribed.
func (r *Repository) LatestForUser(ctx context.Context, userID uuid.UUID) (*MembershipRow, error) {
	var rows []MembershipRow
	if err := r.DB(ctx).
		Table("subscriptions AS s").
		Select(`s.subscription_id, s.subscription_status, p.payment_id, p.user_id, s.package_id,
			pk.name_package, pk.icon_url, pk.price, pk.currency_code, pk.description,
			s.subscription_start_date, s.subscription_end_date`).
		Joins("JOIN payments AS p ON p.payment_id = s.payment_id").
		Joins("JOIN packages AS pk ON pk.package_id = s.package_id").
		Where("p.user_id = ?", userID).
		Order("s.subscription_start_date DESC").
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
