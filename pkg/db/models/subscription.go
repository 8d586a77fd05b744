package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/pkg/enums"
)

// Subscription is the membership granted by exactly one payment.
type Subscription struct {
	ID        uuid.UUID                `gorm:"column:subscription_id;type:uuid;primaryKey"`
	PaymentID uuid.UUID                `gorm:"column:payment_id;type:uuid;not null;unique"`
	PackageID int64                    `gorm:"column:package_id;not null"`
	Status    enums.SubscriptionStatus `gorm:"column:subscription_status;type:subscription_status;not null"`
	StartDate time.Time                `gorm:"column:subscription_start_date;not null"`
	EndDate   *time.Time               `gorm:"column:subscription_end_date"`
}
