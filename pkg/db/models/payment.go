package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/pkg/enums"
)

// Payment records one settled provider transaction. Rows are append-only.
type Payment struct {
	ID                   uuid.UUID           `gorm:"column:payment_id;type:uuid;primaryKey"`
	UserID               uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	PackageID            int64               `gorm:"column:package_id;not null"`
	CurrencyID           int16               `gorm:"column:currency_id;not null"`
	GatewayTransactionID string              `gorm:"column:gateway_transaction_id;not null;unique"`
	PaymentMethod        string              `gorm:"column:payment_method;not null"`
	PaymentDate          time.Time           `gorm:"column:payment_date;not null"`
	Status               enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
}
