package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Package is a purchasable membership tier from the catalog.
type Package struct {
	ID            int64           `gorm:"column:package_id;primaryKey"`
	Name          string          `gorm:"column:name_package;not null"`
	IconURL       *string         `gorm:"column:icon_url"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CurrencyCode  string          `gorm:"column:currency_code;type:char(3);not null"`
	Description   string          `gorm:"column:description;not null;default:''"`
	Features      pq.StringArray  `gorm:"column:features;type:text[];not null;default:'{}'"`
	StripePriceID *string         `gorm:"column:stripe_price_id"`
	Position      int             `gorm:"column:position;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
