package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/merrymatch/membership-backend/pkg/db/models"
)

// PackageDTO is the public view of a catalog package.
type PackageDTO struct {
	PackageID     int64           `json:"package_id"`
	Name          string          `json:"name_package"`
	IconURL       *string         `json:"icon_url,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	StripePriceID *string         `json:"stripe_price_id,omitempty"`
	Position      int             `json:"position"`
}

// FormattedPrice renders the price with two decimals.
func (p PackageDTO) FormattedPrice() string {
	return p.Price.StringFixed(2)
}

func toDTO(m models.Package) PackageDTO {
	features := []string(m.Features)
	if features == nil {
		features = []string{}
	}
	return PackageDTO{
		PackageID:     m.ID,
		Name:          m.Name,
		IconURL:       m.IconURL,
		Price:         m.Price,
		Currency:      m.CurrencyCode,
		Description:   m.Description,
		Features:      features,
		StripePriceID: m.StripePriceID,
		Position:      m.Position,
	}
}
