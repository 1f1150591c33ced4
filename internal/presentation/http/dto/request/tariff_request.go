package request

import "github.com/shopspring/decimal"

// TariffRequest represents a tariff creation or update request. Dates use
// YYYY-MM-DD or RFC 3339; a tax rate above 10 is read as a percentage.
type TariffRequest struct {
	ServiceType      string           `json:"service_type" binding:"required"`
	UnitPriceExclTax *decimal.Decimal `json:"unit_price_ht" binding:"required"`
	TaxRate          *decimal.Decimal `json:"tax_rate" binding:"required"`
	ReferenceVolume  *int             `json:"reference_volume"`
	ValidFrom        string           `json:"valid_from"`
	ValidUntil       string           `json:"valid_until"`
	Description      *string          `json:"description" binding:"omitempty,max=255"`
}
