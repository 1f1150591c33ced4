package pricing

import "github.com/shopspring/decimal"

const (
	// StoredRatePlaces is the scale of the tax rate columns, decimal(7,6).
	StoredRatePlaces = 6
	// VolumePlaces is the scale of the per-tank volume column, decimal(10,3).
	VolumePlaces = 3
)

var (
	// MaxUnitPrice is the largest unit price a tariff may carry (decimal(17,2)).
	MaxUnitPrice = decimal.RequireFromString("999999999999999.99")
	// MaxTaxRate is the largest tax rate a tariff may carry, as a fraction.
	MaxTaxRate = decimal.RequireFromString("0.999999")

	// MinVolumePerTank and MaxVolumePerTank bound the volume of one tank, in m³.
	MinVolumePerTank = decimal.NewFromInt(1)
	MaxVolumePerTank = decimal.NewFromInt(500)

	percentThreshold = decimal.NewFromInt(10)
	hundred          = decimal.NewFromInt(100)
)

// NormalizeTaxRate turns a rate typed as a percentage into a fraction.
// Anything above 10 is read as a percentage (19 -> 0.19); anything else is
// taken as already fractional, so a 10% rate must be entered as 0.10.
func NormalizeTaxRate(r decimal.Decimal) decimal.Decimal {
	if r.GreaterThan(percentThreshold) {
		return r.Div(hundred)
	}
	return r
}

// RoundPrice rounds a unit price to cents
func RoundPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(2)
}

// RoundRate rounds a tax rate to 4 decimal places
func RoundRate(r decimal.Decimal) decimal.Decimal {
	return r.Round(4)
}
