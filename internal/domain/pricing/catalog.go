package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// TariffCatalog is the read capability the pricing engine needs from storage.
// ListActive returns the tariffs of a service type (compared
// case-insensitively) still active at the given instant.
type TariffCatalog interface {
	ListActive(ctx context.Context, serviceType enum.ServiceType, at time.Time) ([]entity.Tariff, error)
}

// ActiveAt keeps the tariffs active at the given instant
func ActiveAt(tariffs []entity.Tariff, at time.Time) []entity.Tariff {
	active := make([]entity.Tariff, 0, len(tariffs))
	for _, t := range tariffs {
		if t.IsActiveAt(at) {
			active = append(active, t)
		}
	}
	return active
}

// SortByRecency orders tariffs newest first: latest validFrom, then highest id.
func SortByRecency(tariffs []entity.Tariff) {
	sort.SliceStable(tariffs, func(i, j int) bool {
		return newer(tariffs[i], tariffs[j])
	})
}

// MostRecent returns the active tariff with the latest validFrom. Ties go to
// the highest id.
func MostRecent(tariffs []entity.Tariff, at time.Time) (*entity.Tariff, bool) {
	var best *entity.Tariff
	for i := range tariffs {
		t := &tariffs[i]
		if !t.IsActiveAt(at) {
			continue
		}
		if best == nil || newer(*t, *best) {
			best = t
		}
	}
	return best, best != nil
}

func newer(a, b entity.Tariff) bool {
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.After(b.ValidFrom)
	}
	return a.ID > b.ID
}

// TariffDraft is a tariff as submitted for creation or edit
type TariffDraft struct {
	ServiceType      enum.ServiceType
	UnitPriceExclTax decimal.Decimal
	TaxRate          decimal.Decimal
	ReferenceVolume  *int
	ValidFrom        time.Time
	ValidUntil       *time.Time
	Description      *string
}

// Normalized returns the draft as it will be stored: service type trimmed and
// upper-cased, tax rate converted to a fraction, price rounded to cents and
// rate rounded to the column scale. Pricing rounds the rate to 4 places when
// it is read, not here.
func (d TariffDraft) Normalized() TariffDraft {
	if st, ok := enum.ParseServiceType(string(d.ServiceType)); ok {
		d.ServiceType = st
	}
	d.UnitPriceExclTax = RoundPrice(d.UnitPriceExclTax)
	d.TaxRate = NormalizeTaxRate(d.TaxRate).Round(StoredRatePlaces)
	return d
}

// Validate checks a normalized draft
func (d TariffDraft) Validate() error {
	var errs ValidationErrors
	if !d.ServiceType.IsValid() {
		errs.Add("service_type", "must be one of CITERNAGE, TRANSPORT, VOL, ESSAI")
	}
	if !d.UnitPriceExclTax.IsPositive() {
		errs.Add("unit_price_ht", "must be greater than 0")
	} else if d.UnitPriceExclTax.GreaterThan(MaxUnitPrice) {
		errs.Add("unit_price_ht", "must not exceed "+MaxUnitPrice.String())
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(MaxTaxRate) {
		errs.Add("tax_rate", "must be between 0 and "+MaxTaxRate.String())
	}
	if d.ReferenceVolume != nil {
		if d.ServiceType != enum.ServiceTypeTransport {
			errs.Add("reference_volume", "only applies to TRANSPORT tariffs")
		} else if *d.ReferenceVolume < 1 {
			errs.Add("reference_volume", "must be at least 1")
		}
	}
	if d.ValidFrom.IsZero() {
		errs.Add("valid_from", "is required")
	}
	if d.ValidUntil != nil && !d.ValidFrom.IsZero() && d.ValidUntil.Before(d.ValidFrom) {
		errs.Add("valid_until", "must not be before valid_from")
	}
	return errs.Err()
}

// IsActiveAt reports whether the draft would be active at the given instant
func (d TariffDraft) IsActiveAt(at time.Time) bool {
	return d.ValidUntil == nil || d.ValidUntil.After(at)
}

// Apply copies the draft onto a tariff row
func (d TariffDraft) Apply(t *entity.Tariff) {
	t.ServiceType = d.ServiceType
	t.UnitPriceExclTax = d.UnitPriceExclTax
	t.TaxRate = d.TaxRate
	t.ReferenceVolume = d.ReferenceVolume
	t.ValidFrom = d.ValidFrom
	t.ValidUntil = d.ValidUntil
	t.Description = d.Description
}
