package response

import (
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ServiceTariffResponse is the price a dossier type is quoted at
type ServiceTariffResponse struct {
	TariffID         uint             `json:"tariff_id"`
	ServiceType      enum.ServiceType `json:"service_type"`
	UnitPriceExclTax decimal.Decimal  `json:"unit_price_ht"`
	TaxRate          decimal.Decimal  `json:"tax_rate"`
}

// NewServiceTariffResponse converts a resolved tariff
func NewServiceTariffResponse(st *pricing.ServiceTariff) *ServiceTariffResponse {
	if st == nil {
		return nil
	}
	return &ServiceTariffResponse{
		TariffID:         st.TariffID,
		ServiceType:      st.ServiceType,
		UnitPriceExclTax: st.UnitPriceExclTax,
		TaxRate:          st.TaxRate,
	}
}

// TransportPriceResponse is the per-tank transport price for a volume
type TransportPriceResponse struct {
	Volume    decimal.Decimal         `json:"volume"`
	UnitPrice decimal.Decimal         `json:"unit_price_ht"`
	TariffID  *uint                   `json:"tariff_id,omitempty"`
	Source    pricing.TransportSource `json:"source"`
}

// NewTransportPriceResponse converts a transport price
func NewTransportPriceResponse(volume decimal.Decimal, p pricing.TransportPrice) *TransportPriceResponse {
	return &TransportPriceResponse{
		Volume:    volume,
		UnitPrice: p.UnitPrice,
		TariffID:  p.TariffID,
		Source:    p.Source,
	}
}

// PricedLineResponse is one priced tank row
type PricedLineResponse struct {
	TankCount          int                     `json:"tank_count"`
	VolumePerTank      decimal.Decimal         `json:"volume_per_tank"`
	IncludeTransport   bool                    `json:"include_transport"`
	LineVolume         decimal.Decimal         `json:"line_volume"`
	WaterHT            decimal.Decimal         `json:"water_ht"`
	TransportUnitPrice decimal.Decimal         `json:"transport_unit_price_ht"`
	TransportTariffID  *uint                   `json:"transport_tariff_id,omitempty"`
	TransportSource    pricing.TransportSource `json:"transport_source,omitempty"`
	TransportHT        decimal.Decimal         `json:"transport_ht"`
	TransportTVA       decimal.Decimal         `json:"transport_tva"`
}

// QuotePreviewResponse is a priced quote that was not stored
type QuotePreviewResponse struct {
	DossierType      enum.DossierType       `json:"dossier_type"`
	Date             time.Time              `json:"date"`
	Water            *ServiceTariffResponse `json:"water_tariff"`
	TransportTaxRate decimal.Decimal        `json:"transport_tax_rate"`
	Lines            []PricedLineResponse   `json:"lines"`
	entity.QuoteTotals
}

// NewQuotePreviewResponse converts pricing output
func NewQuotePreviewResponse(dossierType enum.DossierType, date time.Time, water *pricing.ServiceTariff, totals pricing.Totals) *QuotePreviewResponse {
	lines := make([]PricedLineResponse, len(totals.Lines))
	for i, l := range totals.Lines {
		lines[i] = PricedLineResponse{
			TankCount:          l.Line.TankCount,
			VolumePerTank:      l.Line.VolumePerTank,
			IncludeTransport:   l.Line.IncludeTransport,
			LineVolume:         l.LineVolume,
			WaterHT:            l.WaterHT,
			TransportUnitPrice: l.TransportUnitPrice,
			TransportTariffID:  l.TransportTariffID,
			TransportSource:    l.TransportSource,
			TransportHT:        l.TransportHT,
			TransportTVA:       l.TransportTVA,
		}
	}
	return &QuotePreviewResponse{
		DossierType:      dossierType,
		Date:             date,
		Water:            NewServiceTariffResponse(water),
		TransportTaxRate: totals.TransportTaxRate,
		Lines:            lines,
		QuoteTotals:      totals.Snapshot(),
	}
}
