package pricing

import (
	"strconv"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Line is one tank row to be priced
type Line struct {
	TankCount        int
	VolumePerTank    decimal.Decimal
	IncludeTransport bool
	// TransportUnitPrice freezes the transport price of a line that was
	// already priced; the transport pricer is not consulted for it.
	TransportUnitPrice *decimal.Decimal
	TransportTariffID  *uint
}

// Volume returns tankCount * volumePerTank
func (l Line) Volume() decimal.Decimal {
	return decimal.NewFromInt(int64(l.TankCount)).Mul(l.VolumePerTank)
}

// ValidateLines checks tank counts and volumes
func ValidateLines(lines []Line) error {
	var errs ValidationErrors
	for i, l := range lines {
		prefix := "lines[" + strconv.Itoa(i) + "]."
		if l.TankCount < 1 {
			errs.Add(prefix+"tank_count", "must be at least 1")
		}
		if l.VolumePerTank.LessThan(MinVolumePerTank) || l.VolumePerTank.GreaterThan(MaxVolumePerTank) {
			errs.Add(prefix+"volume_per_tank", "must be between 1 and 500")
		} else if !l.VolumePerTank.Equal(l.VolumePerTank.Round(VolumePlaces)) {
			errs.Add(prefix+"volume_per_tank", "must have at most 3 decimal places")
		}
	}
	return errs.Err()
}

// TransportPricer returns the per-tank transport price for a tank volume
type TransportPricer func(volumePerTank decimal.Decimal) TransportPrice

// LineTotals is the priced breakdown of one line
type LineTotals struct {
	Line               Line
	LineVolume         decimal.Decimal
	WaterHT            decimal.Decimal
	TransportUnitPrice decimal.Decimal
	TransportTariffID  *uint
	TransportSource    TransportSource
	TransportHT        decimal.Decimal
	TransportTVA       decimal.Decimal
}

// Totals is the priced breakdown of a quote
type Totals struct {
	Lines            []LineTotals
	EauUnitPrice     decimal.Decimal
	EauTaxRate       decimal.Decimal
	TransportTaxRate decimal.Decimal

	VolumeTotal       decimal.Decimal
	TotalEauHT        decimal.Decimal
	TotalEauTVA       decimal.Decimal
	TotalEauTTC       decimal.Decimal
	TotalTransportHT  decimal.Decimal
	TotalTransportTVA decimal.Decimal
	TotalTransportTTC decimal.Decimal
	TotalHT           decimal.Decimal
	TotalTVA          decimal.Decimal
	TotalTTC          decimal.Decimal
}

// ComputeTotals prices the lines. Water tax is applied once to the summed
// water HT; transport tax is applied per line and then summed. Unit prices
// are rounded to 2 places and rates to 4 before use; totals are not rounded.
// transportPrice is only called for lines with transport and no frozen price,
// and may be nil when there are none.
func ComputeTotals(lines []Line, eauUnitPrice, eauTaxRate, transportTaxRate decimal.Decimal, transportPrice TransportPricer) Totals {
	eauUnitPrice = RoundPrice(eauUnitPrice)
	eauTaxRate = RoundRate(eauTaxRate)
	transportTaxRate = RoundRate(transportTaxRate)

	t := Totals{
		Lines:            make([]LineTotals, 0, len(lines)),
		EauUnitPrice:     eauUnitPrice,
		EauTaxRate:       eauTaxRate,
		TransportTaxRate: transportTaxRate,
	}

	for _, l := range lines {
		lt := LineTotals{
			Line:         l,
			LineVolume:   l.Volume(),
			TransportHT:  decimal.Zero,
			TransportTVA: decimal.Zero,
		}
		lt.WaterHT = lt.LineVolume.Mul(eauUnitPrice)

		if l.IncludeTransport {
			var price TransportPrice
			switch {
			case l.TransportUnitPrice != nil:
				price = TransportPrice{UnitPrice: *l.TransportUnitPrice, TariffID: l.TransportTariffID, Source: TransportSourceSnapshot}
			case transportPrice != nil:
				price = transportPrice(l.VolumePerTank)
			default:
				price = TransportPrice{UnitPrice: decimal.Zero, Source: TransportSourceDefault}
			}
			lt.TransportUnitPrice = RoundPrice(price.UnitPrice)
			lt.TransportTariffID = price.TariffID
			lt.TransportSource = price.Source
			lt.TransportHT = decimal.NewFromInt(int64(l.TankCount)).Mul(lt.TransportUnitPrice)
			lt.TransportTVA = lt.TransportHT.Mul(transportTaxRate)
		}

		t.VolumeTotal = t.VolumeTotal.Add(lt.LineVolume)
		t.TotalEauHT = t.TotalEauHT.Add(lt.WaterHT)
		t.TotalTransportHT = t.TotalTransportHT.Add(lt.TransportHT)
		t.TotalTransportTVA = t.TotalTransportTVA.Add(lt.TransportTVA)
		t.Lines = append(t.Lines, lt)
	}

	t.TotalEauTVA = t.TotalEauHT.Mul(eauTaxRate)
	t.TotalEauTTC = t.TotalEauHT.Add(t.TotalEauTVA)
	t.TotalTransportTTC = t.TotalTransportHT.Add(t.TotalTransportTVA)
	t.TotalHT = t.TotalEauHT.Add(t.TotalTransportHT)
	t.TotalTVA = t.TotalEauTVA.Add(t.TotalTransportTVA)
	t.TotalTTC = t.TotalEauTTC.Add(t.TotalTransportTTC)
	return t
}

// Snapshot returns the aggregate totals in their stored form
func (t Totals) Snapshot() entity.QuoteTotals {
	return entity.QuoteTotals{
		VolumeTotal:       t.VolumeTotal,
		TotalEauHT:        t.TotalEauHT,
		TotalEauTVA:       t.TotalEauTVA,
		TotalEauTTC:       t.TotalEauTTC,
		TotalTransportHT:  t.TotalTransportHT,
		TotalTransportTVA: t.TotalTransportTVA,
		TotalTransportTTC: t.TotalTransportTTC,
		TotalHT:           t.TotalHT,
		TotalTVA:          t.TotalTVA,
		TotalTTC:          t.TotalTTC,
	}
}

// QuoteLines converts the priced lines to rows of the given quote and sale
func (t Totals) QuoteLines(quoteID, saleID uint) []entity.QuoteLine {
	rows := make([]entity.QuoteLine, len(t.Lines))
	for i, lt := range t.Lines {
		rows[i] = entity.QuoteLine{
			QuoteID:            quoteID,
			SaleID:             saleID,
			TankCount:          lt.Line.TankCount,
			VolumePerTank:      lt.Line.VolumePerTank,
			IncludeTransport:   lt.Line.IncludeTransport,
			UnitPriceM3:        t.EauUnitPrice,
			WaterTaxRate:       t.EauTaxRate,
			TransportUnitPrice: lt.TransportUnitPrice,
			TransportTaxRate:   t.TransportTaxRate,
			TransportTariffID:  lt.TransportTariffID,
			LineVolume:         lt.LineVolume,
			WaterHT:            lt.WaterHT,
			TransportHT:        lt.TransportHT,
			TransportTVA:       lt.TransportTVA,
		}
	}
	return rows
}

// LinesFromRows rebuilds priced lines from stored rows, freezing the transport
// price each row was saved with.
func LinesFromRows(rows []entity.QuoteLine) []Line {
	lines := make([]Line, len(rows))
	for i, r := range rows {
		l := Line{
			TankCount:         r.TankCount,
			VolumePerTank:     r.VolumePerTank,
			IncludeTransport:  r.IncludeTransport,
			TransportTariffID: r.TransportTariffID,
		}
		if r.IncludeTransport {
			price := r.TransportUnitPrice
			l.TransportUnitPrice = &price
		}
		lines[i] = l
	}
	return lines
}
