package pricing

import (
	"testing"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals_WaterOnly(t *testing.T) {
	lines := []Line{{TankCount: 2, VolumePerTank: d("50")}}
	totals := ComputeTotals(lines, d("100"), d("0.19"), d("0.19"), nil)

	assertDecimal(t, "100", totals.VolumeTotal)
	assertDecimal(t, "10000", totals.TotalEauHT)
	assertDecimal(t, "1900", totals.TotalEauTVA)
	assertDecimal(t, "11900", totals.TotalEauTTC)
	assertDecimal(t, "0", totals.TotalTransportHT)
	assertDecimal(t, "0", totals.TotalTransportTTC)
	assertDecimal(t, "10000", totals.TotalHT)
	assertDecimal(t, "1900", totals.TotalTVA)
	assertDecimal(t, "11900", totals.TotalTTC)
}

func TestComputeTotals_EmptyLines(t *testing.T) {
	totals := ComputeTotals(nil, d("100"), d("0.19"), d("0.19"), nil)

	for name, v := range map[string]decimal.Decimal{
		"volume":  totals.VolumeTotal,
		"eau_ht":  totals.TotalEauHT,
		"eau_tva": totals.TotalEauTVA,
		"eau_ttc": totals.TotalEauTTC,
		"tr_ht":   totals.TotalTransportHT,
		"tr_tva":  totals.TotalTransportTVA,
		"tr_ttc":  totals.TotalTransportTTC,
		"ht":      totals.TotalHT,
		"tva":     totals.TotalTVA,
		"ttc":     totals.TotalTTC,
	} {
		assert.True(t, v.IsZero(), name)
	}
	assert.Empty(t, totals.Lines)
}

func TestComputeTotals_TransportBracketCeiling(t *testing.T) {
	b := NewTransportBrackets([]entity.Tariff{
		transport(1, intPtr(10), "500"),
		transport(2, intPtr(20), "800"),
	})
	lines := []Line{{TankCount: 1, VolumePerTank: d("25"), IncludeTransport: true}}
	totals := ComputeTotals(lines, d("10"), d("0.19"), d("0.19"), func(v decimal.Decimal) TransportPrice {
		return b.Price(v, d("300"))
	})

	require.Len(t, totals.Lines, 1)
	assertDecimal(t, "800", totals.Lines[0].TransportUnitPrice)
	assertDecimal(t, "800", totals.TotalTransportHT)
	assertDecimal(t, "152", totals.TotalTransportTVA)
}

func TestComputeTotals_TransportDefaultPrice(t *testing.T) {
	b := NewTransportBrackets(nil)
	lines := []Line{{TankCount: 3, VolumePerTank: d("12"), IncludeTransport: true}}
	totals := ComputeTotals(lines, d("10"), d("0.19"), d("0.07"), func(v decimal.Decimal) TransportPrice {
		return b.Price(v, d("300"))
	})

	assertDecimal(t, "900", totals.TotalTransportHT)
	assertDecimal(t, "63", totals.TotalTransportTVA)
	assert.Equal(t, TransportSourceDefault, totals.Lines[0].TransportSource)
}

func TestComputeTotals_TaxOrderOfOperations(t *testing.T) {
	lines := []Line{
		{TankCount: 1, VolumePerTank: d("1.333"), IncludeTransport: true},
		{TankCount: 2, VolumePerTank: d("3.777"), IncludeTransport: true},
		{TankCount: 1, VolumePerTank: d("7")},
	}
	pricer := func(v decimal.Decimal) TransportPrice {
		return TransportPrice{UnitPrice: d("33.33"), Source: TransportSourceBracket}
	}
	totals := ComputeTotals(lines, d("12.345"), d("0.19"), d("0.07"), pricer)

	// unit price rounded before use
	assertDecimal(t, "12.35", totals.EauUnitPrice)

	waterHT := decimal.Zero
	transportTVA := decimal.Zero
	for _, lt := range totals.Lines {
		waterHT = waterHT.Add(lt.WaterHT)
		transportTVA = transportTVA.Add(lt.TransportTVA)
	}
	assert.True(t, totals.TotalEauHT.Equal(waterHT))
	assert.True(t, totals.TotalEauTVA.Equal(waterHT.Mul(d("0.19"))))
	assert.True(t, totals.TotalTransportTVA.Equal(transportTVA))

	assert.True(t, totals.TotalTTC.Equal(totals.TotalEauTTC.Add(totals.TotalTransportTTC)))
	assert.True(t, totals.TotalHT.Equal(totals.TotalEauHT.Add(totals.TotalTransportHT)))
	assert.True(t, totals.TotalTVA.Equal(totals.TotalEauTVA.Add(totals.TotalTransportTVA)))
	assertDecimal(t, "15.887", totals.VolumeTotal)
}

func TestComputeTotals_FrozenTransportPrice(t *testing.T) {
	frozen := d("420")
	id := uint(5)
	lines := []Line{{TankCount: 2, VolumePerTank: d("10"), IncludeTransport: true, TransportUnitPrice: &frozen, TransportTariffID: &id}}
	totals := ComputeTotals(lines, d("10"), d("0.19"), d("0.19"), func(decimal.Decimal) TransportPrice {
		t.Fatal("pricer must not be called for a frozen line")
		return TransportPrice{}
	})

	assertDecimal(t, "840", totals.TotalTransportHT)
	assert.Equal(t, TransportSourceSnapshot, totals.Lines[0].TransportSource)
	assert.Equal(t, &id, totals.Lines[0].TransportTariffID)
}

func TestQuoteLinesRoundTrip(t *testing.T) {
	lines := []Line{
		{TankCount: 2, VolumePerTank: d("15"), IncludeTransport: true},
		{TankCount: 1, VolumePerTank: d("8")},
	}
	pricer := func(decimal.Decimal) TransportPrice {
		return TransportPrice{UnitPrice: d("500"), Source: TransportSourceBracket}
	}
	first := ComputeTotals(lines, d("100"), d("0.19"), d("0.19"), pricer)

	rows := first.QuoteLines(4, 9)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(4), rows[0].QuoteID)
	assert.Equal(t, uint(9), rows[1].SaleID)
	assertDecimal(t, "500", rows[0].TransportUnitPrice)

	again := ComputeTotals(LinesFromRows(rows), rows[0].UnitPriceM3, rows[0].WaterTaxRate, rows[0].TransportTaxRate, nil)
	assert.True(t, again.TotalTTC.Equal(first.TotalTTC))
	assert.True(t, again.Snapshot().TotalTransportHT.Equal(first.Snapshot().TotalTransportHT))
}

func TestValidateLines(t *testing.T) {
	assert.NoError(t, ValidateLines([]Line{{TankCount: 1, VolumePerTank: d("1")}, {TankCount: 3, VolumePerTank: d("500")}}))

	err := ValidateLines([]Line{{TankCount: 0, VolumePerTank: d("0.5")}, {TankCount: 1, VolumePerTank: d("500.01")}})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	assert.Equal(t, "lines[0].tank_count", verrs[0].Field)
	assert.Equal(t, "lines[1].volume_per_tank", verrs[2].Field)
	assert.NoError(t, ValidateLines([]Line{{TankCount: 2, VolumePerTank: d("12.345")}}))
	err = ValidateLines([]Line{{TankCount: 2, VolumePerTank: d("12.3456")}})
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "lines[0].volume_per_tank", verrs[0].Field)
	assert.Equal(t, "must have at most 3 decimal places", verrs[0].Message)
}
