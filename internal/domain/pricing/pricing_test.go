package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type memCatalog struct {
	tariffs []entity.Tariff
	err     error
}

func (m *memCatalog) ListActive(_ context.Context, serviceType enum.ServiceType, at time.Time) ([]entity.Tariff, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []entity.Tariff
	for _, t := range m.tariffs {
		if t.ServiceType.Equal(serviceType) && t.IsActiveAt(at) {
			out = append(out, t)
		}
	}
	return out, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, d(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func tariff(id uint, st enum.ServiceType, price, rate string, from time.Time) entity.Tariff {
	return entity.Tariff{
		ID:               id,
		ServiceType:      st,
		UnitPriceExclTax: d(price),
		TaxRate:          d(rate),
		ValidFrom:        from,
	}
}

func transport(id uint, ref *int, price string) entity.Tariff {
	t := tariff(id, enum.ServiceTypeTransport, price, "0.19", testNow.AddDate(0, -1, 0))
	t.ReferenceVolume = ref
	return t
}

func TestNormalizeTaxRate(t *testing.T) {
	assertDecimal(t, "0.19", NormalizeTaxRate(d("19")))
	assertDecimal(t, "0.19", NormalizeTaxRate(d("0.19")))
	assert.True(t, NormalizeTaxRate(d("19")).Equal(NormalizeTaxRate(d("0.19"))))
	assertDecimal(t, "10", NormalizeTaxRate(d("10")), "10 is taken as already fractional")
	assertDecimal(t, "0.105", NormalizeTaxRate(d("10.5")))
	assertDecimal(t, "0", NormalizeTaxRate(decimal.Zero))
}

func TestRounding(t *testing.T) {
	assertDecimal(t, "12.35", RoundPrice(d("12.345")))
	assertDecimal(t, "0.1905", RoundRate(d("0.19049")))
	assertDecimal(t, "0.1904", RoundRate(d("0.19044")))
}

func TestResolveServiceTariff(t *testing.T) {
	cat := &memCatalog{tariffs: []entity.Tariff{
		tariff(1, enum.ServiceTypeCiternage, "90", "0.19", testNow.AddDate(0, -6, 0)),
		tariff(2, enum.ServiceTypeCiternage, "100", "0.19", testNow.AddDate(0, -1, 0)),
		tariff(3, enum.ServiceTypeVol, "40.555", "0.07", testNow.AddDate(0, -2, 0)),
	}}
	closed := tariff(4, enum.ServiceTypeCiternage, "150", "0.19", testNow.AddDate(0, 0, -1))
	closed.ValidUntil = timePtr(testNow.Add(-time.Minute))
	cat.tariffs = append(cat.tariffs, closed)

	r := NewResolver(cat)

	t.Run("most recent active tariff", func(t *testing.T) {
		st, err := r.ResolveServiceTariff(context.Background(), enum.DossierTypeCiternage, testNow)
		require.NoError(t, err)
		assert.Equal(t, uint(2), st.TariffID)
		assertDecimal(t, "100", st.UnitPriceExclTax)
		assertDecimal(t, "0.19", st.TaxRate)
	})

	t.Run("dossier mapped to service type and price rounded", func(t *testing.T) {
		st, err := r.ResolveServiceTariff(context.Background(), enum.DossierTypeProcesVol, testNow)
		require.NoError(t, err)
		assert.Equal(t, enum.ServiceTypeVol, st.ServiceType)
		assertDecimal(t, "40.56", st.UnitPriceExclTax)
	})

	t.Run("no active tariff", func(t *testing.T) {
		_, err := r.ResolveServiceTariff(context.Background(), enum.DossierTypeEssaiReseau, testNow)
		assert.ErrorIs(t, err, ErrTariffNotFound)
		assert.Contains(t, err.Error(), "ESSAI")
	})

	t.Run("unknown dossier type", func(t *testing.T) {
		_, err := r.ResolveServiceTariff(context.Background(), enum.DossierType("LIVRAISON"), testNow)
		assert.ErrorIs(t, err, ErrTariffNotFound)
	})

	t.Run("catalog error is not a not-found", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := NewResolver(&memCatalog{err: boom}).ResolveServiceTariff(context.Background(), enum.DossierTypeCiternage, testNow)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrTariffNotFound)
	})
}

func TestMostRecent_TieBreaksOnHighestID(t *testing.T) {
	from := testNow.AddDate(0, -1, 0)
	tariffs := []entity.Tariff{
		tariff(7, enum.ServiceTypeCiternage, "100", "0.19", from),
		tariff(9, enum.ServiceTypeCiternage, "110", "0.19", from),
		tariff(8, enum.ServiceTypeCiternage, "120", "0.19", from),
	}
	best, ok := MostRecent(tariffs, testNow)
	require.True(t, ok)
	assert.Equal(t, uint(9), best.ID)

	_, ok = MostRecent(nil, testNow)
	assert.False(t, ok)
}

func TestTransportBrackets_Price(t *testing.T) {
	b := NewTransportBrackets([]entity.Tariff{
		transport(2, intPtr(20), "800"),
		transport(1, intPtr(10), "500"),
		transport(3, nil, "650"),
	})
	require.Len(t, b.Brackets(), 2)
	assert.Equal(t, 10, *b.Brackets()[0].ReferenceVolume)

	tests := []struct {
		name     string
		volume   string
		price    string
		source   TransportSource
		tariffID uint
	}{
		{"first bracket lower bound", "1", "500", TransportSourceBracket, 1},
		{"first bracket upper bound", "10", "500", TransportSourceBracket, 1},
		{"second bracket lower bound", "11", "800", TransportSourceBracket, 2},
		{"second bracket upper bound", "20", "800", TransportSourceBracket, 2},
		{"above every bracket takes the largest", "25", "800", TransportSourceCeiling, 2},
		{"gap between brackets takes the catch-all", "10.5", "650", TransportSourceCatchAll, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := b.Price(d(tt.volume), d("300"))
			assertDecimal(t, tt.price, p.UnitPrice)
			assert.Equal(t, tt.source, p.Source)
			require.NotNil(t, p.TariffID)
			assert.Equal(t, tt.tariffID, *p.TariffID)
		})
	}
}

func TestTransportBrackets_FallbackToDefault(t *testing.T) {
	fallbacks := 0
	r := NewResolver(&memCatalog{}, WithFallbackHook(func() { fallbacks++ }))

	p, err := r.ResolveTransportTariff(context.Background(), d("30"), d("300"), testNow)
	require.NoError(t, err)
	assertDecimal(t, "300", p.UnitPrice)
	assert.Equal(t, TransportSourceDefault, p.Source)
	assert.Nil(t, p.TariffID)
	assert.Equal(t, 1, fallbacks)
}

func TestTransportBrackets_GapWithoutCatchAllFallsBack(t *testing.T) {
	b := NewTransportBrackets([]entity.Tariff{
		transport(1, intPtr(10), "500"),
		transport(2, intPtr(20), "800"),
	})
	p := b.Price(d("10.5"), d("300"))
	assert.Equal(t, TransportSourceDefault, p.Source)
	assertDecimal(t, "300", p.UnitPrice)
}

func TestTransportBrackets_DuplicateReferenceKeepsMostRecent(t *testing.T) {
	older := transport(1, intPtr(10), "500")
	newer := transport(2, intPtr(10), "550")
	newer.ValidFrom = testNow.AddDate(0, 0, -1)

	b := NewTransportBrackets([]entity.Tariff{newer, older})
	require.Len(t, b.Brackets(), 1)
	assertDecimal(t, "550", b.Price(d("5"), decimal.Zero).UnitPrice)
}

func TestTransportBrackets_Monotonic(t *testing.T) {
	b := NewTransportBrackets([]entity.Tariff{
		transport(1, intPtr(5), "200"),
		transport(2, intPtr(15), "400"),
		transport(3, intPtr(40), "900"),
	})
	refOf := func(v int) int {
		p := b.Price(decimal.NewFromInt(int64(v)), decimal.Zero)
		require.NotNil(t, p.TariffID)
		for _, br := range b.Brackets() {
			if br.ID == *p.TariffID {
				return *br.ReferenceVolume
			}
		}
		t.Fatalf("tariff %d is not a bracket", *p.TariffID)
		return 0
	}
	prev := refOf(1)
	for v := 2; v <= 60; v++ {
		cur := refOf(v)
		assert.GreaterOrEqual(t, cur, prev, "volume %d", v)
		prev = cur
	}
}

func TestGuard_FindConflict(t *testing.T) {
	first := tariff(1, enum.ServiceTypeCiternage, "100", "0.19", testNow.AddDate(0, -1, 0))
	cat := &memCatalog{tariffs: []entity.Tariff{
		first,
		transport(10, intPtr(10), "500"),
		transport(11, nil, "650"),
	}}
	g := NewGuard(cat, func() time.Time { return testNow })
	ctx := context.Background()

	t.Run("second active CITERNAGE is rejected", func(t *testing.T) {
		draft := TariffDraft{ServiceType: enum.ServiceTypeCiternage, UnitPriceExclTax: d("120"), TaxRate: d("0.19"), ValidFrom: testNow}
		err := g.Check(ctx, draft, nil)
		var dup *DuplicateTariffError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, uint(1), dup.ExistingID)
		assert.Equal(t, enum.ServiceTypeCiternage, dup.ServiceType)
	})

	t.Run("service type compared case-insensitively", func(t *testing.T) {
		draft := TariffDraft{ServiceType: enum.ServiceType(" citernage "), ValidFrom: testNow}
		existing, err := g.FindConflict(ctx, draft, nil)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, uint(1), existing.ID)
	})

	t.Run("editing a tariff does not conflict with itself", func(t *testing.T) {
		draft := TariffDraft{ServiceType: enum.ServiceTypeCiternage, ValidFrom: testNow}
		existing, err := g.FindConflict(ctx, draft, &first.ID)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("other service type is free", func(t *testing.T) {
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeVol, ValidFrom: testNow}, nil)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("transport conflicts on equal reference volume", func(t *testing.T) {
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ReferenceVolume: intPtr(10), ValidFrom: testNow}, nil)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, uint(10), existing.ID)
	})

	t.Run("transport catch-all conflicts with catch-all", func(t *testing.T) {
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ValidFrom: testNow}, nil)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, uint(11), existing.ID)
	})

	t.Run("editing a transport bracket does not conflict with itself", func(t *testing.T) {
		id := uint(10)
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ReferenceVolume: intPtr(10), ValidFrom: testNow}, &id)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("editing the transport catch-all does not conflict with itself", func(t *testing.T) {
		id := uint(11)
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ValidFrom: testNow}, &id)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("excluding another transport tariff still conflicts", func(t *testing.T) {
		id := uint(11)
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ReferenceVolume: intPtr(10), ValidFrom: testNow}, &id)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, uint(10), existing.ID)
	})

	t.Run("transport new bracket is free", func(t *testing.T) {
		existing, err := g.FindConflict(ctx, TariffDraft{ServiceType: enum.ServiceTypeTransport, ReferenceVolume: intPtr(20), ValidFrom: testNow}, nil)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("expired candidate cannot collide", func(t *testing.T) {
		draft := TariffDraft{ServiceType: enum.ServiceTypeCiternage, ValidFrom: testNow.AddDate(-1, 0, 0), ValidUntil: timePtr(testNow.AddDate(0, -2, 0))}
		existing, err := g.FindConflict(ctx, draft, nil)
		require.NoError(t, err)
		assert.Nil(t, existing)
	})

	t.Run("closed tariff does not block", func(t *testing.T) {
		closed := tariff(20, enum.ServiceTypeEssai, "50", "0.19", testNow.AddDate(0, -3, 0))
		closed.ValidUntil = timePtr(testNow.Add(-time.Hour))
		g := NewGuard(&memCatalog{tariffs: []entity.Tariff{closed}}, func() time.Time { return testNow })
		err := g.Check(ctx, TariffDraft{ServiceType: enum.ServiceTypeEssai, ValidFrom: testNow}, nil)
		assert.NoError(t, err)
	})
}

func TestTariffDraft_NormalizeAndValidate(t *testing.T) {
	draft := TariffDraft{
		ServiceType:      enum.ServiceType(" transport "),
		UnitPriceExclTax: d("499.999"),
		TaxRate:          d("19"),
		ReferenceVolume:  intPtr(10),
		ValidFrom:        testNow,
	}.Normalized()
	assert.Equal(t, enum.ServiceTypeTransport, draft.ServiceType)
	assertDecimal(t, "500", draft.UnitPriceExclTax)
	assertDecimal(t, "0.19", draft.TaxRate)
	assert.NoError(t, draft.Validate())

	bad := TariffDraft{
		ServiceType:      enum.ServiceTypeCiternage,
		UnitPriceExclTax: decimal.Zero,
		TaxRate:          d("1.5"),
		ReferenceVolume:  intPtr(10),
		ValidFrom:        testNow,
		ValidUntil:       timePtr(testNow.AddDate(0, 0, -1)),
	}
	err := bad.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"unit_price_ht", "tax_rate", "reference_volume", "valid_until"}, fields)

	tooBig := TariffDraft{ServiceType: enum.ServiceTypeVol, UnitPriceExclTax: d("1000000000000000"), TaxRate: d("0.19"), ValidFrom: testNow}
	assert.Error(t, tooBig.Validate())

	for _, rate := range []string{"0.999999", "0.99995", "0.9999"} {
		edge := TariffDraft{ServiceType: enum.ServiceTypeVol, UnitPriceExclTax: d("10"), TaxRate: d(rate), ValidFrom: testNow}.Normalized()
		assertDecimal(t, rate, edge.TaxRate)
		assert.NoError(t, edge.Validate(), "rate %s", rate)
	}
	over := TariffDraft{ServiceType: enum.ServiceTypeVol, UnitPriceExclTax: d("10"), TaxRate: d("0.9999996"), ValidFrom: testNow}.Normalized()
	assert.Error(t, over.Validate())
}
