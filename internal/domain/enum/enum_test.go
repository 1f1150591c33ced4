package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDossierTypeMapping(t *testing.T) {
	cases := []struct {
		in      string
		service ServiceType
		sale    SaleType
	}{
		{"CITERNAGE", ServiceTypeCiternage, SaleTypeVente},
		{" proces_vol ", ServiceTypeVol, SaleTypeVol},
		{"ESSAI_RESEAU", ServiceTypeEssai, SaleTypeEssai},
	}
	for _, tc := range cases {
		d, ok := ParseDossierType(tc.in)
		assert.True(t, ok, tc.in)

		st, ok := d.ServiceType()
		assert.True(t, ok)
		assert.Equal(t, tc.service, st)

		sale, ok := d.SaleType()
		assert.True(t, ok)
		assert.Equal(t, tc.sale, sale)
	}

	_, ok := ParseDossierType("VENTE")
	assert.False(t, ok)
	assert.True(t, DossierTypeCiternage.RequiresTransport())
	assert.False(t, DossierTypeProcesVol.RequiresTransport())
}

func TestServiceTypeEqualIgnoresCaseAndSpaces(t *testing.T) {
	assert.True(t, ServiceType(" transport ").Equal(ServiceTypeTransport))
	assert.False(t, ServiceTypeVol.Equal(ServiceTypeEssai))

	st, ok := ParseServiceType("essai")
	assert.True(t, ok)
	assert.Equal(t, ServiceTypeEssai, st)

	_, ok = ParseServiceType("LIVRAISON")
	assert.False(t, ok)
}

func TestParseQuoteStatus(t *testing.T) {
	s, ok := ParseQuoteStatus("")
	assert.True(t, ok)
	assert.Equal(t, QuoteStatusPending, s)

	s, ok = ParseQuoteStatus("accepte")
	assert.True(t, ok)
	assert.Equal(t, QuoteStatusAccepted, s)

	_, ok = ParseQuoteStatus("ANNULE")
	assert.False(t, ok)
}
