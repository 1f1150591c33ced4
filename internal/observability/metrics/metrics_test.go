package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	before := testutil.ToFloat64(transportFallbacks)
	r.RecordTransportFallback()
	assert.Equal(t, before+1, testutil.ToFloat64(transportFallbacks))

	r.RecordTariffConflict("CITERNAGE")
	assert.GreaterOrEqual(t, testutil.ToFloat64(tariffConflicts.WithLabelValues("CITERNAGE")), 1.0)

	r.RecordQuoteWrite("create", "CITERNAGE")
	assert.GreaterOrEqual(t, testutil.ToFloat64(quotesWritten.WithLabelValues("create", "CITERNAGE")), 1.0)

	r.RecordTariffNotFound("VOL")
	r.RecordPricing(3, 2*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(pricingDuration))
}
