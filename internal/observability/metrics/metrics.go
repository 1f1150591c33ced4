package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// quotesWritten counts persisted quote writes by operation (create, update, delete).
	quotesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devis_quotes_written_total",
		Help: "Total number of quote writes by operation and dossier type",
	}, []string{"operation", "dossier_type"})

	// quoteLines tracks the number of lines per priced quote.
	quoteLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "devis_quote_lines_count",
		Help:    "Number of tank lines in priced quotes",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	// pricingDuration tracks the time taken to resolve tariffs and compute totals.
	pricingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "devis_pricing_duration_seconds",
		Help:    "Time taken to price a quote",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// transportFallbacks counts transport prices taken from the caller's default.
	transportFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devis_transport_price_fallback_total",
		Help: "Total number of transport prices that fell back to the manual default",
	})

	// tariffNotFound counts quotes rejected because a service had no active tariff.
	tariffNotFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devis_tariff_not_found_total",
		Help: "Total number of tariff lookups without an active tariff by service type",
	}, []string{"service_type"})

	// tariffConflicts counts tariff writes rejected as duplicates.
	tariffConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devis_tariff_conflicts_total",
		Help: "Total number of duplicate tariff rejections by service type",
	}, []string{"service_type"})
)

// Recorder provides methods to record pricing metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordQuoteWrite records a persisted quote write.
func (r *Recorder) RecordQuoteWrite(operation, dossierType string) {
	quotesWritten.WithLabelValues(operation, dossierType).Inc()
}

// RecordPricing records the duration and size of a pricing run.
func (r *Recorder) RecordPricing(lines int, duration time.Duration) {
	quoteLines.Observe(float64(lines))
	pricingDuration.Observe(duration.Seconds())
}

// RecordTransportFallback records a transport price taken from the default.
func (r *Recorder) RecordTransportFallback() {
	transportFallbacks.Inc()
}

// RecordTariffNotFound records a lookup without an active tariff.
func (r *Recorder) RecordTariffNotFound(serviceType string) {
	tariffNotFound.WithLabelValues(serviceType).Inc()
}

// RecordTariffConflict records a duplicate tariff rejection.
func (r *Recorder) RecordTariffConflict(serviceType string) {
	tariffConflicts.WithLabelValues(serviceType).Inc()
}
