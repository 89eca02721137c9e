package translate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vartrans_cache_lookups_total",
			Help: "Translation cache lookups by result (hit or miss)",
		},
		[]string{"engine", "result"},
	)

	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vartrans_cache_entries",
			Help: "Number of translations held in the cache",
		},
	)

	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vartrans_translation_requests_total",
			Help: "Total number of engine translation requests",
		},
		[]string{"engine", "target_lang", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vartrans_translation_request_duration_seconds",
			Help:    "Duration of engine translation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		},
		[]string{"engine", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vartrans_translation_request_size_bytes",
			Help:    "Size of text sent to engines in bytes",
			Buckets: []float64{8, 16, 32, 64, 128, 256, 1024},
		},
		[]string{"engine"},
	)
)

// recordCacheLookup records one cache lookup.
func recordCacheLookup(engine EngineType, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(string(engine), result).Inc()
}

// recordTranslationRequest records metrics for one engine round trip.
// A request counts as an error when the engine failed or returned nothing.
func recordTranslationRequest(engine EngineType, target Language, duration time.Duration, success bool, requestSize int) {
	status := "success"
	if !success {
		status = "error"
	}
	translationRequestsTotal.WithLabelValues(string(engine), string(target), status).Inc()
	translationRequestDuration.WithLabelValues(string(engine), status).Observe(duration.Seconds())
	translationRequestSize.WithLabelValues(string(engine)).Observe(float64(requestSize))
}
