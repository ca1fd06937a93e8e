// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus metrics exposed by vt2g.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream fetch metrics
	tilesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_tiles_fetched_total",
		Help: "Tile fetch attempts against the upstream by outcome",
	}, []string{"outcome"}) // outcome=success|empty|error

	tileFetchBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vt2g_tile_fetch_bytes_total",
		Help: "Total PBF bytes received from the upstream",
	})

	tileFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vt2g_tile_fetch_duration_seconds",
		Help:    "Upstream tile fetch latencies in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Cache metrics
	tileCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_tile_cache_lookups_total",
		Help: "Tile store lookups by result",
	}, []string{"result"}) // result=hit|miss

	// Decode metrics
	tilesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_tiles_decoded_total",
		Help: "Vector tile decode attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	featuresDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_features_decoded_total",
		Help: "Features decoded per source layer",
	}, []string{"layer"})

	// Download job metrics
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_downloads_total",
		Help: "Download jobs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	downloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vt2g_download_duration_seconds",
		Help:    "End-to-end download job durations in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	featuresWritten = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vt2g_features_written",
		Help: "Features written to GeoJSON per layer (last successful job)",
	}, []string{"layer"})

	geojsonWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vt2g_geojson_write_errors_total",
		Help: "Total number of GeoJSON write failures",
	})

	// Operational metrics
	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vt2g_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})

	catalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_layer_catalog_reloads_total",
		Help: "Layer catalog reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vt2g_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vt2g_circuit_breaker_trips_total",
		Help: "Circuit breaker trips by reason",
	}, []string{"name", "reason"})
)

// RecordTileFetch records an upstream fetch attempt.
func RecordTileFetch(outcome string, bytes int, seconds float64) {
	tilesFetched.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		tileFetchBytes.Add(float64(bytes))
	}
	tileFetchDuration.Observe(seconds)
}

// RecordCacheLookup records a tile store lookup result.
func RecordCacheLookup(hit bool) {
	if hit {
		tileCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	tileCacheLookups.WithLabelValues("miss").Inc()
}

// RecordTileDecode records a decode attempt outcome.
func RecordTileDecode(ok bool) {
	if ok {
		tilesDecoded.WithLabelValues("success").Inc()
		return
	}
	tilesDecoded.WithLabelValues("failure").Inc()
}

// RecordFeaturesDecoded adds to the per-layer decoded feature counter.
func RecordFeaturesDecoded(layer string, n int) {
	if n > 0 {
		featuresDecoded.WithLabelValues(layer).Add(float64(n))
	}
}

// RecordDownload records a finished download job.
func RecordDownload(outcome string, seconds float64) {
	downloadsTotal.WithLabelValues(outcome).Inc()
	downloadDuration.Observe(seconds)
}

// SetFeaturesWritten publishes the feature count of the last successful job.
func SetFeaturesWritten(layer string, n int) {
	featuresWritten.WithLabelValues(layer).Set(float64(n))
}

// RecordGeoJSONWriteError increments the GeoJSON write failure counter.
func RecordGeoJSONWriteError() {
	geojsonWriteErrors.Inc()
}

// RecordConfigValidationError increments the config validation failure counter.
func RecordConfigValidationError() {
	configValidationErrors.Inc()
}

// RecordCatalogReload records a layer catalog reload attempt.
func RecordCatalogReload(ok bool) {
	if ok {
		catalogReloads.WithLabelValues("success").Inc()
		return
	}
	catalogReloads.WithLabelValues("failure").Inc()
}

// SetCircuitBreakerState publishes the current breaker state.
func SetCircuitBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	circuitBreakerState.WithLabelValues(name).Set(v)
}

// RecordCircuitBreakerTrip counts a breaker trip with its reason.
func RecordCircuitBreakerTrip(name, reason string) {
	circuitBreakerTrips.WithLabelValues(name, reason).Inc()
}
