// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal *prometheus.CounterVec
	pagesFailedTotal  *prometheus.CounterVec
	gamesLoadedTotal  prometheus.Counter
	gamesSkippedTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgs_pages_fetched_total",
				Help: "Total number of pages fetched from the origin, labeled by document kind.",
			},
			[]string{"doc"},
		)

		pagesFailedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgs_pages_failed_total",
				Help: "Total number of page fetches that failed, labeled by document kind.",
			},
			[]string{"doc"},
		)

		gamesLoadedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tfgs_games_loaded_total",
				Help: "Total number of games loaded into the store.",
			},
		)

		gamesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgs_games_skipped_total",
				Help: "Total number of games skipped during ingestion, labeled by reason.",
			},
			[]string{"reason"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one completed fetch task.
func ObserveFetch(doc string, ok bool) {
	Init()
	if ok {
		pagesFetchedTotal.WithLabelValues(doc).Inc()
		return
	}
	pagesFailedTotal.WithLabelValues(doc).Inc()
}

// ObserveGameLoaded records one game written to the store.
func ObserveGameLoaded() {
	Init()
	gamesLoadedTotal.Inc()
}

// ObserveGameSkipped records one game excluded from the run.
func ObserveGameSkipped(reason string) {
	Init()
	gamesSkippedTotal.WithLabelValues(reason).Inc()
}
