// Package metrics defines the Prometheus collectors of the extraction
// engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing, so library code never has to check.
type Metrics struct {
	DocumentsTotal        *prometheus.CounterVec
	ExtractionLatency     *prometheus.HistogramVec
	KeyphrasesPerDocument *prometheus.HistogramVec
	TextRankIterations    prometheus.Histogram
	ModelLoadsTotal       *prometheus.CounterVec
	LoadedModels          *prometheus.GaugeVec
	CorpusDocuments       *prometheus.GaugeVec
	CorpusTerms           *prometheus.GaugeVec
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	SinkWritesTotal       *prometheus.CounterVec
	CircuitBreakerState   *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg. A nil reg uses
// a fresh private registry, which keeps tests independent.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyphrase_documents_total",
				Help: "Documents handled by method, language and status (ok, empty, skipped, error).",
			},
			[]string{"method", "language", "status"},
		),
		ExtractionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keyphrase_extraction_duration_seconds",
				Help:    "Per-document extraction latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method"},
		),
		KeyphrasesPerDocument: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keyphrase_results_count",
				Help:    "Number of keyphrases returned per document.",
				Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
			},
			[]string{"method"},
		),
		TextRankIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "keyphrase_textrank_iterations",
				Help:    "Centrality iterations run per document.",
				Buckets: []float64{1, 5, 10, 20, 30, 50, 100},
			},
		),
		ModelLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyphrase_model_loads_total",
				Help: "Per-language model loads by method and status.",
			},
			[]string{"method", "language", "status"},
		),
		LoadedModels: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "keyphrase_loaded_models",
				Help: "Number of per-language models currently cached.",
			},
			[]string{"method"},
		),
		CorpusDocuments: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "keyphrase_corpus_documents",
				Help: "Document total of the loaded or built corpus per language.",
			},
			[]string{"language"},
		),
		CorpusTerms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "keyphrase_corpus_terms",
				Help: "Distinct n-grams of the loaded or built corpus per language.",
			},
			[]string{"language"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "keyphrase_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "keyphrase_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyphrase_sink_writes_total",
				Help: "Result writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "keyphrase_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.DocumentsTotal,
		m.ExtractionLatency,
		m.KeyphrasesPerDocument,
		m.TextRankIterations,
		m.ModelLoadsTotal,
		m.LoadedModels,
		m.CorpusDocuments,
		m.CorpusTerms,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SinkWritesTotal,
		m.CircuitBreakerState,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveDocument records the outcome of one extraction.
func (m *Metrics) ObserveDocument(method, lang, status string, elapsed time.Duration, keyphrases int) {
	if m == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues(method, lang, status).Inc()
	if status == "ok" {
		m.ExtractionLatency.WithLabelValues(method).Observe(elapsed.Seconds())
		m.KeyphrasesPerDocument.WithLabelValues(method).Observe(float64(keyphrases))
	}
}

func (m *Metrics) ObserveIterations(n int) {
	if m == nil {
		return
	}
	m.TextRankIterations.Observe(float64(n))
}

func (m *Metrics) ModelLoaded(method, lang string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.LoadedModels.WithLabelValues(method).Inc()
	}
	m.ModelLoadsTotal.WithLabelValues(method, lang, status).Inc()
}

func (m *Metrics) ModelEvicted(method string) {
	if m == nil {
		return
	}
	m.LoadedModels.WithLabelValues(method).Dec()
}

func (m *Metrics) SetCorpus(lang string, documents, terms int) {
	if m == nil {
		return
	}
	m.CorpusDocuments.WithLabelValues(lang).Set(float64(documents))
	m.CorpusTerms.WithLabelValues(lang).Set(float64(terms))
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) SinkWrite(sink string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SinkWritesTotal.WithLabelValues(sink, status).Inc()
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// Handler returns the scrape handler for the registry m was built with,
// falling back to the default registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
