// Package metrics exposes Prometheus metrics for the generation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all pipeline metrics.
	Namespace = "seoblog"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	BlogsGeneratedTotal      *prometheus.CounterVec
	GenerationSeconds        prometheus.Histogram
	TokensUsedTotal          prometheus.Counter
	PublishAttemptsTotal     *prometheus.CounterVec
	KeywordsUploadedTotal    prometheus.Counter
	StaleKeywordsResetsTotal prometheus.Counter
	BlogsInFlight            prometheus.Gauge
}

// New creates and registers all pipeline metrics. A nil registerer uses
// the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BlogsGeneratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "blogs_generated_total",
				Help:      "Blog generation attempts by outcome",
			},
			[]string{"status"},
		),
		GenerationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "generation_duration_seconds",
				Help:      "End-to-end duration of one blog generation",
				Buckets:   []float64{5, 15, 30, 60, 120, 180, 300},
			},
		),
		TokensUsedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "llm_tokens_used_total",
				Help:      "Total tokens reported by the content generation API",
			},
		),
		PublishAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "publish_attempts_total",
				Help:      "Shopify publish attempts by outcome",
			},
			[]string{"status"},
		),
		KeywordsUploadedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "keywords_uploaded_total",
				Help:      "Keywords accepted from uploads",
			},
		),
		StaleKeywordsResetsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "stale_keywords_reset_total",
				Help:      "Keywords recovered from a stuck processing state",
			},
		),
		BlogsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "blogs_in_flight",
				Help:      "Generation units of work currently running",
			},
		),
	}
}
