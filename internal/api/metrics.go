package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

// Metrics holds the Prometheus collectors for the scoring API.
type Metrics struct {
	Predictions        *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	ModelUnavailable   prometheus.Counter
	ScoringErrors      prometheus.Counter
	Scores             prometheus.Histogram
	Latency            prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditscoring_predictions_total",
				Help: "Total number of successful predictions by risk label.",
			},
			[]string{"prediction", "model_version"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditscoring_validation_failures_total",
				Help: "Total number of rejected field constraints by field and error type.",
			},
			[]string{"field", "type"},
		),
		ModelUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditscoring_model_unavailable_total",
			Help: "Requests rejected because no model was loaded.",
		}),
		ScoringErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditscoring_scoring_errors_total",
			Help: "Unexpected failures inside the scorer.",
		}),
		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditscoring_score",
			Help:    "Distribution of returned scores.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditscoring_prediction_duration_seconds",
			Help:    "Time spent validating and scoring a request.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordPrediction(result scoring.ScoringResult, duration time.Duration) {
	m.Predictions.WithLabelValues(result.Prediction, result.ModelVersion).Inc()
	m.Scores.Observe(result.Score)
	m.Latency.Observe(duration.Seconds())
}

func (m *Metrics) RecordValidationFailure(err *scoring.ValidationError) {
	for _, fe := range err.Errors {
		field := fe.Field()
		if field == "" {
			field = "body"
		}
		m.ValidationFailures.WithLabelValues(field, fe.Type).Inc()
	}
}
