package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/CreditScoring/internal/hermes"
	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

// RouterOptions configures the edge behaviour of the public router.
type RouterOptions struct {
	// RequestsPerMinute limits POST requests per client address. Zero or
	// less disables limiting.
	RequestsPerMinute int
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// X-Real-IP before the limiter sees it.
	TrustProxyHeaders bool
}

func NewRouter(models scoring.ModelProvider, scorer *scoring.Scorer, h hermes.Client, m *Metrics, opts RouterOptions, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	predict := NewPredictHandler(models, scorer, h, m, logger)

	r.Get("/", root)
	r.Get("/health", health)
	r.Get("/docs", docs)
	r.Get("/model", predict.Model)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(opts.RequestsPerMinute))
		r.Post("/predict", predict.Predict)
		r.Post("/predict/explain", predict.Explain)
	})

	return r
}

// NewMetricsRouter serves Prometheus metrics plus liveness and readiness
// probes on the internal port.
func NewMetricsRouter(g prometheus.Gatherer, models scoring.ModelProvider) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", health)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := models.Model(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "model not loaded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
