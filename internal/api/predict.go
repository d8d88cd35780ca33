package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/CreditScoring/internal/hermes"
	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

const maxBodyBytes = 1 << 20

type PredictHandler struct {
	models    scoring.ModelProvider
	validator *scoring.Validator
	scorer    *scoring.Scorer
	hermes    hermes.Client
	metrics   *Metrics
	logger    *slog.Logger
}

func NewPredictHandler(models scoring.ModelProvider, scorer *scoring.Scorer, h hermes.Client, m *Metrics, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{
		models:    models,
		validator: scoring.NewValidator(),
		scorer:    scorer,
		hermes:    h,
		metrics:   m,
		logger:    logger,
	}
}

// Predict handles POST /predict. Only predictions served here are counted
// and published as audit events.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	features, result, ok := h.score(w, r)
	if !ok {
		return
	}
	h.metrics.RecordPrediction(result, time.Since(start))
	h.publish(r, features, result)
	writeJSON(w, http.StatusOK, result.Response())
}

// score runs validation, model lookup and scoring, writing the error
// response itself when any step fails.
func (h *PredictHandler) score(w http.ResponseWriter, r *http.Request) (scoring.ClientFeatures, scoring.ScoringResult, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return scoring.ClientFeatures{}, scoring.ScoringResult{}, false
		}
		writeDetail(w, http.StatusBadRequest, "Unable to read request body")
		return scoring.ClientFeatures{}, scoring.ScoringResult{}, false
	}

	features, err := h.validator.Parse(body)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			h.metrics.RecordValidationFailure(verr)
		}
		writeError(w, err)
		return scoring.ClientFeatures{}, scoring.ScoringResult{}, false
	}

	model, err := h.models.Model()
	if err != nil {
		h.metrics.ModelUnavailable.Inc()
		writeError(w, err)
		return scoring.ClientFeatures{}, scoring.ScoringResult{}, false
	}

	result, err := h.scorer.Score(model, features)
	if err != nil {
		h.metrics.ScoringErrors.Inc()
		h.logger.Error("scoring failed", "error", err, "request_id", chiMiddleware.GetReqID(r.Context()))
		writeError(w, err)
		return scoring.ClientFeatures{}, scoring.ScoringResult{}, false
	}

	return features, result, true
}

func (h *PredictHandler) publish(r *http.Request, f scoring.ClientFeatures, result scoring.ScoringResult) {
	if h.hermes == nil {
		return
	}
	event := hermes.PredictionScoredEvent{
		EventID:      uuid.NewString(),
		RequestID:    chiMiddleware.GetReqID(r.Context()),
		ModelVersion: result.ModelVersion,
		Prediction:   result.Prediction,
		Score:        result.Score,
		Perturbation: result.Perturbation,
		Age:          f.Age,
		Income:       f.Income,
		MonthsOnBook: f.MonthsOnBook,
		CreditLimit:  f.CreditLimit,
		ScoredAt:     time.Now().UTC(),
	}
	if err := h.hermes.Publish(hermes.SubjectPredictionScored(result.Prediction), event); err != nil {
		h.logger.Warn("failed to publish prediction event", "error", err, "event_id", event.EventID)
	}
}
