package scoring

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
)

// Risk labels.
const (
	LowRisk  = "low_risk"
	HighRisk = "high_risk"
)

const (
	baseScore         = 0.5
	perturbationBound = 0.1
	minScore          = 0.1
	maxScore          = 0.99
	lowRiskThreshold  = 0.7
	scorePlaces       = 4
)

// PredictionResponse is the public result of scoring one applicant.
type PredictionResponse struct {
	Prediction   string  `json:"prediction"`
	Score        float64 `json:"score"`
	ModelVersion string  `json:"model_version"`
}

// ScoringResult is the full breakdown behind a PredictionResponse.
type ScoringResult struct {
	Base         float64        `json:"base"`
	Factors      []FactorResult `json:"factors"`
	Perturbation float64        `json:"perturbation"`
	Raw          float64        `json:"raw"`
	Clamped      float64        `json:"clamped"`
	Score        float64        `json:"score"`
	Prediction   string         `json:"prediction"`
	ModelVersion string         `json:"model_version"`
}

func (r ScoringResult) Response() PredictionResponse {
	return PredictionResponse{
		Prediction:   r.Prediction,
		Score:        r.Score,
		ModelVersion: r.ModelVersion,
	}
}

// InternalError reports a fault inside the scoring computation itself.
// Valid features never produce one.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// Scorer applies the additive heuristic plus one bounded random
// perturbation. Output is intentionally non-deterministic unless a seeded
// RandomSource is injected.
type Scorer struct {
	rng    RandomSource
	logger *slog.Logger
}

// NewScorer creates a Scorer. A nil rng falls back to DefaultSource.
func NewScorer(rng RandomSource, logger *slog.Logger) *Scorer {
	if rng == nil {
		rng = DefaultSource()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{rng: rng, logger: logger}
}

// Score computes the breakdown for validated features.
func (s *Scorer) Score(model *ScoringModel, f ClientFeatures) (ScoringResult, error) {
	if model == nil {
		return ScoringResult{}, &InternalError{Err: errors.New("scoring model is nil")}
	}

	factors := []FactorResult{
		AgeFactor(f),
		IncomeFactor(f),
		TenureFactor(f),
		CreditLimitFactor(f),
	}

	total := baseScore
	for _, fr := range factors {
		total += fr.Contribution
	}

	perturbation := s.perturbation()
	raw := total + perturbation
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return ScoringResult{}, &InternalError{Err: fmt.Errorf("non-finite score %v", raw)}
	}
	clamped := clamp(raw, minScore, maxScore)
	score := roundScore(clamped)

	result := ScoringResult{
		Base:         baseScore,
		Factors:      factors,
		Perturbation: perturbation,
		Raw:          raw,
		Clamped:      clamped,
		Score:        score,
		Prediction:   classify(score),
		ModelVersion: model.Version(),
	}

	s.logger.Debug("scored applicant",
		"score", result.Score,
		"prediction", result.Prediction,
		"perturbation", perturbation,
	)
	return result, nil
}

// Predict scores features and returns only the public response.
func (s *Scorer) Predict(model *ScoringModel, f ClientFeatures) (PredictionResponse, error) {
	result, err := s.Score(model, f)
	if err != nil {
		return PredictionResponse{}, err
	}
	return result.Response(), nil
}

// perturbation maps a [0,1) draw onto [-0.1, 0.1). The upper bound is
// excluded because RandomSource never returns 1.
func (s *Scorer) perturbation() float64 {
	return -perturbationBound + 2*perturbationBound*s.rng.Float64()
}

// roundScore rounds half to even at four decimal places.
func roundScore(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).RoundBank(scorePlaces).Float64()
	return out
}

// classify is exclusive at the threshold: exactly 0.7 is high risk.
func classify(score float64) string {
	if score > lowRiskThreshold {
		return LowRisk
	}
	return HighRisk
}
