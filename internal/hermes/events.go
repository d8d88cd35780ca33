package hermes

import "time"

// PredictionScoredEvent is the audit record of one successful prediction.
type PredictionScoredEvent struct {
	EventID      string    `json:"event_id"`
	RequestID    string    `json:"request_id,omitempty"`
	ModelVersion string    `json:"model_version"`
	Prediction   string    `json:"prediction"`
	Score        float64   `json:"score"`
	Perturbation float64   `json:"perturbation"`
	Age          int       `json:"age"`
	Income       float64   `json:"income"`
	MonthsOnBook int       `json:"months_on_book"`
	CreditLimit  float64   `json:"credit_limit"`
	ScoredAt     time.Time `json:"scored_at"`
}
