package api

import "net/http"

// Explain returns the factor breakdown behind a prediction. It goes through
// the same validation and model gating as Predict and draws its own
// perturbation, so the score is not the one a previous Predict call returned.
// Explanations are not counted as predictions and emit no audit event.
// POST /predict/explain
func (h *PredictHandler) Explain(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.score(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Model describes the loaded scoring model.
// GET /model
func (h *PredictHandler) Model(w http.ResponseWriter, r *http.Request) {
	model, err := h.models.Model()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":   model.Version(),
		"loaded_at": model.LoadedAt(),
	})
}
