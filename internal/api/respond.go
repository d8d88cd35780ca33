package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail interface{}) {
	writeJSON(w, status, map[string]interface{}{"detail": detail})
}

// writeError maps scoring errors onto HTTP statuses. Unknown errors are
// treated as scoring faults.
func writeError(w http.ResponseWriter, err error) {
	var verr *scoring.ValidationError
	var ierr *scoring.InternalError
	switch {
	case errors.As(err, &verr):
		writeDetail(w, http.StatusUnprocessableEntity, verr.Errors)
	case errors.Is(err, scoring.ErrModelUnavailable):
		writeDetail(w, http.StatusServiceUnavailable, "Model not loaded")
	case errors.As(err, &ierr):
		writeDetail(w, http.StatusInternalServerError, "Prediction error: "+ierr.Error())
	default:
		writeDetail(w, http.StatusInternalServerError, "Prediction error: "+err.Error())
	}
}
