package batch

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Pumpsizer/internal/calc/pump"
	"Pumpsizer/internal/logging"
)

type Handler struct {
	Logger *slog.Logger
}

// logger prefers the handler's own logger, then the request logger.
func (h *Handler) logger(r *http.Request) *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return logging.FromContext(r.Context())
}

func (h *Handler) Pump(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		status := pump.StatusFor(err)
		if errors.Is(err, ErrNoItems) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	unsatisfiable := 0
	for _, item := range res.Results {
		if item.Result.Unsatisfiable {
			unsatisfiable++
		}
	}
	h.logger(r).Info("batch sized", "component", "pump_batch", "items", len(res.Results), "unsatisfiable", unsatisfiable)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger(r).Error("failed to encode batch response", "error", err)
	}
}
