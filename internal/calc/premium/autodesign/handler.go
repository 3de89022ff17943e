package autodesign

import (
	"encoding/json"
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

func (h *Handler) Pipe(w http.ResponseWriter, r *http.Request) {
	var input PipeInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	for tag := range input.Fittings {
		if _, ok := pump.EquivalentLength(tag); !ok {
			http.Error(w, "unknown fitting type "+tag, http.StatusBadRequest)
			return
		}
	}
	res, err := Pipe(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger(r).Debug("pipe selected", "component", "pump_autodesign", "id", res.ID, "tried", res.Tried)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger(r).Error("failed to encode pipe response", "error", err)
	}
}
