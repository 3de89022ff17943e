package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
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

// Motor accepts either a required power or a full sizing request under
// "inputs", in which case the system is sized first.
func (h *Handler) Motor(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var input struct {
		MotorInput
		Inputs json.RawMessage `json:"inputs"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Inputs) > 0 {
		var req pump.Request
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := req.Size(pump.LogDiagnostics(h.logger(r)))
		if err != nil {
			http.Error(w, err.Error(), pump.StatusFor(err))
			return
		}
		input.RequiredPower = res.RequiredPower
	}

	res, err := Motor(input.MotorInput)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUnsatisfiable) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger(r).Error("failed to encode motor response", "error", err)
	}
}
