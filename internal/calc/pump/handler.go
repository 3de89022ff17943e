package pump

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"Pumpsizer/internal/logging"
)

// Request is the JSON body of a sizing call. Inputs is a partial record
// decoded over DefaultInput.
type Request struct {
	UnitSystem string
	Input      Input
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		UnitSystem string          `json:"unit_system"`
		Inputs     json.RawMessage `json:"inputs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.UnitSystem = raw.UnitSystem
	r.Input = DefaultInput()
	if len(raw.Inputs) == 0 || string(raw.Inputs) == "null" {
		return nil
	}
	in, err := DecodeInput(bytes.NewReader(raw.Inputs), r.Input)
	if err != nil {
		return err
	}
	r.Input = in
	return nil
}

// Size validates the request and runs one calculation.
func (r Request) Size(diag Diagnostics) (Result, error) {
	if _, err := ParseUnitSystem(r.UnitSystem); err != nil {
		return Result{}, err
	}
	if err := r.Input.Validate(); err != nil {
		return Result{}, err
	}
	return Size(r.UnitSystem, r.Input, diag)
}

type Response struct {
	Result  Result   `json:"result"`
	Summary []string `json:"summary"`
}

func NewResponse(res Result) Response {
	return Response{Result: res, Summary: slices.Collect(Summary(&res))}
}

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

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	res, err := req.Size(LogDiagnostics(h.logger(r)))
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewResponse(res)); err != nil {
		h.logger(r).Error("failed to encode sizing response", "error", err)
	}
}

func (h *Handler) Fittings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Fittings()); err != nil {
		h.logger(r).Error("failed to encode fittings", "error", err)
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrInvalidConfiguration), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
