package importer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Pumpsizer/internal/logging"
)

const maxUpload = 10 << 20

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

// Pump takes a multipart form with the workbook in "file" and the unit
// system in "unit_system". With format=xlsx the answer is a results
// workbook instead of JSON.
func (h *Handler) Pump(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	out, err := Import(file, r.FormValue("unit_system"))
	if err != nil {
		h.logger(r).Warn("import failed", "component", "pump_import", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger(r).Info("import sized", "component", "pump_import", "rows", out.Count, "skipped", len(out.Skipped))

	if r.FormValue("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=\"pump-results.xlsx\"")
		if err := WriteResults(w, out); err != nil {
			h.logger(r).Error("failed to write results workbook", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger(r).Error("failed to encode import response", "error", err)
	}
}
