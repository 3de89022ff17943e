package report

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"Pumpsizer/internal/calc/pump"
	"Pumpsizer/internal/logging"
)

type Input struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
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

// Generate sizes the posted system and answers with the PDF. The body is a
// sizing request ({unit_system, inputs}) plus the report header fields.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var meta Input
	if err := json.Unmarshal(body, &meta); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	var req pump.Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	warnings := &pump.WarningList{}
	res, err := req.Size(warnings)
	if err != nil {
		http.Error(w, err.Error(), pump.StatusFor(err))
		return
	}
	for _, e := range warnings.Errors {
		h.logger(r).Warn("friction loss error", "component", "pump_report", "error", e)
	}
	units, _ := pump.ParseUnitSystem(req.UnitSystem)

	var buf bytes.Buffer
	doc := Document{
		Title:   meta.Title,
		Project: meta.Project,
		Author:  meta.Author,
		Notes:   meta.Notes,
		Units:   units,
		Input:   req.Input,
		Result:  res,
	}
	if err := Render(&buf, doc); err != nil {
		h.logger(r).Error("report generation failed", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"pump-report.pdf\"")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger(r).Error("failed to write report", "error", err)
	}
}
