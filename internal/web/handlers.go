package web

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/WalissonCM/Validacao-de-Dados/internal/core"
	"github.com/WalissonCM/Validacao-de-Dados/internal/logging"
)

// validateResponse is the body of a successful POST /api/validate.
// It carries the run summary plus the full report text so callers in
// non-persistent deployments still get the complete artifact.
type validateResponse struct {
	*core.RunSummary
	Report string `json:"report"`
}

// handleValidate accepts a CSV file upload, validates every row, and
// returns the run summary. Row-level defects never fail the request;
// only unreadable files, missing columns, and persistence failures do.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return
	}

	summary, err := s.service.ValidateFile(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	logging.FromContext(r.Context()).Info("validation run complete",
		"file", summary.FileName,
		"run_id", summary.RunID,
		"total", summary.Total,
		"valid", summary.Valid,
		"invalid", summary.Invalid,
	)

	writeJSON(w, r, validateResponse{RunSummary: summary, Report: summary.Report})
}

// handleListRuns returns the most recent validation runs.
// Accepts an optional ?limit= query parameter.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Upload.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, r, fmt.Errorf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.service.Runs(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}

	writeJSON(w, r, map[string]interface{}{"runs": runs})
}

// handleGetRun returns one validation run by ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	writeJSON(w, r, run)
}

// handleRunReport returns the stored plain-text error report of a run.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", core.ReportFileName(run.CreatedAt)))
	io.WriteString(w, run.Report)
}

// handleRunValidCSV returns the accepted customers of a run as a CSV
// download, in input row order.
func (s *Server) handleRunValidCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	customers, err := s.service.RunCustomers(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	valid := make([]core.ValidRecord, len(customers))
	for i, c := range customers {
		valid[i] = core.ValidRecord{Row: i + 1, Customer: c}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="valid_customers.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(core.CustomerCSV(valid)); err != nil {
		logging.FromContext(r.Context()).Error("write csv", "error", err)
	}
}

// handleHealth reports service health, including database reachability
// when persistence is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "ok",
		"persistence": s.service.Persistent(),
	}

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, r, status)
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, r, status)
}

// runID extracts and parses the runID URL parameter. On failure it
// writes the error response and returns ok=false.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "runID")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid run id %q: %w", raw, err), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "no database configured"):
		return http.StatusServiceUnavailable
	case strings.Contains(msg, "persist run"):
		return http.StatusInternalServerError
	default:
		// Fatal ingest errors (empty file, bad CSV, missing columns)
		// are the caller's fault.
		return http.StatusBadRequest
	}
}
