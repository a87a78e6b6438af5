// Package api exposes the deconfliction core over HTTP: running checks,
// browsing the scenario catalog and run history, and rendering charts.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/corvid-data/airspace.report/internal/deconflict"
	"github.com/corvid-data/airspace.report/internal/scenarios"
	"github.com/corvid-data/airspace.report/internal/store"
	"github.com/corvid-data/airspace.report/internal/units"
	"github.com/corvid-data/airspace.report/internal/version"
	"github.com/corvid-data/airspace.report/internal/viz"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server routes HTTP requests to the deconfliction core. The store is
// optional; without it checks still run but runs are not recorded.
type Server struct {
	store *store.Store
	units string
}

// NewServer builds a server reporting separations in displayUnits.
func NewServer(st *store.Store, displayUnits string) *Server {
	if !units.IsValid(displayUnits) {
		displayUnits = units.Meters
	}
	return &Server{store: st, units: displayUnits}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/check", s.handleCheck)
	mux.HandleFunc("/api/scenarios", s.handleScenarioList)
	mux.HandleFunc("/api/scenarios/{id}", s.handleScenario)
	mux.HandleFunc("/api/scenarios/{id}/check", s.handleScenarioCheck)
	mux.HandleFunc("/api/runs", s.handleRunList)
	mux.HandleFunc("/api/runs/{id}", s.handleRun)
	mux.HandleFunc("/api/visualize/2d", s.handleVisualize2D)
	mux.HandleFunc("/api/visualize/3d", s.handleVisualize3D)
	mux.HandleFunc("/api/visualize/separation", s.handleVisualizeSeparation)
	mux.HandleFunc("/api/version", s.handleVersion)
	return mux
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// CheckRequest is the body of POST /api/check and the visualize endpoints.
type CheckRequest struct {
	Primary deconflict.Mission        `json:"primary"`
	Others  []deconflict.Mission      `json:"others"`
	Config  deconflict.CheckOverrides `json:"config"`
}

// CheckResponse is a report plus the recording and display context.
type CheckResponse struct {
	RunID     string                     `json:"run_id,omitempty"`
	Safe      bool                       `json:"safe"`
	Conflicts []deconflict.ConflictEvent `json:"conflicts"`
	Units     string                     `json:"units"`
}

// displayUnits picks the response units: an explicit ?units= wins over the
// server default. The bool result is false for an unknown unit.
func (s *Server) displayUnits(r *http.Request) (string, bool) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, true
	}
	if !units.IsValid(u) {
		return "", false
	}
	return u, true
}

// convertConflicts converts separations out of meters for display.
func convertConflicts(report *deconflict.Report, targetUnits string) []deconflict.ConflictEvent {
	out := make([]deconflict.ConflictEvent, len(report.Conflicts))
	for i, ev := range report.Conflicts {
		ev.MinSeparation = units.ConvertDistance(ev.MinSeparation, targetUnits)
		out[i] = ev
	}
	return out
}

// checkStatus maps core errors onto HTTP statuses: caller mistakes are 400s.
func checkStatus(err error) int {
	switch {
	case errors.Is(err, deconflict.ErrInvalidMission),
		errors.Is(err, deconflict.ErrDegenerateSegment),
		errors.Is(err, deconflict.ErrInvalidParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) runCheck(w http.ResponseWriter, r *http.Request, primary deconflict.Mission, others []deconflict.Mission, cfg deconflict.CheckConfig) {
	targetUnits, ok := s.displayUnits(r)
	if !ok {
		s.writeJSONError(w, http.StatusBadRequest,
			"invalid 'units' parameter, must be one of: "+units.GetValidUnitsString())
		return
	}

	report, err := deconflict.CheckMission(r.Context(), primary, others, cfg)
	if err != nil {
		s.writeJSONError(w, checkStatus(err), err.Error())
		return
	}

	resp := CheckResponse{
		Safe:      report.Safe,
		Conflicts: convertConflicts(report, targetUnits),
		Units:     targetUnits,
	}
	if s.store != nil {
		runID, err := s.store.RecordRun(primary.DroneID, len(others), cfg, report)
		if err != nil {
			// The verdict is still valid without the history row.
			log.Printf("failed to record run: %v", err)
		} else {
			resp.RunID = runID
		}
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	s.runCheck(w, r, req.Primary, req.Others, req.Config.Apply(deconflict.DefaultCheckConfig()))
}

func (s *Server) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, scenarios.List())
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sc, ok := scenarios.Get(r.PathValue("id"))
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "scenario not found")
		return
	}
	s.writeJSON(w, sc)
}

func (s *Server) handleScenarioCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sc, ok := scenarios.Get(r.PathValue("id"))
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "scenario not found")
		return
	}
	s.runCheck(w, r, sc.Primary, sc.Others, sc.Config)
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "run history is not enabled")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "run history is not enabled")
		return
	}
	run, err := s.store.GetRun(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, run)
}

// decodeVisualizeRequest parses the shared body of the visualize endpoints
// and runs the check so conflict markers reflect the supplied config.
func (s *Server) decodeVisualizeRequest(w http.ResponseWriter, r *http.Request) (CheckRequest, deconflict.CheckConfig, *deconflict.Report, bool) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return CheckRequest{}, deconflict.CheckConfig{}, nil, false
	}
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return CheckRequest{}, deconflict.CheckConfig{}, nil, false
	}
	cfg := req.Config.Apply(deconflict.DefaultCheckConfig())
	report, err := deconflict.CheckMission(r.Context(), req.Primary, req.Others, cfg)
	if err != nil {
		s.writeJSONError(w, checkStatus(err), err.Error())
		return CheckRequest{}, deconflict.CheckConfig{}, nil, false
	}
	return req, cfg, report, true
}

func (s *Server) handleVisualize2D(w http.ResponseWriter, r *http.Request) {
	req, _, report, ok := s.decodeVisualizeRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viz.RenderChart2D(w, req.Primary, req.Others, report); err != nil {
		log.Printf("failed to render 2d chart: %v", err)
	}
}

func (s *Server) handleVisualize3D(w http.ResponseWriter, r *http.Request) {
	req, _, report, ok := s.decodeVisualizeRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viz.RenderChart3D(w, req.Primary, req.Others, report); err != nil {
		log.Printf("failed to render 3d chart: %v", err)
	}
}

func (s *Server) handleVisualizeSeparation(w http.ResponseWriter, r *http.Request) {
	req, cfg, _, ok := s.decodeVisualizeRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := viz.RenderSeparationPNG(w, req.Primary, req.Others, cfg); err != nil {
		log.Printf("failed to render separation plot: %v", err)
	}
}
