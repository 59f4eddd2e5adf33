// comply/cmd/complyd/server.go

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rgehrsitz/comply/pkg/engine"
	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/report"
	"rgehrsitz/comply/pkg/store"
)

const maxUploadBytes = 10 << 20

// Server wires the evaluation engine to its HTTP collaborators. All rule
// evaluation happens inside the handlers; I/O (reading the upload, writing
// the report file) happens strictly before and after.
type Server struct {
	deps       *Dependencies
	reportsDir string
	hub        *Hub
}

func NewServer(deps *Dependencies, reportsDir string, hub *Hub) *Server {
	return &Server{deps: deps, reportsDir: reportsDir, hub: hub}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/upload-file", s.handleUploadFile)
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/score", s.handleScore)
	mux.HandleFunc("/events", s.hub.HandleWebSocket)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "Server is running")
}

type checklistPayload struct {
	AssetID string         `json:"asset_id"`
	Checks  []engine.Check `json:"checks"`
}

// handleUploadFile scores an uploaded checklist against the expression-form
// ruleset. Malformed JSON rejects the whole request; per-rule failures do
// not.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.ExprRules == nil {
		http.Error(w, "no expression ruleset configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	// A pointer target keeps a JSON null distinguishable from an empty
	// checklist; null is malformed input, not a zero-check upload.
	var payload *checklistPayload
	if err := json.Unmarshal(contents, &payload); err != nil || payload == nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result := engine.EvaluateChecklist(s.deps.ExprRules.Rules, payload.Checks)
	checklistReport := report.BuildChecklist(payload.AssetID, result)

	if _, err := report.WriteJSON(s.reportsDir, checklistReport.ReportID, checklistReport); err != nil {
		logging.Logger.Error().Err(err).Msg("Failed to persist checklist report")
		http.Error(w, "failed to persist report", http.StatusInternalServerError)
		return
	}

	s.hub.Update(store.Summary{
		ReportID:   checklistReport.ReportID,
		Asset:      checklistReport.Asset,
		OverallPct: float64(checklistReport.Score),
		Timestamp:  checklistReport.Timestamp,
	})
	writeJSONResponse(w, http.StatusOK, checklistReport)
}

type evaluatePayload struct {
	AssetID string          `json:"asset_id"`
	Config  json.RawMessage `json:"config"`
}

// handleEvaluate runs the structured ruleset against a configuration
// snapshot supplied in one shot.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var payload evaluatePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// The document must be a mapping; anything else is rejected here rather
	// than partially evaluated. A JSON null unmarshals into a nil map, which
	// would otherwise score every rule as WARNING.
	var doc map[string]interface{}
	if err := json.Unmarshal(payload.Config, &doc); err != nil || doc == nil {
		http.Error(w, "config must be a JSON object", http.StatusBadRequest)
		return
	}

	results := engine.EvaluateDocument(s.deps.Rules.Rules, doc)
	evalReport := report.Build(payload.AssetID, results)

	if _, err := report.WriteJSON(s.reportsDir, evalReport.ReportID, evalReport); err != nil {
		logging.Logger.Error().Err(err).Msg("Failed to persist report")
		http.Error(w, "failed to persist report", http.StatusInternalServerError)
		return
	}

	if err := s.deps.Publisher.PublishReport(r.Context(), evalReport); err != nil {
		// Publishing is best-effort; the report already persisted.
		logging.Logger.Error().Err(err).Str("asset", evalReport.Asset).Msg("Failed to publish report summary")
	}

	s.hub.Update(store.Summary{
		ReportID:   evalReport.ReportID,
		Asset:      evalReport.Asset,
		OverallPct: evalReport.OverallPct,
		Timestamp:  evalReport.Timestamp,
	})
	writeJSONResponse(w, http.StatusOK, evalReport)
}

type scoreResponse struct {
	Asset      string  `json:"asset"`
	OverallPct float64 `json:"overall_pct"`
}

// handleScore serves the last published overall score for an asset.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	asset := r.URL.Query().Get("asset")
	if asset == "" {
		http.Error(w, "missing asset parameter", http.StatusBadRequest)
		return
	}

	score, found, err := s.deps.Publisher.LatestScore(r.Context(), asset)
	if err != nil {
		logging.Logger.Error().Err(err).Str("asset", asset).Msg("Failed to look up latest score")
		http.Error(w, "failed to look up score", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "no score for asset", http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, scoreResponse{Asset: asset, OverallPct: score})
}

func writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}
