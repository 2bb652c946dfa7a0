package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/report"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/store"
)

// VideoHandler handles HTTP requests for cached videos and their analyses.
type VideoHandler struct {
	analyzer *analysis.Analyzer
}

// NewVideoHandler creates a new VideoHandler backed by a's store.
func NewVideoHandler(a *analysis.Analyzer) *VideoHandler {
	return &VideoHandler{analyzer: a}
}

// ServeHTTP routes requests to appropriate methods.
// Expected paths:
//
//	/api/videos
//	/api/videos/{id}
//	/api/videos/{id}/analysis
//	/api/videos/{id}/frames/{n}
//	/api/videos/{id}/chart.png
//	/api/videos/{id}/report.pdf
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/videos")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "analysis":
		h.analyze(w, r, id)
	case len(parts) == 3 && parts[1] == "frames":
		h.frame(w, r, id, parts[2])
	case len(parts) == 2 && parts[1] == "chart.png":
		h.chart(w, r, id)
	case len(parts) == 2 && parts[1] == "report.pdf":
		h.reportPDF(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type createVideoRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Arm  string `json:"arm"`
}

type updateVideoRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Arm  string `json:"arm"`
}

type listVideosResponse struct {
	Videos []*store.Video `json:"videos"`
}

// parseArm defaults an empty arm to the right arm.
func parseArm(s string) (kinematics.Arm, error) {
	if s == "" {
		return kinematics.RightArm, nil
	}
	return kinematics.ParseArm(s)
}

// list handles GET /api/videos and returns all cached videos.
func (h *VideoHandler) list(w http.ResponseWriter, r *http.Request) {
	s := h.analyzer.Store()
	if s == nil {
		writeLookupError(w, analysis.ErrNoStore)
		return
	}
	videos, err := s.Videos().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}
	if videos == nil {
		videos = []*store.Video{}
	}
	writeJSON(w, http.StatusOK, listVideosResponse{Videos: videos})
}

// get handles GET /api/videos/{id}.
func (h *VideoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s := h.analyzer.Store()
	if s == nil {
		writeLookupError(w, analysis.ErrNoStore)
		return
	}
	v, err := s.Videos().GetByID(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// create handles POST /api/videos. It runs pose detection over the whole
// file before responding.
func (h *VideoHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}
	kind, err := analysis.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind")
		return
	}
	arm, err := parseArm(req.Arm)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid arm")
		return
	}

	v, err := h.analyzer.Register(r.Context(), req.Path, req.Name, kind, arm, nil)
	if err != nil {
		if errors.Is(err, analysis.ErrNoStore) {
			writeLookupError(w, err)
			return
		}
		logger.Error("failed to register %s: %v", req.Path, err)
		writeError(w, http.StatusUnprocessableEntity, "Failed to process video")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// update handles PUT /api/videos/{id}. Only name, kind and arm can change.
func (h *VideoHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	s := h.analyzer.Store()
	if s == nil {
		writeLookupError(w, analysis.ErrNoStore)
		return
	}
	v, err := s.Videos().GetByID(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name != "" {
		v.Name = req.Name
	}
	if req.Kind != "" {
		kind, err := analysis.ParseKind(req.Kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid kind")
			return
		}
		v.Kind = store.Kind(kind)
	}
	if req.Arm != "" {
		arm, err := kinematics.ParseArm(req.Arm)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid arm")
			return
		}
		v.Arm = arm.String()
	}

	if err := s.Videos().Update(v); err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// delete handles DELETE /api/videos/{id} and drops its cached frames.
func (h *VideoHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	s := h.analyzer.Store()
	if s == nil {
		writeLookupError(w, analysis.ErrNoStore)
		return
	}
	if err := s.Videos().Delete(id); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// analyze handles GET /api/videos/{id}/analysis.
func (h *VideoHandler) analyze(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// frame handles GET /api/videos/{id}/frames/{n}.
func (h *VideoHandler) frame(w http.ResponseWriter, r *http.Request, id, n string) {
	f, err := strconv.Atoi(n)
	if err != nil || f < 0 {
		writeError(w, http.StatusBadRequest, "Invalid frame number")
		return
	}
	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.StateAt(f))
}

// chart handles GET /api/videos/{id}/chart.png.
func (h *VideoHandler) chart(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	png, err := report.SpeedChart(result)
	if err != nil {
		if errors.Is(err, report.ErrNoData) {
			writeError(w, http.StatusNotFound, "No speed data for this video")
			return
		}
		logger.Error("chart for %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}
	writeBinary(w, "image/png", png)
}

// reportPDF handles GET /api/videos/{id}/report.pdf.
func (h *VideoHandler) reportPDF(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	png, err := report.SpeedChart(result)
	if err != nil && !errors.Is(err, report.ErrNoData) {
		logger.Warn("chart for %s failed, report without chart: %v", id, err)
	}

	var buf bytes.Buffer
	if err := report.EvaluationPDF(&buf, result, png); err != nil {
		logger.Error("report for %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+id+`.pdf"`)
	writeBinary(w, "application/pdf", buf.Bytes())
}
