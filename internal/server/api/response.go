// Package api provides HTTP API handlers for the baseball video analyzer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Warn("failed to encode response: %v", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeLookupError maps a failed video lookup to a response.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Video not found")
	case errors.Is(err, analysis.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, "No video cache configured")
	default:
		logger.Error("video lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load video")
	}
}

// writeBinary writes a non-JSON payload such as an image or document.
func writeBinary(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
