package server

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/capture"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
)

// StreamHandler serves a cached video as MJPEG with the current phase and
// frame number drawn on each frame.
//
//	GET /api/stream?video={id}
type StreamHandler struct {
	analyzer *analysis.Analyzer
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(a *analysis.Analyzer) *StreamHandler {
	return &StreamHandler{analyzer: a}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("video")
	if id == "" {
		http.Error(w, "video is required", http.StatusBadRequest)
		return
	}

	store := h.analyzer.Store()
	if store == nil {
		http.Error(w, "no video cache configured", http.StatusServiceUnavailable)
		return
	}
	v, err := store.Videos().GetByID(id)
	if err != nil {
		http.Error(w, "video not found", http.StatusNotFound)
		return
	}
	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		http.Error(w, "video not available", http.StatusNotFound)
		return
	}

	video := h.analyzer.OpenVideo(v.Path)
	if err := video.Open(); err != nil {
		logger.Warn("stream %s: %v", id, err)
		http.Error(w, "video file not readable", http.StatusNotFound)
		return
	}
	defer video.Close()

	fps := v.FPS
	if fps <= 0 {
		fps = defaultPlaybackFPS
	}
	delay := time.Duration(float64(time.Second) / fps)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for f := 0; ; f++ {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := video.ReadFrame()
		if errors.Is(err, capture.ErrEndOfVideo) {
			return
		}
		if err != nil {
			logger.Warn("stream %s frame %d: %v", id, f, err)
			return
		}

		annotate(frame, result.StateAt(f))

		// Encode as JPEG
		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}

		time.Sleep(delay)
	}
}

// annotate draws the frame number and phase name in the top-left corner.
func annotate(frame *gocv.Mat, s analysis.FrameState) {
	label := fmt.Sprintf("#%d", s.Frame)
	if s.PhaseName != "" {
		label += " " + s.PhaseName
	}
	c := parseHexColor(s.PhaseColor)
	gocv.PutText(frame, label, image.Pt(12, 32), gocv.FontHersheySimplex, 0.9, c, 2)
}

// parseHexColor parses #RRGGBB, falling back to white.
func parseHexColor(s string) color.RGBA {
	c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}
