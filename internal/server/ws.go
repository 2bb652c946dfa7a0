package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	defaultPlaybackFPS = 30
	maxPlaybackSpeed   = 16
	minTickInterval    = time.Millisecond
)

// PlaybackHandler streams the per-frame state of an analyzed video over a
// WebSocket at the video's frame rate.
//
//	GET /api/playback?video={id}&speed={factor}
//
// speed must lie in (0, 16].
//
// Clients steer playback with {"action": "pause"|"play"|"seek", "frame": n}.
type PlaybackHandler struct {
	analyzer *analysis.Analyzer
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewPlaybackHandler creates a new PlaybackHandler.
func NewPlaybackHandler(a *analysis.Analyzer) *PlaybackHandler {
	return &PlaybackHandler{
		analyzer: a,
		clients:  make(map[*websocket.Conn]bool),
	}
}

type playbackControl struct {
	Action string `json:"action"`
	Frame  int    `json:"frame"`
}

type playbackMessage struct {
	analysis.FrameState
	TotalFrames int  `json:"total_frames"`
	Playing     bool `json:"playing"`
}

// Clients returns the number of connected clients.
func (h *PlaybackHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP analyzes the requested video and upgrades to a WebSocket.
func (h *PlaybackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("video")
	if id == "" {
		http.Error(w, "video is required", http.StatusBadRequest)
		return
	}
	speed := 1.0
	if s := r.URL.Query().Get("speed"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !(v > 0 && v <= maxPlaybackSpeed) {
			http.Error(w, "invalid speed", http.StatusBadRequest)
			return
		}
		speed = v
	}

	result, err := h.analyzer.AnalyzeStored(id)
	if err != nil {
		http.Error(w, "video not available", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	controls := make(chan playbackControl)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var c playbackControl
			if err := conn.ReadJSON(&c); err != nil {
				return
			}
			select {
			case controls <- c:
			case <-r.Context().Done():
				return
			}
		}
	}()

	h.play(conn, result, speed, controls, done)
}

// play drives one connection until the client goes away.
func (h *PlaybackHandler) play(conn *websocket.Conn, result *analysis.Result, speed float64, controls <-chan playbackControl, done <-chan struct{}) {
	fps := result.FPS
	if fps <= 0 {
		fps = defaultPlaybackFPS
	}
	interval := max(time.Duration(float64(time.Second)/(fps*speed)), minTickInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	total := result.TotalFrames
	frame, playing := 0, true

	send := func(f int) bool {
		msg := playbackMessage{FrameState: result.StateAt(f), TotalFrames: total, Playing: playing}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("playback write failed: %v", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-done:
			return

		case c := <-controls:
			switch c.Action {
			case "pause":
				playing = false
			case "play":
				playing = true
				if frame >= total {
					frame = 0
				}
			case "seek":
				frame = min(max(c.Frame, 0), max(total-1, 0))
				if !send(frame) {
					return
				}
				frame++
			}

		case <-ticker.C:
			if !playing {
				continue
			}
			if frame >= total {
				playing = false
				continue
			}
			if !send(frame) {
				return
			}
			frame++
		}
	}
}
