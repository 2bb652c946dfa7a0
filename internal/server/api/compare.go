package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/report"
)

// CompareHandler compares two cached videos.
//
//	GET /api/compare?a={id}&b={id}&landmark=start|peak|end&offset={n}
//	GET /api/compare/chart.png?...
//	GET /api/compare/frames/{i}?...
type CompareHandler struct {
	analyzer *analysis.Analyzer
	landmark compare.Landmark
}

// NewCompareHandler creates a CompareHandler. landmark is used when the
// request does not name one.
func NewCompareHandler(a *analysis.Analyzer, landmark compare.Landmark) *CompareHandler {
	return &CompareHandler{analyzer: a, landmark: landmark}
}

// ServeHTTP implements the http.Handler interface.
func (h *CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/compare"), "/")
	parts := strings.Split(path, "/")

	c, ok := h.comparison(w, r)
	if !ok {
		return
	}

	switch {
	case path == "":
		writeJSON(w, http.StatusOK, c)
	case path == "chart.png":
		png, err := report.ComparisonChart(c)
		if err != nil {
			if errors.Is(err, report.ErrNoData) {
				writeError(w, http.StatusNotFound, "Nothing to compare")
				return
			}
			logger.Error("comparison chart failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to render chart")
			return
		}
		writeBinary(w, "image/png", png)
	case len(parts) == 2 && parts[0] == "frames":
		i, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid mapping index")
			return
		}
		diffs, ok := c.AnglesAt(i)
		if !ok {
			writeError(w, http.StatusNotFound, "Index outside the synchronized range")
			return
		}
		pair := c.Sync.Mapping[i]
		writeJSON(w, http.StatusOK, frameDiffResponse{
			Index:  i,
			FrameA: pair.A,
			FrameB: pair.B,
			StateA: c.A.StateAt(pair.A),
			StateB: c.B.StateAt(pair.B),
			Angles: diffs,
		})
	default:
		http.NotFound(w, r)
	}
}

type frameDiffResponse struct {
	Index  int                 `json:"index"`
	FrameA int                 `json:"frame_a"`
	FrameB int                 `json:"frame_b"`
	StateA analysis.FrameState `json:"state_a"`
	StateB analysis.FrameState `json:"state_b"`
	Angles []compare.AngleDiff `json:"angles"`
}

// comparison parses the query and runs the comparison, writing an error
// response and returning false on failure.
func (h *CompareHandler) comparison(w http.ResponseWriter, r *http.Request) (*analysis.Comparison, bool) {
	q := r.URL.Query()
	idA, idB := q.Get("a"), q.Get("b")
	if idA == "" || idB == "" {
		writeError(w, http.StatusBadRequest, "Both a and b are required")
		return nil, false
	}

	lm := h.landmark
	if s := q.Get("landmark"); s != "" {
		var err error
		if lm, err = compare.ParseLandmark(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid landmark")
			return nil, false
		}
	}

	offset := 0
	if s := q.Get("offset"); s != "" {
		var err error
		if offset, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid offset")
			return nil, false
		}
	}

	c, err := h.analyzer.CompareStored(idA, idB, lm, offset)
	if err != nil {
		writeLookupError(w, err)
		return nil, false
	}
	return c, true
}
