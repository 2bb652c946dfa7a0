package compare

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// DTWDistance calculates the Dynamic Time Warping distance between two series.
// Returns infinity if either series is empty.
// The distance is normalized by the longer series length.
func DTWDistance(s1, s2 []float64) float64 {
	n := len(s1)
	m := len(s2)

	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	// (n+1) x (m+1) cost matrix initialized to infinity
	dtw := make([][]float64, n+1)
	for i := range dtw {
		dtw[i] = make([]float64, m+1)
		for j := range dtw[i] {
			dtw[i][j] = math.Inf(1)
		}
	}
	dtw[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := math.Abs(s1[i-1] - s2[j-1])
			dtw[i][j] = cost + min(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
		}
	}

	return dtw[n][m] / float64(max(n, m))
}

// ShapeDistance is the per-angle DTW distance between the two videos over the
// mapped frames. Frames where an angle is undefined are skipped on that side,
// so the series may differ in length. Angles missing entirely on a side are omitted.
func ShapeDistance(a, b kinematics.AngleSeries, m Mapping) map[string]float64 {
	seqA := make(map[string][]float64)
	seqB := make(map[string][]float64)
	for _, p := range m {
		for name, v := range a[p.A] {
			seqA[name] = append(seqA[name], v)
		}
		for name, v := range b[p.B] {
			seqB[name] = append(seqB[name], v)
		}
	}

	out := make(map[string]float64)
	for name, sa := range seqA {
		if sb, ok := seqB[name]; ok {
			out[name] = DTWDistance(sa, sb)
		}
	}
	return out
}
