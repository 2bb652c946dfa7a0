package compare

import (
	"math"
	"reflect"
	"testing"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/evaluate"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		name           string
		totalA, totalB int
		syncA, syncB   int
		wantLen        int
		wantFirst      Pair
	}{
		{"A anchor later", 10, 8, 5, 3, 8, Pair{2, 0}},
		{"B anchor later", 10, 10, 3, 7, 6, Pair{0, 4}},
		{"identity", 5, 5, 0, 0, 5, Pair{0, 0}},
		{"B shorter", 5, 3, 0, 0, 3, Pair{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Align(tt.totalA, tt.totalB, tt.syncA, tt.syncB)
			if len(m) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(m), tt.wantLen)
			}
			if m[0] != tt.wantFirst {
				t.Errorf("first = %+v, want %+v", m[0], tt.wantFirst)
			}
		})
	}
}

func TestAlign_AnchorOutsideVideo(t *testing.T) {
	if m := Align(5, 5, 9, 0); len(m) != 0 {
		t.Errorf("expected empty mapping, got %d pairs", len(m))
	}
}

func TestAlign_Invariants(t *testing.T) {
	for _, totals := range [][2]int{{30, 30}, {30, 12}, {7, 40}} {
		for syncA := 0; syncA < 20; syncA += 3 {
			for syncB := -5; syncB < 20; syncB += 4 {
				m := Align(totals[0], totals[1], syncA, syncB)
				if len(m) > min(totals[0], totals[1]) {
					t.Fatalf("Align(%v, %d, %d) length %d exceeds shorter video", totals, syncA, syncB, len(m))
				}
				for i := 1; i < len(m); i++ {
					if m[i].A <= m[i-1].A || m[i].B <= m[i-1].B {
						t.Fatalf("Align(%v, %d, %d) not strictly increasing at %d", totals, syncA, syncB, i)
					}
				}
				for _, p := range m {
					if p.A-p.B != syncA-syncB {
						t.Fatalf("pair %+v breaks anchor alignment %d/%d", p, syncA, syncB)
					}
				}
			}
		}
	}
}

func TestSynchronize(t *testing.T) {
	a := Track{
		TotalFrames: 100,
		Intervals: []motion.Interval{
			{Start: 10, End: 20, Peak: 15, PeakSpeed: 2},
			{Start: 30, End: 40, Peak: 35, PeakSpeed: 3},
		},
	}
	b := Track{
		TotalFrames: 60,
		Intervals:   []motion.Interval{{Start: 5, End: 12, Peak: 8, PeakSpeed: 1}},
	}

	t.Run("peak", func(t *testing.T) {
		s := Synchronize(a, b, LandmarkPeak, 0)
		if s.Fallback || s.AnchorA != 35 || s.AnchorB != 8 {
			t.Fatalf("got %+v", s)
		}
		if len(s.Mapping) != 60 {
			t.Errorf("len = %d, want 60", len(s.Mapping))
		}
		if s.Mapping[8] != (Pair{35, 8}) {
			t.Errorf("mapping[8] = %+v, want {35 8}", s.Mapping[8])
		}
	})

	t.Run("start with offset", func(t *testing.T) {
		s := Synchronize(a, b, LandmarkStart, 2)
		// anchors 30 and 5+2
		if s.Mapping[7] != (Pair{30, 7}) {
			t.Errorf("mapping[7] = %+v, want {30 7}", s.Mapping[7])
		}
	})

	t.Run("end", func(t *testing.T) {
		s := Synchronize(a, b, LandmarkEnd, 0)
		if s.AnchorA != 40 || s.AnchorB != 12 {
			t.Errorf("anchors = %d/%d, want 40/12", s.AnchorA, s.AnchorB)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		s := Synchronize(a, Track{TotalFrames: 60}, LandmarkPeak, 0)
		if !s.Fallback {
			t.Error("expected fallback")
		}
		if len(s.Mapping) != 60 {
			t.Fatalf("len = %d, want 60", len(s.Mapping))
		}
		for i, p := range s.Mapping {
			if p.A != i || p.B != i {
				t.Fatalf("mapping[%d] = %+v, want identity", i, p)
			}
		}
	})
}

func TestParseLandmark(t *testing.T) {
	tests := []struct {
		in      string
		want    Landmark
		wantErr bool
	}{
		{"start", LandmarkStart, false},
		{"", LandmarkStart, false},
		{"impact", LandmarkPeak, false},
		{"release", LandmarkPeak, false},
		{"END", LandmarkEnd, false},
		{"middle", LandmarkStart, true},
	}
	for _, tt := range tests {
		got, err := ParseLandmark(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLandmark(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLandmark(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifyDiff(t *testing.T) {
	tests := []struct {
		diff float64
		want DiffStatus
	}{
		{0, Same},
		{4.9, Same},
		{-4.9, Same},
		{5, Minor},
		{14.9, Minor},
		{15, Major},
		{-20, Major},
	}
	for _, tt := range tests {
		if got := ClassifyDiff(tt.diff); got != tt.want {
			t.Errorf("ClassifyDiff(%v) = %s, want %s", tt.diff, got, tt.want)
		}
	}
}

func TestCompareAngles(t *testing.T) {
	a := map[string]float64{"x": 10, "y": 20, "z": 5}
	b := map[string]float64{"x": 12, "y": 40, "w": 1}

	diffs := CompareAngles(a, b)

	var names []string
	var statuses []DiffStatus
	for _, d := range diffs {
		names = append(names, d.Name)
		statuses = append(statuses, d.Status)
	}
	if !reflect.DeepEqual(names, []string{"w", "x", "y", "z"}) {
		t.Errorf("names = %v", names)
	}
	if !reflect.DeepEqual(statuses, []DiffStatus{Missing, Same, Major, Missing}) {
		t.Errorf("statuses = %v", statuses)
	}
	if diffs[1].Diff == nil || *diffs[1].Diff != 2 {
		t.Errorf("x diff = %v, want 2", diffs[1].Diff)
	}
	if diffs[0].Diff != nil || diffs[0].A != nil || diffs[0].B == nil {
		t.Errorf("w diff = %+v", diffs[0])
	}
}

func TestSimilarity(t *testing.T) {
	a := kinematics.AngleSeries{
		0: {"elbow": 90, "knee": 120},
		1: {"elbow": 90},
	}
	b := kinematics.AngleSeries{
		0: {"elbow": 90},
		1: {"elbow": 135},
	}

	overall, per := Similarity(a, b, Mapping{{0, 0}, {1, 1}})
	if math.Abs(overall-0.75) > 1e-9 {
		t.Errorf("overall = %v, want 0.75", overall)
	}
	if _, ok := per["knee"]; ok {
		t.Error("knee is only defined on one side")
	}

	overall, per = Similarity(a, b, nil)
	if overall != 0 || len(per) != 0 {
		t.Errorf("empty mapping = %v, %v", overall, per)
	}
}

func TestSimilarity_FloorsAtZero(t *testing.T) {
	a := kinematics.AngleSeries{0: {"elbow": 0}}
	b := kinematics.AngleSeries{0: {"elbow": 180}}
	overall, _ := Similarity(a, b, Mapping{{0, 0}})
	if overall != 0 {
		t.Errorf("overall = %v, want 0", overall)
	}
}

func TestDTWDistance(t *testing.T) {
	tests := []struct {
		name   string
		s1, s2 []float64
		want   float64
	}{
		{"identical", []float64{0, 1, 2}, []float64{0, 1, 2}, 0},
		{"stretched", []float64{0, 1, 2}, []float64{0, 0, 1, 1, 2, 2}, 0},
		{"offset", []float64{0, 0, 0}, []float64{1, 1, 1}, 1},
		{"empty", nil, []float64{1}, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DTWDistance(tt.s1, tt.s2); got != tt.want {
				t.Errorf("DTWDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShapeDistance(t *testing.T) {
	a := kinematics.AngleSeries{0: {"elbow": 100, "knee": 150}, 1: {"elbow": 110}}
	b := kinematics.AngleSeries{5: {"elbow": 100}, 6: {"elbow": 110}}

	got := ShapeDistance(a, b, Mapping{{0, 5}, {1, 6}})
	if len(got) != 1 {
		t.Fatalf("got %v, want only elbow", got)
	}
	if got["elbow"] != 0 {
		t.Errorf("elbow distance = %v, want 0", got["elbow"])
	}
}

func TestDiffSeries(t *testing.T) {
	anglesA := kinematics.AngleSeries{0: {"elbow": 100}}
	anglesB := kinematics.AngleSeries{2: {"elbow": 110}}
	speedA := kinematics.SpeedSeries{{Frame: 0, Speed: 1.0}}
	speedB := kinematics.SpeedSeries{{Frame: 2, Speed: 1.5}}

	got := DiffSeries(anglesA, anglesB, speedA, speedB, Mapping{{0, 2}, {1, 3}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Angles["elbow"] != 10 {
		t.Errorf("elbow diff = %v, want 10", got[0].Angles["elbow"])
	}
	if got[0].SpeedDiff == nil || *got[0].SpeedDiff != 0.5 {
		t.Errorf("speed diff = %v, want 0.5", got[0].SpeedDiff)
	}
	if len(got[1].Angles) != 0 || got[1].SpeedDiff != nil {
		t.Errorf("second sample = %+v, want empty", got[1])
	}
}

func TestCompareEvaluations(t *testing.T) {
	a := &evaluate.Result{
		TotalScore: 25, Grade: "D",
		Criteria: []evaluate.Criterion{
			{Name: "Knee", Score: 10, Max: 20},
			{Name: "Elbow", Score: 15, Max: 20},
		},
	}
	b := &evaluate.Result{
		TotalScore: 25, Grade: "D",
		Criteria: []evaluate.Criterion{
			{Name: "Elbow", Score: 20, Max: 20},
			{Name: "Head", Score: 5, Max: 10},
		},
	}

	got := CompareEvaluations(a, b)
	if got == nil {
		t.Fatal("nil comparison")
	}
	want := []CriterionDiff{
		{Name: "Knee", ScoreA: 10, ScoreB: 0, Max: 20, Change: -10},
		{Name: "Elbow", ScoreA: 15, ScoreB: 20, Max: 20, Change: 5},
		{Name: "Head", ScoreA: 0, ScoreB: 5, Max: 10, Change: 5},
	}
	if !reflect.DeepEqual(got.Details, want) {
		t.Errorf("details = %+v", got.Details)
	}
	if !reflect.DeepEqual(got.Improved, []string{"Elbow", "Head"}) {
		t.Errorf("improved = %v", got.Improved)
	}
	if !reflect.DeepEqual(got.Declined, []string{"Knee"}) {
		t.Errorf("declined = %v", got.Declined)
	}
	if got.ScoreChange != 0 {
		t.Errorf("score change = %d", got.ScoreChange)
	}

	if CompareEvaluations(nil, b) != nil {
		t.Error("expected nil when A is missing")
	}
}
