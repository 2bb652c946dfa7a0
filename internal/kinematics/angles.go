// Package kinematics derives scalar body signals from detected joint positions:
// joint angles, shoulder rotation, center of gravity and limb speed.
//
// Every function is pure. A signal whose joints are not visible is reported as
// undefined (a false ok, a missing map entry or a skipped sample), never as zero,
// except LimbSpeed which deliberately emits 0.0 to keep its series dense.
package kinematics

import (
	"math"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
)

// AngleDef names the angle measured at joint B between rays B->A and B->C.
type AngleDef struct {
	Name    string
	A, B, C int
}

// AngleSet is an ordered list of angle definitions.
type AngleSet []AngleDef

// Batting angle names.
const (
	RightElbow    = "right_elbow"
	LeftElbow     = "left_elbow"
	RightKnee     = "right_knee"
	LeftKnee      = "left_knee"
	RightShoulder = "right_shoulder"
	LeftShoulder  = "left_shoulder"
)

// Pitching angle names.
const (
	ThrowingElbow    = "elbow"
	ThrowingShoulder = "shoulder"
	PivotKnee        = "pivot_knee"
	StrideKnee       = "stride_knee"
	Trunk            = "trunk"
)

// BattingAngles is the angle set tracked for batting clips.
var BattingAngles = AngleSet{
	{Name: RightElbow, A: detector.RightShoulder, B: detector.RightElbow, C: detector.RightWrist},
	{Name: LeftElbow, A: detector.LeftShoulder, B: detector.LeftElbow, C: detector.LeftWrist},
	{Name: RightKnee, A: detector.RightHip, B: detector.RightKnee, C: detector.RightAnkle},
	{Name: LeftKnee, A: detector.LeftHip, B: detector.LeftKnee, C: detector.LeftAnkle},
	{Name: RightShoulder, A: detector.RightElbow, B: detector.RightShoulder, C: detector.RightHip},
	{Name: LeftShoulder, A: detector.LeftElbow, B: detector.LeftShoulder, C: detector.LeftHip},
}

// PitchingAngles returns the angle set tracked for a pitcher throwing with arm.
func PitchingAngles(arm Arm) AngleSet {
	j := arm.Joints()
	return AngleSet{
		{Name: ThrowingElbow, A: j.Shoulder, B: j.Elbow, C: j.Wrist},
		{Name: ThrowingShoulder, A: j.Elbow, B: j.Shoulder, C: j.Hip},
		{Name: PivotKnee, A: j.Hip, B: j.Knee, C: j.Ankle},
		{Name: StrideKnee, A: j.LeadHip, B: j.LeadKnee, C: j.LeadAnkle},
		{Name: Trunk, A: j.Shoulder, B: j.Hip, C: j.Knee},
	}
}

// Names returns the angle names in definition order.
func (s AngleSet) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

// ImageSize is the pixel size of the source video.
type ImageSize struct {
	Width  int
	Height int
}

// Angle returns the angle in degrees at vertex b between rays b->a and b->c.
// A zero-length ray yields 0.
func Angle(a, b, c detector.Point2D) float64 {
	ba := a.Sub(b)
	bc := c.Sub(b)

	nba := ba.Norm()
	nbc := bc.Norm()
	if nba == 0 || nbc == 0 {
		return 0
	}

	cos := (ba.X*bc.X + ba.Y*bc.Y) / (nba * nbc)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// FrameAngles computes every angle in set whose three joints are visible.
// When size is non-nil, coordinates are scaled to pixels first.
func FrameAngles(frame *detector.JointFrame, set AngleSet, size *ImageSize) map[string]float64 {
	angles := make(map[string]float64, len(set))
	if frame == nil {
		return angles
	}

	point := func(idx int) detector.Point2D {
		p := frame.Point(idx)
		if size != nil {
			p.X *= float64(size.Width)
			p.Y *= float64(size.Height)
		}
		return p
	}

	for _, d := range set {
		if !frame.AllVisible(d.A, d.B, d.C) {
			continue
		}
		angles[d.Name] = Angle(point(d.A), point(d.B), point(d.C))
	}
	return angles
}

// AngleSeries maps each frame with a detected pose to its FrameAngles.
type AngleSeries map[int]map[string]float64

// ComputeAngleSeries evaluates FrameAngles for every detected frame in history.
func ComputeAngleSeries(history detector.FrameHistory, set AngleSet, size *ImageSize) AngleSeries {
	series := make(AngleSeries, len(history))
	for f, jf := range history {
		if jf == nil {
			continue
		}
		series[f] = FrameAngles(jf, set, size)
	}
	return series
}

// At returns the named angle at frame f.
func (s AngleSeries) At(f int, name string) (float64, bool) {
	angles, ok := s[f]
	if !ok {
		return 0, false
	}
	v, ok := angles[name]
	return v, ok
}
