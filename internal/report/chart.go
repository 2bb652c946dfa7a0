// Package report renders analysis results as PNG charts and PDF reports.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Chart size.
var (
	ChartWidth  = vg.Points(800)
	ChartHeight = vg.Points(400)
)

var (
	colorA         = color.RGBA{R: 33, G: 150, B: 243, A: 255}
	colorB         = color.RGBA{R: 244, G: 67, B: 54, A: 255}
	colorThreshold = color.RGBA{R: 255, G: 152, B: 0, A: 255}
	colorPeak      = color.Gray{Y: 128}
)

func speedXYs(s kinematics.SpeedSeries) plotter.XYs {
	pts := make(plotter.XYs, len(s))
	for i, v := range s {
		pts[i] = plotter.XY{X: float64(v.Frame), Y: v.Speed}
	}
	return pts
}

func dashed(pts plotter.XYs, c color.Color) (*plotter.Line, error) {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.LineStyle.DashArray = []vg.Length{vg.Points(5), vg.Points(5)}
	return line, nil
}

// SpeedChart plots the limb speed of r against frame, with the detection
// threshold and a marker at the peak of every interval.
func SpeedChart(r *analysis.Result) ([]byte, error) {
	if r == nil || len(r.Speed) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Limb speed (%s)", r.Kind)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Speed (units/s)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(speedXYs(r.Speed))
	if err != nil {
		return nil, fmt.Errorf("failed to create speed line: %w", err)
	}
	line.Color = colorA
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("speed", line)

	last := float64(r.Speed[len(r.Speed)-1].Frame)
	first := float64(r.Speed[0].Frame)
	thr, err := dashed(plotter.XYs{{X: first, Y: r.Threshold}, {X: last, Y: r.Threshold}}, colorThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create threshold line: %w", err)
	}
	p.Add(thr)
	p.Legend.Add(fmt.Sprintf("threshold %.2f", r.Threshold), thr)

	top := max(floats.Max(r.Speed.Values()), r.Threshold) * 1.1
	for _, iv := range r.Intervals {
		peak, err := dashed(plotter.XYs{{X: float64(iv.Peak), Y: 0}, {X: float64(iv.Peak), Y: top}}, colorPeak)
		if err != nil {
			return nil, fmt.Errorf("failed to create peak marker: %w", err)
		}
		p.Add(peak)
	}
	p.Y.Min = 0
	if top > 0 {
		p.Y.Max = top
	}
	p.Legend.Top = true

	return render(p)
}

// ComparisonChart plots both limb speeds of c on the synchronized timeline.
func ComparisonChart(c *analysis.Comparison) ([]byte, error) {
	if c == nil || len(c.Sync.Mapping) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Synchronized limb speed (%s)", c.Sync.Landmark)
	p.X.Label.Text = "Synchronized frame"
	p.Y.Label.Text = "Speed (units/s)"
	p.Add(plotter.NewGrid())

	sides := []struct {
		label  string
		speeds kinematics.SpeedSeries
		frames []int
		color  color.Color
	}{
		{"A", c.A.Speed, c.Sync.Mapping.FramesA(), colorA},
		{"B", c.B.Speed, c.Sync.Mapping.FramesB(), colorB},
	}
	for _, side := range sides {
		pts := make(plotter.XYs, 0, len(side.frames))
		for i, f := range side.frames {
			if v, ok := side.speeds.At(f); ok {
				pts = append(pts, plotter.XY{X: float64(i), Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for %s: %w", side.label, err)
		}
		line.Color = side.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(side.label, line)
	}
	p.Legend.Top = true

	return render(p)
}

func render(p *plot.Plot) ([]byte, error) {
	writer, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
