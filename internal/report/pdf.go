package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/evaluate"
)

const (
	pdfPageWidth    = 210.0 // A4 portrait, mm
	pdfPageHeight   = 297.0
	pdfMargin       = 15.0
	pdfContentWidth = pdfPageWidth - 2*pdfMargin
	pdfLineHeight   = 6.0
)

// pdfWriter tracks the flowing position on the current page.
type pdfWriter struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	currentY float64
}

func newPDFWriter() *pdfWriter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()
	return &pdfWriter{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		currentY: pdfMargin,
	}
}

func (w *pdfWriter) style(name string) {
	switch name {
	case "h1":
		w.pdf.SetFont("Arial", "B", 16)
	case "h2":
		w.pdf.SetFont("Arial", "B", 13)
	case "header":
		w.pdf.SetFont("Arial", "B", 9)
		w.pdf.SetFillColor(220, 220, 220)
	case "cell":
		w.pdf.SetFont("Arial", "", 9)
	default:
		w.pdf.SetFont("Arial", "", 10)
	}
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *pdfWriter) statusColor(s evaluate.Status) {
	switch s {
	case evaluate.Good:
		w.pdf.SetTextColor(46, 125, 50)
	case evaluate.Warning:
		w.pdf.SetTextColor(239, 108, 0)
	case evaluate.Bad:
		w.pdf.SetTextColor(198, 40, 40)
	default:
		w.pdf.SetTextColor(80, 80, 80)
	}
}

func (w *pdfWriter) ensure(height float64) {
	if w.currentY+height > pdfPageHeight-pdfMargin {
		w.pdf.AddPage()
		w.currentY = pdfMargin
	}
}

func (w *pdfWriter) paragraph(text, style, align string) {
	w.style(style)
	w.ensure(pdfLineHeight)
	w.pdf.SetXY(pdfMargin, w.currentY)
	w.pdf.MultiCell(pdfContentWidth, pdfLineHeight, w.tr(text), "", align, false)
	w.currentY = w.pdf.GetY() + 1
}

func (w *pdfWriter) spacer(h float64) {
	w.currentY += h
	w.ensure(0)
}

// table draws a bordered table. widths are fractions of the content width.
// colorCol, when non-negative, is the column whose text is colored by statuses.
func (w *pdfWriter) table(headers []string, widths []float64, rows [][]string, statuses []evaluate.Status, colorCol int) {
	abs := make([]float64, len(widths))
	for i, rel := range widths {
		abs[i] = rel * pdfContentWidth
	}

	w.ensure(pdfLineHeight * 2)
	w.style("header")
	x := pdfMargin
	for i, h := range headers {
		w.pdf.SetXY(x, w.currentY)
		w.pdf.CellFormat(abs[i], pdfLineHeight, w.tr(h), "1", 0, "C", true, 0, "")
		x += abs[i]
	}
	w.currentY += pdfLineHeight

	for r, row := range rows {
		w.ensure(pdfLineHeight)
		x = pdfMargin
		for i, cell := range row {
			w.style("cell")
			if i == colorCol && r < len(statuses) {
				w.statusColor(statuses[r])
			}
			align := "C"
			if i == len(row)-1 {
				align = "L"
			}
			w.pdf.SetXY(x, w.currentY)
			w.pdf.CellFormat(abs[i], pdfLineHeight, w.tr(cell), "1", 0, align, false, 0, "")
			x += abs[i]
		}
		w.currentY += pdfLineHeight
	}
	w.currentY += 2
}

func (w *pdfWriter) image(png []byte, name string) {
	width := pdfContentWidth
	height := width / 2
	w.ensure(height)
	w.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	w.pdf.ImageOptions(name, pdfMargin, w.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	w.currentY += height + 2
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func title(k analysis.Kind) string {
	switch k {
	case analysis.Pitching:
		return "Pitching Form Report"
	case analysis.Batting:
		return "Batting Form Report"
	}
	return "Form Report"
}

// EvaluationPDF writes a report for r to out. chart, when not empty, is a PNG
// embedded after the evaluation.
func EvaluationPDF(out io.Writer, r *analysis.Result, chart []byte) error {
	if r == nil {
		return ErrNoData
	}

	w := newPDFWriter()
	w.paragraph(title(r.Kind), "h1", "C")
	w.spacer(3)
	w.paragraph(fmt.Sprintf("Arm: %s   FPS: %.1f   Frames: %d   Pose detected: %d", r.Arm, r.FPS, r.TotalFrames, r.Detected), "normal", "L")

	if r.Best == nil {
		w.paragraph("No motion was detected in this video.", "normal", "L")
	} else {
		w.paragraph(fmt.Sprintf("Motion: frames %d-%d, peak at %d (%.2f units/s)", r.Best.Start, r.Best.End, r.Best.Peak, r.Best.PeakSpeed), "normal", "L")
	}

	if ev := r.Evaluation; ev != nil {
		w.spacer(3)
		w.paragraph(fmt.Sprintf("Score: %d / %d   Grade: %s", ev.TotalScore, ev.MaxScore(), ev.Grade), "h2", "L")

		rows := make([][]string, len(ev.Criteria))
		statuses := make([]evaluate.Status, len(ev.Criteria))
		for i, c := range ev.Criteria {
			rows[i] = []string{c.Name, fmt.Sprintf("%d / %d", c.Score, c.Max), string(c.Status), c.Advice}
			statuses[i] = c.Status
		}
		w.table([]string{"Criterion", "Score", "Status", "Advice"}, []float64{0.22, 0.12, 0.12, 0.54}, rows, statuses, 2)

		if ev.InjuryRisk != "" {
			w.paragraph(fmt.Sprintf("Injury risk: %s", ev.InjuryRisk), "h2", "L")
			for _, warn := range ev.InjuryWarnings {
				w.paragraph("- "+warn, "normal", "L")
			}
		}
		w.paragraph(ev.Summary, "normal", "L")
	}

	if rel := r.Release; rel != nil {
		w.spacer(3)
		w.paragraph("Release", "h2", "L")
		w.paragraph(fmt.Sprintf("Frame %d, elbow %.1f°, shoulder %s, height ratio %s, arm slot %s (%s)",
			rel.Frame, rel.ElbowAngle, optional(rel.ShoulderAngle, "%.1f°"), optional(rel.HeightRatio, "%.2f"),
			optional(r.ArmSlot, "%.1f°"), r.Slot), "normal", "L")
	}

	if c := r.Contact; c != nil {
		w.spacer(3)
		w.paragraph("Contact", "h2", "L")
		w.paragraph(fmt.Sprintf("Frame %d, swing %s s, peak speed %.2f, step/shoulder %s, shoulder rotation %s, swing arc %s",
			c.Frame, optional(c.DurationSeconds, "%.2f"), c.PeakSpeed, optional(c.StepWidthRatio, "%.2f"),
			optional(c.ShoulderRotation, "%.1f°"), optional(c.ArcAngle, "%.1f°")), "normal", "L")
	}

	if len(r.FormChecks) > 0 {
		w.spacer(3)
		w.paragraph("Form checks", "h2", "L")
		rows := make([][]string, len(r.FormChecks))
		statuses := make([]evaluate.Status, len(r.FormChecks))
		for i, fc := range r.FormChecks {
			rows[i] = []string{fc.Item, fc.Display, fc.Judgement, fc.Detail}
			statuses[i] = fc.Status
		}
		w.table([]string{"Item", "Value", "Judgement", "Detail"}, []float64{0.22, 0.14, 0.18, 0.46}, rows, statuses, 2)
	}

	if len(r.Phases) > 0 {
		w.spacer(3)
		w.paragraph("Phases", "h2", "L")
		rows := make([][]string, len(r.Phases))
		for i, p := range r.Phases {
			rows[i] = []string{p.Key.Info().Name, fmt.Sprintf("%d", p.Start), fmt.Sprintf("%d", p.End)}
		}
		w.table([]string{"Phase", "Start", "End"}, []float64{0.4, 0.3, 0.3}, rows, nil, -1)
	}

	if len(chart) > 0 {
		w.spacer(3)
		w.image(chart, "speed")
	}

	return w.pdf.Output(out)
}
