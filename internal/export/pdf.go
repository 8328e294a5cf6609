package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/jseaddons/sleevecut/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a placement report: a plan-view page showing hosts,
// runs, and openings to scale, followed by a summary page with per-reason
// counts and the opening schedule.
func ExportPDF(path string, plan Plan, summary model.Summary) error {
	extent, ok := plan.Extent()
	if !ok {
		return fmt.Errorf("nothing to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, plan, extent)

	pdf.AddPage()
	renderSummaryPage(pdf, plan, summary)

	return pdf.OutputFileAndClose(path)
}

// renderPlanPage draws the plan view on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, plan Plan, extent model.BoundingBox) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sleeve Plan: %s", plan.Name)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Hosts: %d | Runs: %d | Openings: %d",
		len(plan.Hosts), len(plan.Runs), len(plan.Openings))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	modelW := extent.Max.X - extent.Min.X
	modelH := extent.Max.Y - extent.Min.Y
	if modelW < 1 {
		modelW = 1
	}
	if modelH < 1 {
		modelH = 1
	}
	scale := math.Min(drawWidth/modelW, drawHeight/modelH)

	canvasW := modelW * scale
	canvasH := modelH * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// PDF Y grows downward; model Y grows upward in plan
	toPage := func(p model.Point3D) (float64, float64) {
		return offsetX + (p.X-extent.Min.X)*scale,
			offsetY + canvasH - (p.Y-extent.Min.Y)*scale
	}

	// Hosts: light grey footprints
	pdf.SetFillColor(230, 230, 230)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	for _, h := range plan.Hosts {
		box, ok := h.Solid.BoundingBox()
		if !ok {
			continue
		}
		x, y := toPage(model.Point3D{X: box.Min.X, Y: box.Max.Y})
		pdf.Rect(x, y, (box.Max.X-box.Min.X)*scale, (box.Max.Y-box.Min.Y)*scale, "FD")
	}

	// Runs: blue centerlines
	pdf.SetDrawColor(33, 150, 243)
	pdf.SetLineWidth(0.4)
	for _, r := range plan.Runs {
		for i := 0; i < len(r.Centerline)-1; i++ {
			x1, y1 := toPage(r.Centerline[i])
			x2, y2 := toPage(r.Centerline[i+1])
			pdf.Line(x1, y1, x2, y2)
		}
	}

	// Openings: red marks with size labels
	pdf.SetDrawColor(244, 67, 54)
	pdf.SetLineWidth(0.4)
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(180, 0, 0)
	for _, o := range plan.Openings {
		x, y := toPage(model.Point3D{X: o.Box.Min.X, Y: o.Box.Max.Y})
		w := (o.Box.Max.X - o.Box.Min.X) * scale
		h := (o.Box.Max.Y - o.Box.Min.Y) * scale
		pdf.Rect(x, y, w, h, "D")

		label := fmt.Sprintf("%.0fx%.0f", o.Width, o.Height)
		labelW := pdf.GetStringWidth(label)
		cx, cy := toPage(o.Center)
		pdf.SetXY(cx-labelW/2, cy-4)
		pdf.CellFormat(labelW, 3, label, "", 0, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	drawScaleAnnotation(pdf, modelW, canvasW, offsetX, offsetY+canvasH)
}

// drawScaleAnnotation adds the plan width in model units under the drawing.
func drawScaleAnnotation(pdf *fpdf.Fpdf, modelW, canvasW, x, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	label := fmt.Sprintf("%.0f mm", modelW)
	labelW := pdf.GetStringWidth(label)
	pdf.SetXY(x+(canvasW-labelW)/2, y+1)
	pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws the invocation summary and the opening schedule.
func renderSummaryPage(pdf *fpdf.Fpdf, plan Plan, summary model.Summary) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Placement Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	summaryItems := []struct {
		label string
		value string
	}{
		{"Placed", fmt.Sprintf("%d", summary.Placed())},
		{"Suppressed", fmt.Sprintf("%d", summary.Suppressed())},
		{"Failed", fmt.Sprintf("%d", summary.Failed())},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped())},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Opening Schedule", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{25, 30, 30, 70, 35, 35, 25}
	headers := []string{"ID", "Kind", "Host", "Center (mm)", "W x H (mm)", "Depth (mm)", "Orient"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	for i, o := range plan.Openings {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}

		xPos = marginLeft
		rowData := []string{
			o.ID,
			o.Kind.String(),
			o.HostID,
			fmt.Sprintf("%.0f, %.0f, %.0f", o.Center.X, o.Center.Y, o.Center.Z),
			fmt.Sprintf("%.0f x %.0f", o.Width, o.Height),
			fmt.Sprintf("%.0f", o.Depth),
			o.Orientation.String(),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	failures := summary.Failures()
	if len(failures) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Failed Candidates", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, f := range failures {
			if y > pageHeight-marginBottom-5 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- run %s / host %s: %s", f.RunID, f.HostID, f.Reason)
			if f.Detail != "" {
				text += " (" + f.Detail + ")"
			}
			pdf.CellFormat(250, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by sleevecut", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
