package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jseaddons/sleevecut/internal/model"
)

// LabelInfo holds the data encoded into each sleeve label's QR code. Field
// crews scan the code to pull the opening's identity and set-out point.
type LabelInfo struct {
	OpeningID string  `json:"id"`
	Kind      string  `json:"kind"`
	HostID    string  `json:"host"`
	Width     float64 `json:"width_mm"`
	Height    float64 `json:"height_mm"`
	Depth     float64 `json:"depth_mm"`
	X         float64 `json:"x_mm"`
	Y         float64 `json:"y_mm"`
	Z         float64 `json:"z_mm"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page). Each label cell is approximately 66.7mm x 25.4mm on US
// Letter paper.
const (
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per opening. Labels
// are laid out on a standard label sheet format (Avery 5160, 3 columns by
// 10 rows on US Letter).
func ExportLabels(path string, openings []model.ExistingOpening) error {
	labels := CollectLabelInfos(openings)
	if len(labels) == 0 {
		return fmt.Errorf("no openings to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.OpeningID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s", info.OpeningID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Opening ID (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	title := fmt.Sprintf("Sleeve %s", info.OpeningID)
	if pdf.GetStringWidth(title) > textW {
		for len(title) > 0 && pdf.GetStringWidth(title+"...") > textW {
			title = title[:len(title)-1]
		}
		title += "..."
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f x %.0f mm", info.Width, info.Height, info.Depth)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	position := fmt.Sprintf("@ (%.0f, %.0f, %.0f)", info.X, info.Y, info.Z)
	pdf.CellFormat(textW, 3, position, "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+12.5)
	hostInfo := fmt.Sprintf("%s in %s", info.Kind, info.HostID)
	pdf.CellFormat(textW, 3, hostInfo, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information from a set of openings, for
// use in testing or alternative export formats.
func CollectLabelInfos(openings []model.ExistingOpening) []LabelInfo {
	var labels []LabelInfo
	for _, o := range openings {
		labels = append(labels, LabelInfo{
			OpeningID: o.ID,
			Kind:      o.Kind.String(),
			HostID:    o.HostID,
			Width:     o.Width,
			Height:    o.Height,
			Depth:     o.Depth,
			X:         o.Center.X,
			Y:         o.Center.Y,
			Z:         o.Center.Z,
		})
	}
	return labels
}
