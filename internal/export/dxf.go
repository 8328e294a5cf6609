package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/jseaddons/sleevecut/internal/model"
)

// Layer names in the exported coordination drawing.
const (
	layerHosts    = "HOSTS"
	layerRuns     = "RUNS"
	layerOpenings = "OPENINGS"
)

// ExportDXF writes a plan-view coordination drawing of the plan. Hosts
// render as outline rectangles on HOSTS, run centerlines as polylines on
// RUNS, and openings as rectangles (circles for individual circular-profile
// sleeves) on OPENINGS. All coordinates are model millimetres, so the
// drawing overlays directly onto architectural backgrounds.
func ExportDXF(path string, plan Plan) error {
	if _, ok := plan.Extent(); !ok {
		return fmt.Errorf("nothing to export")
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(layerHosts, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, h := range plan.Hosts {
		if box, ok := h.Solid.BoundingBox(); ok {
			drawPlanRect(d, box)
		}
	}

	if _, err := d.AddLayer(layerRuns, color.Blue, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, r := range plan.Runs {
		for i := 0; i < len(r.Centerline)-1; i++ {
			a, b := r.Centerline[i], r.Centerline[i+1]
			d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
		}
	}

	if _, err := d.AddLayer(layerOpenings, color.Red, table.LT_HIDDEN, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, o := range plan.Openings {
		if o.Kind == model.KindIndividual && o.Width == o.Height {
			d.Circle(o.Center.X, o.Center.Y, 0, o.Width/2)
			continue
		}
		drawPlanRect(d, o.Box)
	}

	return d.SaveAs(path)
}

// drawPlanRect draws the plan projection of a box as four lines.
func drawPlanRect(d *drawing.Drawing, box model.BoundingBox) {
	x1, y1 := box.Min.X, box.Min.Y
	x2, y2 := box.Max.X, box.Max.Y
	d.Line(x1, y1, 0, x2, y1, 0)
	d.Line(x2, y1, 0, x2, y2, 0)
	d.Line(x2, y2, 0, x1, y2, 0)
	d.Line(x1, y2, 0, x1, y1, 0)
}
