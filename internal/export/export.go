// Package export renders placement results to deliverable formats: DXF
// coordination drawings, PDF reports, Excel opening schedules, and QR-coded
// field labels.
package export

import (
	"github.com/jseaddons/sleevecut/internal/model"
)

// Plan bundles the model state an export renders: the hosts and runs of the
// coordination area plus the openings placed in them.
type Plan struct {
	Name     string
	Hosts    []model.StructuralHost
	Runs     []model.LinearRun
	Openings []model.ExistingOpening
}

// Extent returns the plan-view bounding box of everything in the plan.
// The second return is false when the plan is empty.
func (p Plan) Extent() (model.BoundingBox, bool) {
	var box model.BoundingBox
	found := false
	grow := func(b model.BoundingBox) {
		if !found {
			box = b
			found = true
			return
		}
		box = box.Union(b)
	}
	for _, h := range p.Hosts {
		if b, ok := h.Solid.BoundingBox(); ok {
			grow(b)
		}
	}
	for _, r := range p.Runs {
		if b, ok := r.BoundingBox(); ok {
			grow(b)
		}
	}
	for _, o := range p.Openings {
		grow(o.Box)
	}
	return box, found
}
