// Package prefilter rejects run/host pairs by cheap axis-aligned box tests
// before any solid work happens. It operates strictly in the common frame:
// callers resolve geometry first, and an optional region of interest is a
// common-frame box.
package prefilter

import (
	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

const subsystem = "prefilter"

// Pair indexes one surviving run/host combination into Result.
type Pair struct {
	Run  int
	Host int
}

// Result holds the surviving elements and their candidate pairings.
// Indices in Pairs refer to the Runs and Hosts slices of this result, not
// to the caller's original slices.
type Result struct {
	Runs  []model.LinearRun
	Hosts []model.StructuralHost
	Pairs []Pair
}

// Filter clips both collections to the region (nil means no restriction)
// and pairs up every run/host whose boxes overlap. Elements whose bounding
// box cannot be computed are excluded and traced, never silently dropped.
func Filter(runs []model.LinearRun, hosts []model.StructuralHost, region *model.BoundingBox, sink diag.Sink) Result {
	var out Result

	runBoxes := make([]model.BoundingBox, 0, len(runs))
	for _, r := range runs {
		box, ok := r.BoundingBox()
		if !ok {
			sink.Trace(subsystem, "excluding run without computable bounding box", "run", r.ID)
			continue
		}
		if region != nil && !region.Intersects(box) {
			continue
		}
		out.Runs = append(out.Runs, r)
		runBoxes = append(runBoxes, box)
	}

	hostBoxes := make([]model.BoundingBox, 0, len(hosts))
	for _, h := range hosts {
		box, ok := h.BoundingBox()
		if !ok {
			sink.Trace(subsystem, "excluding host without computable bounding box", "host", h.ID)
			continue
		}
		if region != nil && !region.Intersects(box) {
			continue
		}
		out.Hosts = append(out.Hosts, h)
		hostBoxes = append(hostBoxes, box)
	}

	for i := range out.Runs {
		for j := range out.Hosts {
			if runBoxes[i].Intersects(hostBoxes[j]) {
				out.Pairs = append(out.Pairs, Pair{Run: i, Host: j})
			}
		}
	}
	return out
}

// FilterOpenings clips existing openings to the region. Used to scope the
// duplicate/cluster pass the same way the geometry pass is scoped.
func FilterOpenings(openings []model.ExistingOpening, region *model.BoundingBox) []model.ExistingOpening {
	if region == nil {
		return openings
	}
	var out []model.ExistingOpening
	for _, o := range openings {
		box := o.Box
		if !box.IsValid() {
			box = model.BoundingBox{Min: o.Center, Max: o.Center}
		}
		if region.Intersects(box) {
			out = append(out, o)
		}
	}
	return out
}
