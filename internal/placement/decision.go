package placement

import (
	"math"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

// Decision is the wall placement strategy for one crossing.
type Decision int

const (
	// DecisionCenter projects the crossing point perpendicular onto the
	// wall centerline, centering the opening in the wall thickness.
	DecisionCenter Decision = iota
	// DecisionShiftToEnd slides the point along the run into the wall
	// axis. Used for end fittings: runs that terminate at the wall face.
	DecisionShiftToEnd
)

func (d Decision) String() string {
	if d == DecisionShiftToEnd {
		return "ShiftToEnd"
	}
	return "Center"
}

// CenteringDecision picks the wall placement strategy from two scalars:
// the fraction of the run's length overlapping the host extent along the
// run direction, and the distance from the crossing point to the nearest
// run end. High overlap always centers; otherwise a crossing close to a
// run end is an end fitting.
func CenteringDecision(overlapRatio, endDistance float64, settings model.Settings) Decision {
	if overlapRatio >= settings.CenteringRatio {
		return DecisionCenter
	}
	if endDistance <= settings.EndFittingThreshold {
		return DecisionShiftToEnd
	}
	return DecisionCenter
}

// RotationDecision decides whether a vertical run's opening needs its long
// axis rotated 90 degrees, by comparing the host element's horizontal
// bounding extents against the run's declared width and height. Swapped
// extents require rotation; a square box or directly matching extents do
// not; anything else is ambiguous and defaults to no rotation with a
// logged note.
func RotationDecision(hostBox model.BoundingBox, runWidth, runHeight float64, sink diag.Sink) bool {
	const tol = 1.0 // mm

	ext := hostBox.Extent()
	if math.Abs(ext.X-ext.Y) <= tol {
		return false // square
	}
	if math.Abs(ext.X-runWidth) <= tol && math.Abs(ext.Y-runHeight) <= tol {
		return false // extents already match
	}
	if math.Abs(ext.X-runHeight) <= tol && math.Abs(ext.Y-runWidth) <= tol {
		return true // extents swapped
	}
	sink.Trace(subsystem, "rotation ambiguous, defaulting to no rotation",
		"extent_x", ext.X, "extent_y", ext.Y, "run_width", runWidth, "run_height", runHeight)
	return false
}

// overlapRatio returns the fraction of the run centerline length lying
// inside the host's bounding box.
func overlapRatio(run model.LinearRun, hostBox model.BoundingBox) float64 {
	total := run.Length()
	if total == 0 {
		return 0
	}
	var inside float64
	for _, seg := range run.Segments() {
		inside += clippedLength(seg[0], seg[1], hostBox)
	}
	return inside / total
}

// clippedLength returns the length of the segment portion inside the box,
// using the slab method per axis.
func clippedLength(a, b model.Point3D, box model.BoundingBox) float64 {
	dir := b.Sub(a)
	tMin, tMax := 0.0, 1.0

	clip := func(origin, d, lo, hi float64) bool {
		if math.Abs(d) < 1e-12 {
			return origin >= lo && origin <= hi
		}
		t0 := (lo - origin) / d
		t1 := (hi - origin) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		return tMin <= tMax
	}

	if !clip(a.X, dir.X, box.Min.X, box.Max.X) ||
		!clip(a.Y, dir.Y, box.Min.Y, box.Max.Y) ||
		!clip(a.Z, dir.Z, box.Min.Z, box.Max.Z) {
		return 0
	}
	return (tMax - tMin) * dir.Length()
}

// endDistance returns the distance from p to the nearest run endpoint.
func endDistance(run model.LinearRun, p model.Point3D) float64 {
	if len(run.Centerline) == 0 {
		return math.Inf(1)
	}
	start := run.Centerline[0]
	end := run.Centerline[len(run.Centerline)-1]
	return math.Min(p.DistanceTo(start), p.DistanceTo(end))
}
