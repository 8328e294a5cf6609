// Package placement converts raw crossing points into canonical placement
// candidates: a point on the host centerline or midline, a local
// orientation axis, a through-host depth, and a clearance-adjusted size.
//
// All inputs are common-frame geometry produced by the solver; all outputs
// stay in the common frame.
package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/solver"
)

const subsystem = "placement"

// Error is a per-candidate failure with its taxonomy reason. Processing of
// other candidates continues; see the engine's isolation policy.
type Error struct {
	Reason model.Reason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// ReasonOf extracts the taxonomy reason from an error returned by this
// package. The second return value is false for foreign errors.
func ReasonOf(err error) (model.Reason, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return 0, false
}

// Calculator derives placement candidates. Collaborators are injected
// once per invocation.
type Calculator struct {
	settings model.Settings
	sink     diag.Sink
}

// NewCalculator builds a calculator with the given settings and
// diagnostic sink.
func NewCalculator(settings model.Settings, sink diag.Sink) *Calculator {
	return &Calculator{settings: settings, sink: sink}
}

// Derive computes a placement candidate from one non-empty intersection.
// The insulated flag selects the clearance allowance.
func (c *Calculator) Derive(run model.LinearRun, host model.StructuralHost, x model.Intersection, insulated bool) (model.PlacementCandidate, error) {
	raw, ok := solver.CanonicalPoint(x.Points)
	if !ok {
		return model.PlacementCandidate{}, &Error{
			Reason: model.ReasonNoIntersection,
			Detail: fmt.Sprintf("run %s does not cross host %s", run.ID, host.ID),
		}
	}

	var point model.Point3D
	var orientation model.Orientation

	switch host.Kind {
	case model.HostWall:
		point, orientation = c.wallPlacement(run, host, raw)
	case model.HostFloor:
		point = raw
		orientation = model.OrientFloor
	case model.HostFraming:
		point = raw
		orientation = dominantAxis(host.SpanDirection)
	default:
		return model.PlacementCandidate{}, &Error{
			Reason: model.ReasonUnsupportedHostKind,
			Detail: fmt.Sprintf("host %s has kind %s", host.ID, host.Kind),
		}
	}

	// A point at the frame origin is the signature of a coordinate
	// resolution failure, not a legitimate placement.
	if point.NearOrigin(c.settings.OriginEpsilon) {
		c.sink.Warn(subsystem, "placement point degenerated to frame origin",
			"run", run.ID, "host", host.ID,
			"raw", fmt.Sprintf("(%.1f,%.1f,%.1f)", raw.X, raw.Y, raw.Z),
			"computed", fmt.Sprintf("(%.3f,%.3f,%.3f)", point.X, point.Y, point.Z))
		return model.PlacementCandidate{}, &Error{
			Reason: model.ReasonDegenerateOrigin,
			Detail: fmt.Sprintf("run %s on host %s resolved to the frame origin", run.ID, host.ID),
		}
	}

	depth, err := solver.Depth(host, c.settings, c.sink)
	if err != nil {
		return model.PlacementCandidate{}, &Error{
			Reason: model.ReasonMissingDepthParameter,
			Detail: err.Error(),
		}
	}

	width, height, err := ClearanceAdjusted(run, insulated, c.settings)
	if err != nil {
		c.sink.Warn(subsystem, "rejecting implausible opening size",
			"run", run.ID, "host", host.ID, "detail", err.Error())
		return model.PlacementCandidate{}, &Error{
			Reason: model.ReasonImplausibleDimension,
			Detail: err.Error(),
		}
	}

	rotated := false
	if host.Kind == model.HostFloor && isVertical(run.Direction()) {
		if hostBox, ok := host.BoundingBox(); ok {
			rw, rh := run.CrossSection()
			rotated = RotationDecision(hostBox, rw, rh, c.sink)
		}
	}

	return model.PlacementCandidate{
		RunID:            run.ID,
		HostID:           host.ID,
		HostKind:         host.Kind,
		Kind:             model.KindIndividual,
		Point:            point,
		Orientation:      orientation,
		Width:            width,
		Height:           height,
		Depth:            depth,
		Rotated:          rotated,
		ClearanceApplied: true,
	}, nil
}

// wallPlacement lands the point on the wall axis. The centering decision
// picks between a perpendicular projection onto the wall centerline and
// an end-fitting slide along the run into the wall.
func (c *Calculator) wallPlacement(run model.LinearRun, host model.StructuralHost, raw model.Point3D) (model.Point3D, model.Orientation) {
	normal := solver.WallNormal(host, c.sink)
	orientation := dominantAxis(normal)

	if len(host.Centerline) < 2 {
		c.sink.Trace(subsystem, "wall has no centerline, using raw crossing point", "host", host.ID)
		return raw, orientation
	}

	ratio := 0.0
	if hostBox, ok := host.BoundingBox(); ok {
		ratio = overlapRatio(run, hostBox)
	}
	decision := CenteringDecision(ratio, endDistance(run, raw), c.settings)

	if decision == DecisionShiftToEnd {
		if p, ok := slideOntoAxisPlane(raw, run.Direction(), host.Centerline[0], normal); ok {
			return p, orientation
		}
		// Run parallel to the wall plane: fall through to projection
	}
	return projectOntoAxis(raw, host.Centerline), orientation
}

// projectOntoAxis projects p onto the wall centerline in plan, keeping
// the crossing elevation.
func projectOntoAxis(p model.Point3D, centerline []model.Point3D) model.Point3D {
	a := centerline[0]
	b := centerline[len(centerline)-1]
	ax, ay := b.X-a.X, b.Y-a.Y
	lenSq := ax*ax + ay*ay
	if lenSq == 0 {
		return model.Point3D{X: a.X, Y: a.Y, Z: p.Z}
	}
	t := ((p.X-a.X)*ax + (p.Y-a.Y)*ay) / lenSq
	t = math.Max(0, math.Min(1, t))
	return model.Point3D{X: a.X + t*ax, Y: a.Y + t*ay, Z: p.Z}
}

// slideOntoAxisPlane moves p along dir until it reaches the plane through
// planePoint with the given normal. Returns false when dir is parallel to
// the plane.
func slideOntoAxisPlane(p model.Point3D, dir model.Vector3, planePoint model.Point3D, normal model.Vector3) (model.Point3D, bool) {
	denom := normal.Dot(dir)
	if math.Abs(denom) < 1e-9 {
		return model.Point3D{}, false
	}
	t := normal.Dot(planePoint.Sub(p)) / denom
	return p.Add(dir.Scale(t)), true
}

// dominantAxis maps a direction to the planar world axis it is more
// closely aligned to.
func dominantAxis(v model.Vector3) model.Orientation {
	if v.IsZero() {
		return model.OrientUnknown
	}
	if math.Abs(v.X) >= math.Abs(v.Y) {
		return model.OrientX
	}
	return model.OrientY
}

func isVertical(dir model.Vector3) bool {
	return math.Abs(dir.Z) > 0.7
}
