// Package solver computes where a linear run's centerline crosses a
// structural host's solid.
//
// Inputs must already be frame-resolved: both the run and the host are
// expressed in the common frame before any intersection math runs, and
// every point this package returns is therefore a common-frame point.
// Callers must never apply a link transform to solver output.
package solver

import (
	"math"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

const subsystem = "solver"

// pointMergeTolerance collapses near-duplicate crossing points produced by
// adjacent or tessellated faces sharing an edge.
const pointMergeTolerance = 0.01 // mm

// HasUsableGeometry reports whether the host solid is worth intersecting.
// A missing or negligible-volume solid is skipped, not an error.
func HasUsableGeometry(host model.StructuralHost, settings model.Settings) bool {
	if len(host.Solid.Faces) == 0 {
		return false
	}
	return host.Solid.Volume() >= settings.MinSolidVolume
}

// Solve intersects the run's centerline against every face of the host
// solid and returns all distinct crossing points. An empty result means
// the run misses the host; that is a normal outcome.
func Solve(run model.LinearRun, host model.StructuralHost) model.Intersection {
	x := model.Intersection{RunID: run.ID, HostID: host.ID}
	for _, seg := range run.Segments() {
		for _, face := range host.Solid.Faces {
			p, ok := segmentFaceIntersection(seg[0], seg[1], face)
			if !ok {
				continue
			}
			x.Points = mergePoint(x.Points, p)
		}
	}
	return x
}

// CanonicalPoint reduces a crossing point set to the single point the
// opening is placed at. One point is used directly. Two or more points
// reduce to the midpoint of the entry/exit pair, the pair with maximum
// mutual distance, which always lands inside the material even when face
// tessellation produced extra near-duplicate points.
func CanonicalPoint(points []model.Point3D) (model.Point3D, bool) {
	switch len(points) {
	case 0:
		return model.Point3D{}, false
	case 1:
		return points[0], true
	}
	entry, exit := maxDistancePair(points)
	return entry.Midpoint(exit), true
}

// EntryExit returns the two crossing points of maximum mutual distance.
// With fewer than two points the second return value is false.
func EntryExit(points []model.Point3D) (model.Point3D, model.Point3D, bool) {
	if len(points) < 2 {
		return model.Point3D{}, model.Point3D{}, false
	}
	a, b := maxDistancePair(points)
	return a, b, true
}

func maxDistancePair(points []model.Point3D) (model.Point3D, model.Point3D) {
	best := -1.0
	var a, b model.Point3D
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := points[i].DistanceTo(points[j])
			if d > best {
				best = d
				a, b = points[i], points[j]
			}
		}
	}
	return a, b
}

// segmentFaceIntersection intersects the segment a-b with a planar face.
// Segments parallel to the face plane yield no point, including the
// tangent case where the segment lies in the plane.
func segmentFaceIntersection(a, b model.Point3D, face model.Face) (model.Point3D, bool) {
	if len(face.Vertices) < 3 {
		return model.Point3D{}, false
	}
	n := face.Normal()
	dir := b.Sub(a)
	denom := n.Dot(dir)
	if math.Abs(denom) < 1e-12 {
		return model.Point3D{}, false
	}
	t := n.Dot(face.Vertices[0].Sub(a)) / denom
	if t < -1e-9 || t > 1+1e-9 {
		return model.Point3D{}, false
	}
	p := a.Add(dir.Scale(t))
	if !face.ContainsPoint(p) {
		return model.Point3D{}, false
	}
	return p, true
}

func mergePoint(points []model.Point3D, p model.Point3D) []model.Point3D {
	for _, q := range points {
		if q.DistanceTo(p) <= pointMergeTolerance {
			return points
		}
	}
	return append(points, p)
}

// WallNormal derives the wall's through-direction: the normal of the
// largest planar face that is not horizontal (top/bottom faces are
// excluded by their near-vertical normals). Falls back to the direction
// perpendicular to the wall centerline in the horizontal plane.
func WallNormal(host model.StructuralHost, sink diag.Sink) model.Vector3 {
	if !host.ExteriorNormal.IsZero() {
		return host.ExteriorNormal.Normalized()
	}

	var best model.Vector3
	bestArea := 0.0
	for _, f := range host.Solid.Faces {
		n := f.Normal()
		unit := n.Normalized()
		if math.Abs(unit.Z) > 0.5 {
			continue // top or bottom face
		}
		if area := f.Area(); area > bestArea {
			bestArea = area
			best = unit
		}
	}
	if bestArea > 0 {
		return best
	}

	if len(host.Centerline) >= 2 {
		axis := host.Centerline[len(host.Centerline)-1].Sub(host.Centerline[0])
		perp := model.Vector3{X: -axis.Y, Y: axis.X}
		if perp.Length() > 0 {
			sink.Trace(subsystem, "wall normal from centerline fallback", "host", host.ID)
			return perp.Normalized()
		}
	}
	sink.Trace(subsystem, "wall normal unresolved", "host", host.ID)
	return model.Vector3{}
}

// WallThickness resolves a wall's thickness with the defined fallback
// order: explicit width parameter, geometric width along the wall normal,
// type-level width, fixed default.
func WallThickness(host model.StructuralHost, settings model.Settings, sink diag.Sink) float64 {
	if w, ok := host.Param(model.ParamWidth); ok && w > 0 {
		return w
	}
	if w := geometricWidth(host, sink); w > 0 {
		return w
	}
	if w, ok := host.TypeParam(model.ParamWidth); ok && w > 0 {
		return w
	}
	sink.Trace(subsystem, "wall thickness from fixed default", "host", host.ID,
		"default", settings.DefaultWallThickness)
	return settings.DefaultWallThickness
}

// geometricWidth measures the solid's extent along the wall normal by
// projecting every vertex onto it.
func geometricWidth(host model.StructuralHost, sink diag.Sink) float64 {
	n := WallNormal(host, sink)
	if n.IsZero() {
		return 0
	}
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, f := range host.Solid.Faces {
		for _, v := range f.Vertices {
			d := n.Dot(model.Vector3{X: v.X, Y: v.Y, Z: v.Z})
			minD = math.Min(minD, d)
			maxD = math.Max(maxD, d)
		}
	}
	if maxD <= minD {
		return 0
	}
	return maxD - minD
}
