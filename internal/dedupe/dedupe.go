// Package dedupe prevents redundant and conflicting openings: it rejects
// placement candidates that coincide with existing openings and merges
// tightly spaced openings into single rectangular replacements.
package dedupe

import (
	"math"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

const subsystem = "dedupe"

// FindDuplicate returns the existing opening of the same semantic kind
// whose center lies within tol of the candidate's point, if any.
func FindDuplicate(c model.PlacementCandidate, existing []model.ExistingOpening, tol float64) (model.ExistingOpening, bool) {
	for _, o := range existing {
		if o.Kind != c.Kind {
			continue
		}
		if o.Center.DistanceTo(c.Point) <= tol {
			return o, true
		}
	}
	return model.ExistingOpening{}, false
}

// FindContaining returns the existing clustered or rectangular opening
// whose tolerance-expanded bounding box contains the candidate's point, if
// any. This covers the case of a large merged opening already spanning the
// candidate's location even though its center is far away.
func FindContaining(c model.PlacementCandidate, existing []model.ExistingOpening, padding float64) (model.ExistingOpening, bool) {
	for _, o := range existing {
		if o.Kind != model.KindClustered && o.Kind != model.KindRectangular {
			continue
		}
		if !o.Box.IsValid() {
			continue
		}
		if o.Box.Expanded(padding).Contains(c.Point) {
			return o, true
		}
	}
	return model.ExistingOpening{}, false
}

// Suppress applies both suppression tests in order, point proximity then
// bounding-box containment, to each candidate, also checking candidates
// accepted earlier in the same batch against each other. It returns the
// surviving candidates and an outcome per suppressed one.
func Suppress(candidates []model.PlacementCandidate, existing []model.ExistingOpening, settings model.Settings, sink diag.Sink) ([]model.PlacementCandidate, []model.Outcome) {
	var kept []model.PlacementCandidate
	var outcomes []model.Outcome

	pool := append([]model.ExistingOpening(nil), existing...)
	for _, c := range candidates {
		if dup, found := FindDuplicate(c, pool, settings.ProximityTolerance); found {
			sink.Trace(subsystem, "suppressing duplicate placement",
				"run", c.RunID, "host", c.HostID, "existing", dup.ID)
			outcomes = append(outcomes, model.Outcome{
				RunID: c.RunID, HostID: c.HostID,
				Reason: model.ReasonDuplicatePoint,
				Detail: "existing opening " + dup.ID + " within proximity tolerance",
			})
			continue
		}
		if container, found := FindContaining(c, pool, settings.ContainmentPadding); found {
			sink.Trace(subsystem, "suppressing placement inside merged opening",
				"run", c.RunID, "host", c.HostID, "existing", container.ID)
			outcomes = append(outcomes, model.Outcome{
				RunID: c.RunID, HostID: c.HostID,
				Reason: model.ReasonContainedInExisting,
				Detail: "point inside envelope of opening " + container.ID,
			})
			continue
		}
		kept = append(kept, c)
		// Accepted candidates guard the rest of the batch too
		pool = append(pool, model.ExistingOpening{
			ID:          "pending:" + c.RunID,
			Kind:        c.Kind,
			HostKind:    c.HostKind,
			Orientation: c.Orientation,
			Center:      c.Point,
			Box:         c.BoundingBox(),
		})
	}
	return kept, outcomes
}

// edgeDistance returns the smallest gap between two opening boxes, zero
// when they touch or overlap. Clustering measures boundary separation,
// not center separation.
func edgeDistance(a, b model.BoundingBox) float64 {
	gap := func(minA, maxA, minB, maxB float64) float64 {
		if maxA < minB {
			return minB - maxA
		}
		if maxB < minA {
			return minA - maxB
		}
		return 0
	}
	gx := gap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
	gy := gap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
	gz := gap(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z)
	return math.Sqrt(gx*gx + gy*gy + gz*gz)
}

// openingBox returns the opening's envelope, synthesized from its center
// and dimensions when the stored box is missing. Width and height map
// onto world axes by orientation, the same way candidate boxes do.
func openingBox(o model.ExistingOpening) model.BoundingBox {
	if o.Box.IsValid() {
		return o.Box
	}
	hw, hh, hd := o.Width/2, o.Height/2, o.Depth/2
	var half model.Vector3
	switch o.Orientation {
	case model.OrientFloor:
		half = model.Vector3{X: hw, Y: hh, Z: hd}
	case model.OrientX:
		half = model.Vector3{X: hd, Y: hw, Z: hh}
	default:
		half = model.Vector3{X: hw, Y: hd, Z: hh}
	}
	return model.BoundingBox{
		Min: model.Point3D{X: o.Center.X - half.X, Y: o.Center.Y - half.Y, Z: o.Center.Z - half.Z},
		Max: model.Point3D{X: o.Center.X + half.X, Y: o.Center.Y + half.Y, Z: o.Center.Z + half.Z},
	}
}

// BuildClusters groups individual openings into maximal tolerance-connected
// components. Two openings are adjacent when they share a host kind and
// orientation axis and their edge-to-edge distance is at most the cluster
// tolerance. Merged (clustered/rectangular) openings never join a cluster,
// which is what makes the operation idempotent. Only components of size
// two or more are returned.
func BuildClusters(openings []model.ExistingOpening, tol float64) []model.Cluster {
	var members []model.ExistingOpening
	for _, o := range openings {
		if o.Kind == model.KindIndividual {
			members = append(members, o)
		}
	}
	if len(members) < 2 {
		return nil
	}

	parent := make([]int, len(members))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) { parent[find(i)] = find(j) }

	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if members[i].HostKind != members[j].HostKind {
				continue
			}
			if members[i].Orientation != members[j].Orientation {
				continue
			}
			if edgeDistance(openingBox(members[i]), openingBox(members[j])) <= tol {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]model.ExistingOpening)
	for i, m := range members {
		root := find(i)
		groups[root] = append(groups[root], m)
	}

	var clusters []model.Cluster
	for i := range members {
		if find(i) != i {
			continue
		}
		if g := groups[i]; len(g) >= 2 {
			clusters = append(clusters, model.Cluster{Members: g})
		}
	}
	return clusters
}
