package dedupe

import (
	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

// Replacement is one planned cluster merge: a single rectangular opening
// to create and the member openings it supersedes.
type Replacement struct {
	Candidate model.PlacementCandidate
	Removals  []model.ExistingOpening
}

// axisIndex selects a world axis component by index (0=X, 1=Y, 2=Z).
func axisValue(p model.Point3D, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// planarAxes maps an orientation to its two planar world axes and the
// through-host axis. Width is always measured along the first planar axis
// and height along the second; the assignment never swaps with
// orientation, so replacement extents stay consistent.
func planarAxes(orientation model.Orientation) (a1, a2, through int) {
	switch orientation {
	case model.OrientFloor:
		return 0, 1, 2 // width X, height Y, through Z
	case model.OrientX:
		return 1, 2, 0 // width Y, height Z, through X
	default:
		return 0, 2, 1 // width X, height Z, through Y
	}
}

// PlanReplacements turns each cluster into a single rectangular opening
// covering the members' envelope, suppressed when a merged opening of the
// same kind already sits at that location. Hosts, when provided, enable a
// sanity warning for envelopes exceeding the host's own extent.
func PlanReplacements(clusters []model.Cluster, existing []model.ExistingOpening, hosts map[string]model.StructuralHost, settings model.Settings, sink diag.Sink) ([]Replacement, []model.Outcome) {
	var plans []Replacement
	var outcomes []model.Outcome

	for _, cluster := range clusters {
		cand := replacementCandidate(cluster)

		if dup, found := FindDuplicate(cand, existing, settings.StrictPointTolerance); found {
			sink.Trace(subsystem, "replacement already exists", "host", cand.HostID, "existing", dup.ID)
			outcomes = append(outcomes, model.Outcome{
				HostID: cand.HostID,
				Reason: model.ReasonDuplicatePoint,
				Detail: "rectangular replacement coincides with opening " + dup.ID,
			})
			continue
		}
		if container, found := FindContaining(cand, existing, settings.ContainmentPadding); found {
			sink.Trace(subsystem, "replacement inside existing merged opening",
				"host", cand.HostID, "existing", container.ID)
			outcomes = append(outcomes, model.Outcome{
				HostID: cand.HostID,
				Reason: model.ReasonContainedInExisting,
				Detail: "rectangular replacement inside envelope of opening " + container.ID,
			})
			continue
		}

		if host, ok := hosts[cand.HostID]; ok {
			if hostBox, ok := host.BoundingBox(); ok && !hostBox.Expanded(1.0).Contains(cand.Point) {
				sink.Warn(subsystem, "replacement envelope midpoint outside host extent",
					"host", cand.HostID)
			}
		}

		plans = append(plans, Replacement{Candidate: cand, Removals: cluster.Members})
	}
	return plans, outcomes
}

// replacementCandidate computes the rectangular opening for one cluster:
// planar extents from the min/max envelope of the member boxes, depth from
// the members' through-host depth, placement point at the envelope
// midpoint at the members' average through-axis position.
func replacementCandidate(cluster model.Cluster) model.PlacementCandidate {
	first := cluster.Members[0]
	a1, a2, through := planarAxes(first.Orientation)

	env := openingBox(cluster.Members[0])
	depth := first.Depth
	var throughSum float64
	for _, m := range cluster.Members {
		env = env.Union(openingBox(m))
		if m.Depth > depth {
			depth = m.Depth
		}
		throughSum += axisValue(m.Center, through)
	}
	throughAvg := throughSum / float64(len(cluster.Members))

	mid := env.Center()
	point := model.Point3D{}
	set := func(axis int, v float64) {
		switch axis {
		case 0:
			point.X = v
		case 1:
			point.Y = v
		default:
			point.Z = v
		}
	}
	set(a1, axisValue(mid, a1))
	set(a2, axisValue(mid, a2))
	set(through, throughAvg)

	ext := env.Extent()
	return model.PlacementCandidate{
		HostID:           first.HostID,
		HostKind:         first.HostKind,
		Kind:             model.KindRectangular,
		Point:            point,
		Orientation:      first.Orientation,
		Width:            axisValue(model.Point3D{X: ext.X, Y: ext.Y, Z: ext.Z}, a1),
		Height:           axisValue(model.Point3D{X: ext.X, Y: ext.Y, Z: ext.Z}, a2),
		Depth:            depth,
		ClearanceApplied: true, // member sizes already carry clearance
	}
}
