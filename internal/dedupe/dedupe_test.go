package dedupe

import (
	"testing"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opening(id string, kind model.OpeningKind, center model.Point3D, w, h, d float64) model.ExistingOpening {
	o := model.ExistingOpening{
		ID:          id,
		Kind:        kind,
		HostKind:    model.HostWall,
		Orientation: model.OrientY,
		Center:      center,
		Width:       w,
		Height:      h,
		Depth:       d,
	}
	o.Box = openingBox(o)
	return o
}

func candidate(runID string, point model.Point3D, w, h float64) model.PlacementCandidate {
	return model.PlacementCandidate{
		RunID:       runID,
		HostID:      "W1",
		HostKind:    model.HostWall,
		Kind:        model.KindIndividual,
		Orientation: model.OrientY,
		Point:       point,
		Width:       w,
		Height:      h,
		Depth:       200,
	}
}

func TestSuppress_PointProximitySameKindOnly(t *testing.T) {
	settings := model.DefaultSettings()
	existing := []model.ExistingOpening{
		opening("E1", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 200, 200, 200),
	}

	// Within tolerance of a same-kind opening: suppressed
	kept, outcomes := Suppress(
		[]model.PlacementCandidate{candidate("P1", model.Point3D{X: 1005, Y: 100, Z: 1200}, 200, 200)},
		existing, settings, diag.Nop{})
	assert.Empty(t, kept)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ReasonDuplicatePoint, outcomes[0].Reason)

	// Same location but the existing opening is rectangular: the
	// point-proximity test is kind-scoped, and the point is also inside
	// the rectangular envelope, so containment catches it instead.
	rect := []model.ExistingOpening{
		opening("E2", model.KindRectangular, model.Point3D{X: 1000, Y: 100, Z: 1200}, 600, 400, 200),
	}
	kept, outcomes = Suppress(
		[]model.PlacementCandidate{candidate("P1", model.Point3D{X: 1005, Y: 100, Z: 1200}, 200, 200)},
		rect, settings, diag.Nop{})
	assert.Empty(t, kept)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ReasonContainedInExisting, outcomes[0].Reason)
}

func TestSuppress_ContainmentCatchesFarCenter(t *testing.T) {
	settings := model.DefaultSettings()
	// Wide merged opening: center 700mm away from the candidate but the
	// envelope spans the candidate's location.
	existing := []model.ExistingOpening{
		opening("E1", model.KindRectangular, model.Point3D{X: 1700, Y: 100, Z: 1200}, 1600, 400, 200),
	}

	kept, outcomes := Suppress(
		[]model.PlacementCandidate{candidate("P1", model.Point3D{X: 1000, Y: 100, Z: 1200}, 200, 200)},
		existing, settings, diag.Nop{})

	assert.Empty(t, kept)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ReasonContainedInExisting, outcomes[0].Reason)
}

func TestSuppress_DistinctPlacementsSurvive(t *testing.T) {
	settings := model.DefaultSettings()
	// Two runs 60mm apart: distinct as placements (above the proximity
	// tolerance); merging them is the clustering pass's job, not
	// suppression's.
	cands := []model.PlacementCandidate{
		candidate("P1", model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250),
		candidate("P2", model.Point3D{X: 1210, Y: 100, Z: 1200}, 250, 250),
	}

	kept, outcomes := Suppress(cands, nil, settings, diag.Nop{})
	assert.Len(t, kept, 2)
	assert.Empty(t, outcomes)
}

func TestSuppress_BatchInternalDuplicates(t *testing.T) {
	settings := model.DefaultSettings()
	cands := []model.PlacementCandidate{
		candidate("P1", model.Point3D{X: 1000, Y: 100, Z: 1200}, 200, 200),
		candidate("P1-again", model.Point3D{X: 1003, Y: 100, Z: 1200}, 200, 200),
	}

	kept, outcomes := Suppress(cands, nil, settings, diag.Nop{})
	assert.Len(t, kept, 1)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "P1-again", outcomes[0].RunID)
}

func TestBuildClusters_EdgeToEdgeTolerance(t *testing.T) {
	// Two 250mm openings whose centers sit 310mm apart: edge-to-edge gap
	// is 60mm, under the 100mm tolerance.
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	b := opening("B", model.KindIndividual, model.Point3D{X: 1310, Y: 100, Z: 1200}, 250, 250, 200)
	// A third opening far away stays alone
	c := opening("C", model.KindIndividual, model.Point3D{X: 5000, Y: 100, Z: 1200}, 250, 250, 200)

	clusters := BuildClusters([]model.ExistingOpening{a, b, c}, 100)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 2)
}

func TestBuildClusters_RequiresSameHostKindAndOrientation(t *testing.T) {
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	b := opening("B", model.KindIndividual, model.Point3D{X: 1310, Y: 100, Z: 1200}, 250, 250, 200)
	b.HostKind = model.HostFloor
	b.Orientation = model.OrientFloor

	clusters := BuildClusters([]model.ExistingOpening{a, b}, 100)
	assert.Empty(t, clusters, "different host kinds never cluster")
}

func TestBuildClusters_TransitiveChain(t *testing.T) {
	// A-B and B-C within tolerance, A-C not: one connected component of 3.
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	b := opening("B", model.KindIndividual, model.Point3D{X: 1330, Y: 100, Z: 1200}, 250, 250, 200)
	c := opening("C", model.KindIndividual, model.Point3D{X: 1660, Y: 100, Z: 1200}, 250, 250, 200)

	clusters := BuildClusters([]model.ExistingOpening{a, b, c}, 100)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 3)
}

func TestBuildClusters_MergedOpeningsNeverJoin(t *testing.T) {
	a := opening("A", model.KindRectangular, model.Point3D{X: 1000, Y: 100, Z: 1200}, 600, 400, 200)
	b := opening("B", model.KindRectangular, model.Point3D{X: 1500, Y: 100, Z: 1200}, 600, 400, 200)

	assert.Empty(t, BuildClusters([]model.ExistingOpening{a, b}, 100),
		"clustering its own output detects nothing; the operation is idempotent")
}

func TestPlanReplacements_EnvelopeCoversMembers(t *testing.T) {
	settings := model.DefaultSettings()
	// Two 250mm openings on the same wall, 310mm apart center-to-center,
	// so 60mm edge-to-edge: inside the 100mm cluster tolerance.
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	a.HostID = "W1"
	b := opening("B", model.KindIndividual, model.Point3D{X: 1310, Y: 100, Z: 1200}, 250, 250, 200)
	b.HostID = "W1"

	clusters := BuildClusters([]model.ExistingOpening{a, b}, settings.ClusterTolerance)
	require.Len(t, clusters, 1)

	plans, suppressed := PlanReplacements(clusters, nil, nil, settings, diag.Nop{})
	require.Len(t, plans, 1)
	assert.Empty(t, suppressed)

	r := plans[0].Candidate
	assert.Equal(t, model.KindRectangular, r.Kind)
	assert.Equal(t, "W1", r.HostID)
	// Envelope spans from A's left edge to B's right edge
	assert.InDelta(t, 560.0, r.Width, 1e-9)
	assert.InDelta(t, 250.0, r.Height, 1e-9)
	assert.InDelta(t, 200.0, r.Depth, 1e-9)
	// Midpoint between the outer edges, at the members' average Y
	assert.InDelta(t, 1155.0, r.Point.X, 1e-9)
	assert.InDelta(t, 100.0, r.Point.Y, 1e-9)
	assert.InDelta(t, 1200.0, r.Point.Z, 1e-9)

	assert.Len(t, plans[0].Removals, 2, "both originals scheduled for removal")
}

func TestPlanReplacements_SuppressedWhenAlreadyMerged(t *testing.T) {
	settings := model.DefaultSettings()
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	b := opening("B", model.KindIndividual, model.Point3D{X: 1310, Y: 100, Z: 1200}, 250, 250, 200)
	already := opening("R", model.KindRectangular, model.Point3D{X: 1155, Y: 100, Z: 1200}, 560, 250, 200)

	clusters := BuildClusters([]model.ExistingOpening{a, b, already}, settings.ClusterTolerance)
	require.Len(t, clusters, 1, "the rectangular opening is not a member")

	plans, suppressed := PlanReplacements(clusters, []model.ExistingOpening{already}, nil, settings, diag.Nop{})
	assert.Empty(t, plans)
	require.Len(t, suppressed, 1)
}

func TestPlanReplacements_DuplicateCheckUsesStrictTolerance(t *testing.T) {
	settings := model.DefaultSettings()
	a := opening("A", model.KindIndividual, model.Point3D{X: 1000, Y: 100, Z: 1200}, 250, 250, 200)
	b := opening("B", model.KindIndividual, model.Point3D{X: 1310, Y: 100, Z: 1200}, 250, 250, 200)

	clusters := BuildClusters([]model.ExistingOpening{a, b}, settings.ClusterTolerance)
	require.Len(t, clusters, 1)

	// A rectangular record 5 mm off the envelope midpoint, with no resolved
	// box geometry. That is inside the general proximity tolerance but
	// outside the tighter identity applied to merged openings, so the
	// replacement is still planned.
	near := opening("R", model.KindRectangular, model.Point3D{X: 1160, Y: 100, Z: 1200}, 560, 250, 200)
	near.Box = model.BoundingBox{}

	plans, suppressed := PlanReplacements(clusters, []model.ExistingOpening{near}, nil, settings, diag.Nop{})
	require.Len(t, plans, 1)
	assert.Empty(t, suppressed)

	// Within the strict tolerance it counts as the same opening.
	near.Center.X = 1156
	plans, suppressed = PlanReplacements(clusters, []model.ExistingOpening{near}, nil, settings, diag.Nop{})
	assert.Empty(t, plans)
	require.Len(t, suppressed, 1)
	assert.Equal(t, model.ReasonDuplicatePoint, suppressed[0].Reason)
}

func TestEdgeDistance(t *testing.T) {
	a := model.BoundingBox{Max: model.Point3D{X: 100, Y: 100, Z: 100}}
	b := model.BoundingBox{
		Min: model.Point3D{X: 160, Y: 0, Z: 0},
		Max: model.Point3D{X: 260, Y: 100, Z: 100},
	}
	assert.InDelta(t, 60.0, edgeDistance(a, b), 1e-9)

	overlapping := model.BoundingBox{
		Min: model.Point3D{X: 50, Y: 50, Z: 50},
		Max: model.Point3D{X: 150, Y: 150, Z: 150},
	}
	assert.Equal(t, 0.0, edgeDistance(a, overlapping))
}
