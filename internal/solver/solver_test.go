package solver

import (
	"testing"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWall builds a 3000x200x2700 wall running along X with its centerline
// at y=100.
func testWall() model.StructuralHost {
	w := model.NewHost("W1", model.HostWall, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 3000, Y: 200, Z: 2700},
	}))
	w.Centerline = []model.Point3D{{Y: 100}, {X: 3000, Y: 100}}
	return w
}

// testFloor builds a slab with faces at z=0 and z=300.
func testFloor() model.StructuralHost {
	return model.NewHost("F1", model.HostFloor, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 5000, Y: 5000, Z: 300},
	}))
}

func TestSolve_RunThroughWallHasEntryAndExit(t *testing.T) {
	wall := testWall()
	run := model.NewCircularRun("P1", 100,
		model.Point3D{X: 1500, Y: -500, Z: 1200},
		model.Point3D{X: 1500, Y: 700, Z: 1200},
	)

	x := Solve(run, wall)

	require.Len(t, x.Points, 2, "perpendicular crossing hits both wall faces")
	entry, exit, ok := EntryExit(x.Points)
	require.True(t, ok)
	assert.InDelta(t, 200.0, entry.DistanceTo(exit), 1e-6, "entry/exit spans the wall thickness")
}

func TestSolve_RunMissingHostIsEmpty(t *testing.T) {
	wall := testWall()
	run := model.NewCircularRun("P1", 100,
		model.Point3D{X: 1500, Y: -500, Z: 5000},
		model.Point3D{X: 1500, Y: 700, Z: 5000},
	)

	x := Solve(run, wall)
	assert.True(t, x.IsEmpty(), "a miss is a normal outcome, not an error")
}

func TestSolve_RunEndingInsideWallHasOnePoint(t *testing.T) {
	wall := testWall()
	// Run enters through the front face and stops inside the material
	run := model.NewCircularRun("P1", 100,
		model.Point3D{X: 1500, Y: -500, Z: 1200},
		model.Point3D{X: 1500, Y: 100, Z: 1200},
	)

	x := Solve(run, wall)
	require.Len(t, x.Points, 1)
	assert.InDelta(t, 0.0, x.Points[0].Y, 1e-6)
}

func TestCanonicalPoint_MidpointOfMaxDistancePair(t *testing.T) {
	// Vertical riser through a 300mm slab: faces at z=0 and z=300.
	floor := testFloor()
	run := model.NewCircularRun("R1", 150,
		model.Point3D{X: 2000, Y: 2000, Z: -1000},
		model.Point3D{X: 2000, Y: 2000, Z: 1000},
	)

	x := Solve(run, floor)
	require.GreaterOrEqual(t, len(x.Points), 2)

	p, ok := CanonicalPoint(x.Points)
	require.True(t, ok)
	assert.InDelta(t, 150.0, p.Z, 1e-6, "placement lands mid-slab")
}

func TestCanonicalPoint_IgnoresNearDuplicateTessellationPoints(t *testing.T) {
	// Simulate non-planar tessellation noise: clusters of points near the
	// true entry and exit. The max-distance pair still spans the slab.
	points := []model.Point3D{
		{X: 2000, Y: 2000, Z: 0},
		{X: 2000.2, Y: 2000.1, Z: 0.3},
		{X: 2000.1, Y: 1999.8, Z: 0.1},
		{X: 2000, Y: 2000, Z: 300},
		{X: 1999.9, Y: 2000.2, Z: 299.8},
	}

	p, ok := CanonicalPoint(points)
	require.True(t, ok)
	assert.InDelta(t, 150.0, p.Z, 0.5)
}

func TestCanonicalPoint_SinglePointUsedDirectly(t *testing.T) {
	p, ok := CanonicalPoint([]model.Point3D{{X: 1, Y: 2, Z: 3}})
	require.True(t, ok)
	assert.Equal(t, model.Point3D{X: 1, Y: 2, Z: 3}, p)

	_, ok = CanonicalPoint(nil)
	assert.False(t, ok)
}

func TestSolve_OutputIsCommonFrame_NeverRetransformed(t *testing.T) {
	// The wall lives in a linked document 25m away. Resolve it into the
	// common frame once, solve, and verify the crossing points match the
	// known-correct reference. Applying the link transform to the output a
	// second time displaces it by the full link offset, which is how the
	// double-transform defect class announces itself.
	link := model.IdentityTransform()
	link.Origin = model.Point3D{X: 25000, Y: -13000}

	localWall := testWall()
	commonWall := localWall.Transformed(link)

	run := model.NewCircularRun("P1", 100,
		model.Point3D{X: 26500, Y: -13500, Z: 1200},
		model.Point3D{X: 26500, Y: -12300, Z: 1200},
	)

	x := Solve(run, commonWall)
	require.Len(t, x.Points, 2)

	p, ok := CanonicalPoint(x.Points)
	require.True(t, ok)
	// Known-correct reference: mid-wall in the common frame
	assert.InDelta(t, 26500.0, p.X, 1e-6)
	assert.InDelta(t, -12900.0, p.Y, 1e-6)

	// The doubly transformed point is tens of thousands of mm away
	doubled := link.Apply(p)
	assert.Greater(t, doubled.DistanceTo(p), 10000.0,
		"re-transforming a common-frame point displaces it by the link magnitude")
}

func TestHasUsableGeometry(t *testing.T) {
	settings := model.DefaultSettings()

	assert.True(t, HasUsableGeometry(testWall(), settings))

	empty := model.StructuralHost{Kind: model.HostWall}
	assert.False(t, HasUsableGeometry(empty, settings))

	sliver := model.NewHost("S", model.HostWall, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 1, Y: 1, Z: 0.0001},
	}))
	assert.False(t, HasUsableGeometry(sliver, settings), "negligible volume is unusable")
}

func TestWallNormal_FromLargestVerticalFace(t *testing.T) {
	wall := testWall()
	wall.ExteriorNormal = model.Vector3{}

	n := WallNormal(wall, diag.Nop{})
	// The 3000x2700 side faces dominate; their normal is +-Y
	assert.InDelta(t, 1.0, absf(n.Y), 1e-6)
	assert.InDelta(t, 0.0, n.Z, 1e-6)
}

func TestWallNormal_CenterlineFallback(t *testing.T) {
	wall := model.StructuralHost{
		Kind:       model.HostWall,
		Centerline: []model.Point3D{{}, {X: 3000}},
	}

	n := WallNormal(wall, diag.Nop{})
	assert.InDelta(t, 1.0, absf(n.Y), 1e-6, "perpendicular to the X-running centerline")
}

func TestWallThickness_FallbackChain(t *testing.T) {
	settings := model.DefaultSettings()

	// Explicit instance parameter wins
	wall := testWall()
	wall.Params = map[string]float64{model.ParamWidth: 240}
	assert.Equal(t, 240.0, WallThickness(wall, settings, diag.Nop{}))

	// No parameter: geometric width along the normal
	wall = testWall()
	assert.InDelta(t, 200.0, WallThickness(wall, settings, diag.Nop{}), 1e-6)

	// No geometry either: type parameter
	bare := model.StructuralHost{
		Kind:       model.HostWall,
		TypeParams: map[string]float64{model.ParamWidth: 175},
		Centerline: []model.Point3D{{}, {X: 3000}},
	}
	assert.Equal(t, 175.0, WallThickness(bare, settings, diag.Nop{}))

	// Nothing at all: fixed default, traced
	rec := &diag.Recorder{}
	none := model.StructuralHost{Kind: model.HostWall, Centerline: []model.Point3D{{}, {X: 3000}}}
	assert.Equal(t, settings.DefaultWallThickness, WallThickness(none, settings, rec))
	assert.NotEmpty(t, rec.BySeverity(diag.SeverityTrace))
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
