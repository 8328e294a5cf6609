package engine

import (
	"context"
	"testing"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProvider is a fake geometry provider over in-memory collections.
type memProvider struct {
	docs   []model.Document
	runs   map[string][]model.LinearRun
	hosts  map[string][]model.StructuralHost
	region *model.BoundingBox
}

func (p *memProvider) Documents() ([]model.Document, error) { return p.docs, nil }
func (p *memProvider) Runs(docID string) ([]model.LinearRun, error) {
	return p.runs[docID], nil
}
func (p *memProvider) Hosts(docID string) ([]model.StructuralHost, error) {
	return p.hosts[docID], nil
}
func (p *memProvider) Region() (*model.BoundingBox, error) { return p.region, nil }

func testWall(label string) model.StructuralHost {
	w := model.NewHost(label, model.HostWall, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 6000, Y: 200, Z: 2700},
	}))
	w.Centerline = []model.Point3D{{Y: 100}, {X: 6000, Y: 100}}
	return w
}

func crossingRun(label string, x, diameter float64) model.LinearRun {
	return model.NewCircularRun(label, diameter,
		model.Point3D{X: x, Y: -2000, Z: 1200},
		model.Point3D{X: x, Y: 2200, Z: 1200},
	)
}

func newTestEngine(t *testing.T, provider *memProvider, sink *MemorySink, insulated MapOracle) *Engine {
	t.Helper()
	e, err := New(provider, sink, sink, insulated, diag.Nop{}, model.DefaultSettings())
	require.NoError(t, err)
	return e
}

func singleDocProvider(runs []model.LinearRun, hosts []model.StructuralHost) *memProvider {
	return &memProvider{
		docs:  []model.Document{{ID: "host", IsHostDoc: true}},
		runs:  map[string][]model.LinearRun{"host": runs},
		hosts: map[string][]model.StructuralHost{"host": hosts},
	}
}

func TestRun_PlacesSleevesForWallCrossings(t *testing.T) {
	provider := singleDocProvider(
		[]model.LinearRun{crossingRun("P1", 1000, 100), crossingRun("P2", 4000, 100)},
		[]model.StructuralHost{testWall("W1")},
	)
	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Placed())
	assert.Equal(t, 0, summary.Failed())

	placed := sink.All()
	require.Len(t, placed, 2)
	for _, o := range placed {
		assert.InDelta(t, 100.0, o.Center.Y, 1e-6, "centered in the wall thickness")
		assert.Equal(t, 200.0, o.Width, "100mm run + 2x50mm bare clearance")
	}
}

func TestRun_CrossDocumentTransformAppliedOnce(t *testing.T) {
	// The runs live in a linked document offset 25m from the host frame.
	link := model.IdentityTransform()
	link.Origin = model.Point3D{X: 25000}

	localRun := crossingRun("P1", 1000, 100)
	localRun.DocID = "mep"

	provider := &memProvider{
		docs: []model.Document{
			{ID: "host", IsHostDoc: true},
			{ID: "mep", Link: link},
		},
		runs:  map[string][]model.LinearRun{"mep": {localRun}},
		hosts: map[string][]model.StructuralHost{"host": {testWall("W1")}},
	}
	// The wall spans x=0..6000 in the common frame; the linked run at
	// local x=1000 lands at common x=26000 and misses it. A second wall
	// at the landing spot catches it.
	farWall := model.NewHost("W2", model.HostWall, model.BoxSolid(model.BoundingBox{
		Min: model.Point3D{X: 24000, Y: 0, Z: 0},
		Max: model.Point3D{X: 30000, Y: 200, Z: 2700},
	}))
	farWall.ID = "W2"
	farWall.Centerline = []model.Point3D{{X: 24000, Y: 100}, {X: 30000, Y: 100}}
	provider.hosts["host"] = append(provider.hosts["host"], farWall)

	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Placed())

	placed := sink.All()
	require.Len(t, placed, 1)
	assert.Equal(t, "W2", placed[0].HostID)
	assert.InDelta(t, 26000.0, placed[0].Center.X, 1e-6,
		"link transform applied exactly once: 1000 local + 25000 offset")
}

func TestRun_SecondInvocationPlacesNothing(t *testing.T) {
	provider := singleDocProvider(
		[]model.LinearRun{crossingRun("P1", 1000, 100), crossingRun("P2", 4000, 100)},
		[]model.StructuralHost{testWall("W1")},
	)
	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, nil)

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Placed())

	// Same unmodified model: the first run's outputs are now existing
	// openings, so every candidate is a duplicate.
	second, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Placed())
	assert.Equal(t, 2, second.Suppressed())
	assert.Len(t, sink.All(), 2, "no openings added on the second pass")
}

func TestRun_InsulationSelectsSmallerClearance(t *testing.T) {
	run := crossingRun("P1", 1000, 100)
	provider := singleDocProvider([]model.LinearRun{run}, []model.StructuralHost{testWall("W1")})
	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, MapOracle{run.ID: true})

	_, err := e.Run(context.Background())
	require.NoError(t, err)

	placed := sink.All()
	require.Len(t, placed, 1)
	assert.Equal(t, 150.0, placed[0].Width, "100 + 2x25 insulated clearance")
}

func TestRun_PerCandidateIsolation(t *testing.T) {
	// A framing host with no defining-width parameter fails its candidate;
	// the wall candidate in the same batch still places.
	beam := model.NewHost("B1", model.HostFraming, model.BoxSolid(model.BoundingBox{
		Min: model.Point3D{X: 3500, Y: -600, Z: 1000},
		Max: model.Point3D{X: 4500, Y: -400, Z: 1400},
	}))
	beam.SpanDirection = model.Vector3{X: 1}

	provider := singleDocProvider(
		[]model.LinearRun{crossingRun("P1", 1000, 100), crossingRun("P2", 4000, 100)},
		[]model.StructuralHost{testWall("W1"), beam},
	)
	sink := NewMemorySink(nil)
	rec := &diag.Recorder{}
	e, err := New(provider, sink, sink, nil, rec, model.DefaultSettings())
	require.NoError(t, err)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Placed(), "both wall crossings place")
	assert.Equal(t, 1, summary.Failed(), "the framing candidate fails alone")

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, model.ReasonMissingDepthParameter, failures[0].Reason)
	assert.NotEmpty(t, rec.BySeverity(diag.SeverityError), "hard failure reported with host identity")
}

func TestRun_SinkFailureDoesNotAbortBatch(t *testing.T) {
	runA := crossingRun("P1", 1000, 100)
	runB := crossingRun("P2", 4000, 100)
	provider := singleDocProvider(
		[]model.LinearRun{runA, runB},
		[]model.StructuralHost{testWall("W1")},
	)
	sink := NewMemorySink(nil)
	sink.FailCreates = map[string]bool{runA.ID: true}
	e := newTestEngine(t, provider, sink, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Placed())
	assert.Equal(t, 1, summary.Failed())
	require.Len(t, sink.All(), 1)
	assert.InDelta(t, 4000.0, sink.All()[0].Center.X, 1e-6, "surviving opening belongs to the other run")
}

func TestRun_CanceledContextAborts(t *testing.T) {
	provider := singleDocProvider(
		[]model.LinearRun{crossingRun("P1", 1000, 100)},
		[]model.StructuralHost{testWall("W1")},
	)
	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCluster_MergesCloselySpacedOpenings(t *testing.T) {
	// The two-runs scenario: 150mm runs crossing the same wall 60mm apart
	// edge-to-edge after clearance (250mm openings, centers 310mm apart).
	provider := singleDocProvider(
		[]model.LinearRun{crossingRun("P1", 1000, 150), crossingRun("P2", 1310, 150)},
		[]model.StructuralHost{testWall("W1")},
	)
	sink := NewMemorySink(nil)
	e := newTestEngine(t, provider, sink, nil)

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Placed(), "two individual placements on the first pass")

	clusterSummary, err := e.Cluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, clusterSummary.Placed(), "one rectangular replacement")

	remaining := sink.All()
	require.Len(t, remaining, 1, "both originals removed")
	r := remaining[0]
	assert.Equal(t, model.KindRectangular, r.Kind)
	// Envelope covers both original centers plus each run's half-opening
	assert.InDelta(t, 875.0, r.Box.Min.X, 1e-6)
	assert.InDelta(t, 1435.0, r.Box.Max.X, 1e-6)
	assert.InDelta(t, 1155.0, r.Center.X, 1e-6)

	// Clustering its own output is a no-op
	again, err := e.Cluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Placed())
	assert.Len(t, sink.All(), 1)
}

func TestNew_MissingCollaboratorsFailFast(t *testing.T) {
	sink := NewMemorySink(nil)
	provider := singleDocProvider(nil, nil)

	_, err := New(nil, sink, sink, nil, nil, model.DefaultSettings())
	assert.Error(t, err)
	_, err = New(provider, nil, sink, nil, nil, model.DefaultSettings())
	assert.Error(t, err)
	_, err = New(provider, sink, nil, nil, nil, model.DefaultSettings())
	assert.Error(t, err)
}
