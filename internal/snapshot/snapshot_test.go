package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jseaddons/sleevecut/internal/engine"
	"github.com/jseaddons/sleevecut/internal/model"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New("Block A")
	s.Runs = append(s.Runs, model.NewCircularRun("P1", 110,
		model.Point3D{X: -500, Y: 100, Z: 1200},
		model.Point3D{X: 3500, Y: 100, Z: 1200}))
	s.Hosts = append(s.Hosts, model.NewHost("W1", model.HostWall,
		model.BoxSolid(model.BoundingBox{
			Min: model.Point3D{X: 0, Y: 0, Z: 0},
			Max: model.Point3D{X: 4000, Y: 200, Z: 3000},
		})))
	s.Insulated = []string{s.Runs[0].ID}

	path := filepath.Join(t.TempDir(), "block-a.json")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Block A", loaded.Name)
	assert.Equal(t, currentVersion, loaded.Version)
	assert.NotEmpty(t, loaded.CreatedAt)
	require.Len(t, loaded.Runs, 1)
	assert.Equal(t, 110.0, loaded.Runs[0].Diameter)
	require.Len(t, loaded.Hosts, 1)
	assert.Equal(t, model.HostWall, loaded.Hosts[0].Kind)
	assert.True(t, loaded.Oracle().Insulated(s.Runs[0].ID))
	assert.False(t, loaded.Oracle().Insulated("other"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidContent(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, writeFile(bad, "{not json"))
	_, err := Load(bad)
	assert.Error(t, err)

	noVersion := filepath.Join(dir, "noversion.json")
	require.NoError(t, writeFile(noVersion, `{"name":"x","documents":[{"id":"host","is_host_doc":true}]}`))
	_, err = Load(noVersion)
	assert.ErrorContains(t, err, "version")

	noDocs := filepath.Join(dir, "nodocs.json")
	require.NoError(t, writeFile(noDocs, `{"version":"1.0.0","name":"x","documents":[]}`))
	_, err = Load(noDocs)
	assert.ErrorContains(t, err, "documents")
}

func TestEffectiveSettings(t *testing.T) {
	s := New("defaults")
	assert.Equal(t, model.DefaultSettings(), s.EffectiveSettings())

	custom := model.DefaultSettings()
	custom.ClusterTolerance = 250
	s.Settings = &custom
	assert.Equal(t, 250.0, s.EffectiveSettings().ClusterTolerance)
}

func TestProvider_FiltersByDocument(t *testing.T) {
	s := New("multi-doc")
	s.Documents = append(s.Documents, model.Document{
		ID: "linked", Label: "MEP link",
		Link: model.IdentityTransform(),
	})

	hostRun := model.NewCircularRun("host pipe", 50,
		model.Point3D{}, model.Point3D{X: 1000})
	linkedRun := model.NewCircularRun("linked pipe", 50,
		model.Point3D{}, model.Point3D{X: 1000})
	linkedRun.DocID = "linked"
	s.Runs = []model.LinearRun{hostRun, linkedRun}

	wall := model.NewHost("W1", model.HostWall, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 4000, Y: 200, Z: 3000},
	}))
	s.Hosts = []model.StructuralHost{wall}

	p := NewProvider(s)

	runs, err := p.Runs("host")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "host pipe", runs[0].Label)

	runs, err = p.Runs("linked")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "linked pipe", runs[0].Label)

	hosts, err := p.Hosts("host")
	require.NoError(t, err)
	assert.Len(t, hosts, 1)

	hosts, err = p.Hosts("linked")
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestProvider_OpeningsRegionFilter(t *testing.T) {
	s := New("openings")
	s.Openings = []model.ExistingOpening{
		{ID: "in", Center: model.Point3D{X: 100, Y: 100, Z: 100}},
		{ID: "out", Center: model.Point3D{X: 9000, Y: 9000, Z: 9000}},
	}
	p := NewProvider(s)

	all, err := p.Openings(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	region := &model.BoundingBox{Max: model.Point3D{X: 1000, Y: 1000, Z: 1000}}
	near, err := p.Openings(region)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "in", near[0].ID)
}

func TestProvider_CommitCreatesAndRemoves(t *testing.T) {
	s := New("commit")
	s.Openings = []model.ExistingOpening{{ID: "stale", Kind: model.KindIndividual}}
	p := NewProvider(s)

	result := p.Commit(engine.Batch{
		Creates: []model.PlacementCandidate{{
			RunID:       "r1",
			HostID:      "h1",
			HostKind:    model.HostWall,
			Kind:        model.KindIndividual,
			Orientation: model.OrientY,
			Point:       model.Point3D{X: 1000, Y: 100, Z: 1200},
			Width:       160, Height: 160, Depth: 200,
		}},
		Removals: []model.ExistingOpening{
			{ID: "stale"},
			{ID: "missing"},
		},
	})

	require.Len(t, result.CreatedIDs, 1)
	assert.NoError(t, result.CreateErrors[0])
	assert.NoError(t, result.RemoveErrors[0])
	assert.Error(t, result.RemoveErrors[1])

	require.Len(t, s.Openings, 1)
	created := s.Openings[0]
	assert.Equal(t, result.CreatedIDs[0], created.ID)
	assert.Equal(t, "h1", created.HostID)
	assert.Equal(t, 160.0, created.Width)
	assert.Equal(t, model.Point3D{X: 1000, Y: 100, Z: 1200}, created.Center)
}

func TestAppConfig_LoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), cfg.Settings)
	assert.NotNil(t, cfg.RecentSnapshots)
}

func TestAppConfig_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	cfg := DefaultAppConfig()
	cfg.Settings.ClearanceBare = 75
	cfg.AddRecentSnapshot("/jobs/block-a.json")
	cfg.AddRecentSnapshot("/jobs/block-b.json")
	cfg.AddRecentSnapshot("/jobs/block-a.json") // moves to front, no dup
	require.NoError(t, SaveAppConfig(path, cfg))

	loaded, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 75.0, loaded.Settings.ClearanceBare)
	assert.Equal(t, []string{"/jobs/block-a.json", "/jobs/block-b.json"}, loaded.RecentSnapshots)
}
