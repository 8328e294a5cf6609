package cli

import (
	"path/filepath"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/snapshot"
)

func TestImportRuns_RejectsUnsupportedFormat(t *testing.T) {
	_, err := importRuns("runs.pdf", importOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported run schedule format")
}

func TestImportRuns_DXFRequiresDiameter(t *testing.T) {
	_, err := importRuns("plan.dxf", importOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--diameter")
}

func TestImportHosts_RejectsUnsupportedFormat(t *testing.T) {
	_, err := importHosts("walls.dxf", importOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported host schedule format")
}

func TestLoadOrCreateSnapshot_CreatesWithDerivedName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block-a.json")
	snap, err := loadOrCreateSnapshot(importOpts{snapshotPath: path})
	require.NoError(t, err)
	assert.Equal(t, "block-a", snap.Name)
	require.Len(t, snap.Documents, 1)
	assert.True(t, snap.Documents[0].IsHostDoc)
}

func TestLoadOrCreateSnapshot_LoadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.json")
	existing := snapshot.New("Block B")
	require.NoError(t, existing.Save(path))

	snap, err := loadOrCreateSnapshot(importOpts{snapshotPath: path, name: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Block B", snap.Name)
}

func TestEffectiveSettings_SnapshotWins(t *testing.T) {
	custom := model.DefaultSettings()
	custom.ClearanceBare = 75

	snap := snapshot.New("s")
	snap.Settings = &custom

	got := effectiveSettings(snap, charmlog.Default())
	assert.Equal(t, 75.0, got.ClearanceBare)
}
