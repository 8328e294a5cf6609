package solver

import (
	"testing"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorThickness_ParameterThenTypeThenDefault(t *testing.T) {
	settings := model.DefaultSettings()

	floor := testFloor()
	floor.Params = map[string]float64{model.ParamThickness: 250}
	assert.Equal(t, 250.0, FloorThickness(floor, settings, diag.Nop{}))

	floor = testFloor()
	floor.TypeParams = map[string]float64{model.ParamThickness: 220}
	assert.Equal(t, 220.0, FloorThickness(floor, settings, diag.Nop{}))

	rec := &diag.Recorder{}
	floor = testFloor()
	assert.Equal(t, settings.DefaultFloorThickness, FloorThickness(floor, settings, rec))
	require.NotEmpty(t, rec.BySeverity(diag.SeverityTrace), "default use leaves a diagnostic note")
}

func TestFramingDepth_NoFallback(t *testing.T) {
	beam := model.NewHost("B1", model.HostFraming, model.BoxSolid(model.BoundingBox{
		Max: model.Point3D{X: 6000, Y: 200, Z: 400},
	}))
	beam.TypeParams = map[string]float64{model.ParamFramingWidth: 200}

	d, err := FramingDepth(beam)
	require.NoError(t, err)
	assert.Equal(t, 200.0, d)

	beam.TypeParams = nil
	_, err = FramingDepth(beam)
	assert.Error(t, err, "missing defining width is a hard error, never guessed")
}

func TestDepth_DispatchesOnHostKind(t *testing.T) {
	settings := model.DefaultSettings()

	d, err := Depth(testWall(), settings, diag.Nop{})
	require.NoError(t, err)
	assert.InDelta(t, 200.0, d, 1e-6)

	d, err = Depth(testFloor(), settings, diag.Nop{})
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultFloorThickness, d)

	_, err = Depth(model.StructuralHost{Kind: model.HostUnknown}, settings, diag.Nop{})
	assert.Error(t, err)
}
