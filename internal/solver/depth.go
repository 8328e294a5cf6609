package solver

import (
	"fmt"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/model"
)

// Depth resolves the opening's extent through the host, dispatching on
// host kind. Wall and floor depths always resolve via their fallback
// chains; a framing member without its defining-width parameter is a hard
// error, because guessing a structural member's depth is not acceptable.
func Depth(host model.StructuralHost, settings model.Settings, sink diag.Sink) (float64, error) {
	switch host.Kind {
	case model.HostWall:
		return WallThickness(host, settings, sink), nil
	case model.HostFloor:
		return FloorThickness(host, settings, sink), nil
	case model.HostFraming:
		return FramingDepth(host)
	default:
		return 0, fmt.Errorf("no depth rule for host kind %s", host.Kind)
	}
}

// FloorThickness resolves a floor's thickness: instance parameter, then
// type parameter, then the fixed default with a diagnostic note.
func FloorThickness(host model.StructuralHost, settings model.Settings, sink diag.Sink) float64 {
	if v, ok := host.Param(model.ParamThickness); ok && v > 0 {
		return v
	}
	if v, ok := host.TypeParam(model.ParamThickness); ok && v > 0 {
		return v
	}
	sink.Trace(subsystem, "floor thickness parameter missing, using default",
		"host", host.ID, "default", settings.DefaultFloorThickness)
	return settings.DefaultFloorThickness
}

// FramingDepth resolves a framing member's defining width. There is no
// fallback: absence of the parameter fails this candidate.
func FramingDepth(host model.StructuralHost) (float64, error) {
	if v, ok := host.Param(model.ParamFramingWidth); ok && v > 0 {
		return v, nil
	}
	if v, ok := host.TypeParam(model.ParamFramingWidth); ok && v > 0 {
		return v, nil
	}
	return 0, fmt.Errorf("framing host %s lacks defining-width parameter %q", host.ID, model.ParamFramingWidth)
}
