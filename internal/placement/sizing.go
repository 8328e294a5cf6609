package placement

import (
	"fmt"

	"github.com/jseaddons/sleevecut/internal/model"
)

// ClearanceAdjusted derives the final opening size from the run's declared
// cross-section plus a clearance allowance on every side: a smaller
// allowance when the run carries insulation (the insulation itself fills
// part of the gap), a larger one otherwise.
//
// A final dimension below the positive floor or above the plausibility
// ceiling is rejected rather than clamped; either indicates an upstream
// unit or parameter-lookup error.
func ClearanceAdjusted(run model.LinearRun, insulated bool, settings model.Settings) (w, h float64, err error) {
	clearance := settings.ClearanceBare
	if insulated {
		clearance = settings.ClearanceInsulated
	}

	rw, rh := run.CrossSection()
	w = rw + 2*clearance
	h = rh + 2*clearance

	for _, dim := range []float64{w, h} {
		if dim < settings.MinDimension {
			return 0, 0, fmt.Errorf("implausible opening dimension %.1fmm below floor %.1fmm for run %s",
				dim, settings.MinDimension, run.ID)
		}
		if dim > settings.MaxDimension {
			return 0, 0, fmt.Errorf("implausible opening dimension %.1fmm above ceiling %.1fmm for run %s",
				dim, settings.MaxDimension, run.ID)
		}
	}
	return w, h, nil
}
