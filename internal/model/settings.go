package model

// Settings holds every tolerance and default the engine uses. Tolerances
// are deliberately per-operation rather than one global constant: point
// identity checks use small values, clustering uses a much larger one.
// All values are mm unless noted.
type Settings struct {
	// Duplicate suppression
	ProximityTolerance   float64 `json:"proximity_tolerance"`    // same-kind center identity
	ContainmentPadding   float64 `json:"containment_padding"`    // bbox expansion for containment tests
	StrictPointTolerance float64 `json:"strict_point_tolerance"` // tighter identity used after clustering

	// Clustering
	ClusterTolerance float64 `json:"cluster_tolerance"` // edge-to-edge merge distance

	// Clearance & sizing
	ClearanceInsulated float64 `json:"clearance_insulated"` // per side, insulated runs
	ClearanceBare      float64 `json:"clearance_bare"`      // per side, uninsulated runs
	MinDimension       float64 `json:"min_dimension"`       // reject final sizes below this
	MaxDimension       float64 `json:"max_dimension"`       // reject final sizes above this

	// Placement
	CenteringRatio      float64 `json:"centering_ratio"`       // overlap fraction forcing wall centering
	EndFittingThreshold float64 `json:"end_fitting_threshold"` // crossing-to-run-end distance for end fittings
	OriginEpsilon       float64 `json:"origin_epsilon"`        // degenerate-origin rejection radius

	// Geometry
	MinSolidVolume float64 `json:"min_solid_volume"` // cubic mm; below this a host has no usable geometry

	// Depth fallbacks
	DefaultWallThickness  float64 `json:"default_wall_thickness"`
	DefaultFloorThickness float64 `json:"default_floor_thickness"`
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		ProximityTolerance:   10.0,
		ContainmentPadding:   10.0,
		StrictPointTolerance: 2.0,
		ClusterTolerance:     100.0,

		ClearanceInsulated: 25.0,
		ClearanceBare:      50.0,
		MinDimension:       1.0,
		MaxDimension:       10000.0,

		CenteringRatio:      0.90,
		EndFittingThreshold: 25.0,
		OriginEpsilon:       1.0,

		MinSolidVolume: 1.0,

		DefaultWallThickness:  200.0,
		DefaultFloorThickness: 300.0,
	}
}
