package model

import "github.com/google/uuid"

// Profile represents a linear run's cross-section kind.
type Profile int

const (
	ProfileCircular    Profile = iota // Round pipe/duct: Diameter
	ProfileRectangular                // Rectangular duct/tray: Width x Height
)

func (p Profile) String() string {
	if p == ProfileRectangular {
		return "Rectangular"
	}
	return "Circular"
}

// LinearRun is a straight or piecewise-linear service element (pipe, duct,
// cable tray): a centerline plus a cross-section. Geometry is in the owning
// document's local frame until resolved; runs are immutable snapshots for
// the duration of one invocation.
type LinearRun struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	DocID      string    `json:"doc_id"`
	Profile    Profile   `json:"profile"`
	Diameter   float64   `json:"diameter,omitempty"` // mm, circular runs
	Width      float64   `json:"width,omitempty"`    // mm, rectangular runs
	Height     float64   `json:"height,omitempty"`   // mm, rectangular runs
	Centerline []Point3D `json:"centerline"`         // ordered, at least 2 points
}

// NewCircularRun creates a circular run with a fresh short ID.
func NewCircularRun(label string, diameter float64, centerline ...Point3D) LinearRun {
	return LinearRun{
		ID:         uuid.New().String()[:8],
		Label:      label,
		Profile:    ProfileCircular,
		Diameter:   diameter,
		Centerline: centerline,
	}
}

// NewRectangularRun creates a rectangular run with a fresh short ID.
func NewRectangularRun(label string, w, h float64, centerline ...Point3D) LinearRun {
	return LinearRun{
		ID:         uuid.New().String()[:8],
		Label:      label,
		Profile:    ProfileRectangular,
		Width:      w,
		Height:     h,
		Centerline: centerline,
	}
}

// CrossSection returns the run's width and height regardless of profile;
// circular runs report Diameter for both.
func (r LinearRun) CrossSection() (w, h float64) {
	if r.Profile == ProfileCircular {
		return r.Diameter, r.Diameter
	}
	return r.Width, r.Height
}

// Length returns the total centerline length.
func (r LinearRun) Length() float64 {
	var total float64
	for i := 1; i < len(r.Centerline); i++ {
		total += r.Centerline[i].DistanceTo(r.Centerline[i-1])
	}
	return total
}

// Direction returns the unit vector from the first to the last
// centerline point.
func (r LinearRun) Direction() Vector3 {
	if len(r.Centerline) < 2 {
		return Vector3{}
	}
	return r.Centerline[len(r.Centerline)-1].Sub(r.Centerline[0]).Normalized()
}

// Segments returns the centerline as consecutive point pairs.
func (r LinearRun) Segments() [][2]Point3D {
	if len(r.Centerline) < 2 {
		return nil
	}
	segs := make([][2]Point3D, 0, len(r.Centerline)-1)
	for i := 1; i < len(r.Centerline); i++ {
		segs = append(segs, [2]Point3D{r.Centerline[i-1], r.Centerline[i]})
	}
	return segs
}

// BoundingBox returns the axis-aligned box around the centerline, grown by
// half the cross-section so the run's body is covered, not just its axis.
func (r LinearRun) BoundingBox() (BoundingBox, bool) {
	box, ok := BoxFromPoints(r.Centerline)
	if !ok {
		return BoundingBox{}, false
	}
	w, h := r.CrossSection()
	half := w
	if h > half {
		half = h
	}
	return box.Expanded(half / 2), true
}

// Transformed returns a copy of the run with its centerline mapped into
// another frame.
func (r LinearRun) Transformed(t Transform) LinearRun {
	out := r
	out.Centerline = make([]Point3D, len(r.Centerline))
	for i, p := range r.Centerline {
		out.Centerline[i] = t.Apply(p)
	}
	return out
}

// HostKind tags the structural element variety a run may penetrate.
type HostKind int

const (
	HostUnknown HostKind = iota
	HostWall
	HostFloor
	HostFraming
)

func (k HostKind) String() string {
	switch k {
	case HostWall:
		return "Wall"
	case HostFloor:
		return "Floor"
	case HostFraming:
		return "Framing"
	default:
		return "Unknown"
	}
}

// Well-known parameter names for host thickness/depth lookup.
const (
	ParamWidth        = "width"     // wall instance width
	ParamThickness    = "thickness" // floor type thickness
	ParamFramingWidth = "b"         // framing defining width
)

// StructuralHost is a solid-bearing element of kind wall, floor, or
// framing. Geometry is in the owning document's local frame until
// resolved. Kind-specific fields are zero for other kinds.
type StructuralHost struct {
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	DocID      string             `json:"doc_id"`
	Kind       HostKind           `json:"kind"`
	Solid      Solid              `json:"solid"`
	Params     map[string]float64 `json:"params,omitempty"`      // instance parameters
	TypeParams map[string]float64 `json:"type_params,omitempty"` // type-level parameters

	// Wall only
	Centerline     []Point3D `json:"centerline,omitempty"` // two points along the wall axis
	ExteriorNormal Vector3   `json:"exterior_normal,omitempty"`

	// Framing only
	SpanDirection Vector3 `json:"span_direction,omitempty"`
}

// NewHost creates a host of the given kind with a fresh short ID.
func NewHost(label string, kind HostKind, solid Solid) StructuralHost {
	return StructuralHost{
		ID:    uuid.New().String()[:8],
		Label: label,
		Kind:  kind,
		Solid: solid,
	}
}

// Param looks up an instance parameter.
func (h StructuralHost) Param(name string) (float64, bool) {
	v, ok := h.Params[name]
	return v, ok
}

// TypeParam looks up a type-level parameter.
func (h StructuralHost) TypeParam(name string) (float64, bool) {
	v, ok := h.TypeParams[name]
	return v, ok
}

// BoundingBox returns the box around the host solid.
func (h StructuralHost) BoundingBox() (BoundingBox, bool) {
	return h.Solid.BoundingBox()
}

// Transformed returns a copy of the host with all geometry mapped into
// another frame.
func (h StructuralHost) Transformed(t Transform) StructuralHost {
	out := h
	out.Solid = h.Solid.Transformed(t)
	if len(h.Centerline) > 0 {
		out.Centerline = make([]Point3D, len(h.Centerline))
		for i, p := range h.Centerline {
			out.Centerline[i] = t.Apply(p)
		}
	}
	if !h.ExteriorNormal.IsZero() {
		out.ExteriorNormal = t.ApplyVector(h.ExteriorNormal)
	}
	if !h.SpanDirection.IsZero() {
		out.SpanDirection = t.ApplyVector(h.SpanDirection)
	}
	return out
}

// Intersection is the result of testing one run against one host.
// All points are expressed in the common frame; callers must never apply a
// frame transform to them again.
type Intersection struct {
	RunID  string    `json:"run_id"`
	HostID string    `json:"host_id"`
	Points []Point3D `json:"points"`
}

// IsEmpty reports whether the run misses the host entirely.
func (x Intersection) IsEmpty() bool { return len(x.Points) == 0 }

// Orientation is the local axis of an opening's long dimension.
type Orientation int

const (
	OrientUnknown Orientation = iota
	OrientX                   // aligned with the world X axis
	OrientY                   // aligned with the world Y axis
	OrientFloor               // floor-hosted, vertical through-axis
)

func (o Orientation) String() string {
	switch o {
	case OrientX:
		return "X"
	case OrientY:
		return "Y"
	case OrientFloor:
		return "Floor"
	default:
		return "Unknown"
	}
}

// OpeningKind tags the semantic family of a placed opening.
type OpeningKind int

const (
	KindIndividual  OpeningKind = iota // one opening for one run crossing
	KindClustered                      // legacy merged opening read back from the model
	KindRectangular                    // rectangular replacement created by clustering
)

func (k OpeningKind) String() string {
	switch k {
	case KindClustered:
		return "Clustered"
	case KindRectangular:
		return "Rectangular"
	default:
		return "Individual"
	}
}

// PlacementCandidate is a fully derived opening ready for the placement
// sink: canonical point, orientation, clearance-adjusted size, and
// through-host depth, all in the common frame.
type PlacementCandidate struct {
	RunID            string      `json:"run_id"`
	HostID           string      `json:"host_id"`
	HostKind         HostKind    `json:"host_kind"`
	Kind             OpeningKind `json:"kind"`
	Point            Point3D     `json:"point"`
	Orientation      Orientation `json:"orientation"`
	Width            float64     `json:"width"`   // mm, clearance-adjusted
	Height           float64     `json:"height"`  // mm, clearance-adjusted
	Depth            float64     `json:"depth"`   // mm, through the host
	Rotated          bool        `json:"rotated"` // long axis rotated 90 degrees
	ClearanceApplied bool        `json:"clearance_applied"`
}

// BoundingBox returns the candidate's envelope box around its placement
// point. Width and height map onto world axes by orientation: floor
// openings extend in plan, wall openings along the wall and vertically.
func (c PlacementCandidate) BoundingBox() BoundingBox {
	hw, hh, hd := c.Width/2, c.Height/2, c.Depth/2
	if c.Rotated {
		hw, hh = hh, hw
	}
	var half Vector3
	switch c.Orientation {
	case OrientFloor:
		half = Vector3{X: hw, Y: hh, Z: hd}
	case OrientX:
		// Through-axis along X; opening spans Y and Z
		half = Vector3{X: hd, Y: hw, Z: hh}
	default:
		half = Vector3{X: hw, Y: hd, Z: hh}
	}
	return BoundingBox{
		Min: Point3D{X: c.Point.X - half.X, Y: c.Point.Y - half.Y, Z: c.Point.Z - half.Z},
		Max: Point3D{X: c.Point.X + half.X, Y: c.Point.Y + half.Y, Z: c.Point.Z + half.Z},
	}
}

// ExistingOpening is a previously placed opening read back from the model,
// used only for duplicate and cluster tests.
type ExistingOpening struct {
	ID          string      `json:"id"`
	Kind        OpeningKind `json:"kind"`
	HostID      string      `json:"host_id"`
	HostKind    HostKind    `json:"host_kind"`
	Orientation Orientation `json:"orientation"`
	Center      Point3D     `json:"center"`
	Box         BoundingBox `json:"box"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Depth       float64     `json:"depth"`
}

// Cluster is a maximal tolerance-connected group of openings sharing a
// host kind and orientation axis, built transiently per invocation.
type Cluster struct {
	Members []ExistingOpening
}

// Document is one source of model elements: the host document or a linked
// document with its own local frame.
type Document struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	IsHostDoc bool      `json:"is_host_doc"`
	Link      Transform `json:"link"` // local frame -> common frame; identity for the host doc
}
