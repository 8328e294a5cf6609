package model

import "math"

// Point3D represents a 3D coordinate in mm.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3 represents a 3D direction or displacement in mm.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns the vector from q to p.
func (p Point3D) Sub(q Point3D) Vector3 {
	return Vector3{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Add returns the point displaced by v.
func (p Point3D) Add(v Vector3) Point3D {
	return Point3D{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point3D) DistanceTo(q Point3D) float64 {
	return p.Sub(q).Length()
}

// NearOrigin reports whether the point lies within eps of (0,0,0) on all
// three axes. Placement points that land here are the signature of a
// coordinate-resolution failure, not legitimate geometry.
func (p Point3D) NearOrigin(eps float64) bool {
	return math.Abs(p.X) <= eps && math.Abs(p.Y) <= eps && math.Abs(p.Z) <= eps
}

// Midpoint returns the point halfway between p and q.
func (p Point3D) Midpoint(q Point3D) Point3D {
	return Point3D{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2, Z: (p.Z + q.Z) / 2}
}

func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3) Dot(w Vector3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns a unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsZero reports whether all components are exactly zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Transform is an affine map from one coordinate frame to another:
// basis columns plus an origin. Link transforms between documents are
// rigid (rotation plus translation), but the math here handles any
// invertible basis.
type Transform struct {
	BasisX Vector3 `json:"basis_x"`
	BasisY Vector3 `json:"basis_y"`
	BasisZ Vector3 `json:"basis_z"`
	Origin Point3D `json:"origin"`
}

// IdentityTransform returns the transform that maps every point to itself.
func IdentityTransform() Transform {
	return Transform{
		BasisX: Vector3{X: 1},
		BasisY: Vector3{Y: 1},
		BasisZ: Vector3{Z: 1},
	}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point3D) Point3D {
	return Point3D{
		X: t.Origin.X + p.X*t.BasisX.X + p.Y*t.BasisY.X + p.Z*t.BasisZ.X,
		Y: t.Origin.Y + p.X*t.BasisX.Y + p.Y*t.BasisY.Y + p.Z*t.BasisZ.Y,
		Z: t.Origin.Z + p.X*t.BasisX.Z + p.Y*t.BasisY.Z + p.Z*t.BasisZ.Z,
	}
}

// ApplyVector maps a direction through the transform, ignoring translation.
func (t Transform) ApplyVector(v Vector3) Vector3 {
	return Vector3{
		X: v.X*t.BasisX.X + v.Y*t.BasisY.X + v.Z*t.BasisZ.X,
		Y: v.X*t.BasisX.Y + v.Y*t.BasisY.Y + v.Z*t.BasisZ.Y,
		Z: v.X*t.BasisX.Z + v.Y*t.BasisY.Z + v.Z*t.BasisZ.Z,
	}
}

// Multiply composes two transforms: the result applies u first, then t.
func (t Transform) Multiply(u Transform) Transform {
	return Transform{
		BasisX: t.ApplyVector(u.BasisX),
		BasisY: t.ApplyVector(u.BasisY),
		BasisZ: t.ApplyVector(u.BasisZ),
		Origin: t.Apply(u.Origin),
	}
}

// IsIdentity reports whether the transform is the identity within eps.
func (t Transform) IsIdentity(eps float64) bool {
	id := IdentityTransform()
	close := func(a, b Vector3) bool {
		return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
	}
	return close(t.BasisX, id.BasisX) && close(t.BasisY, id.BasisY) &&
		close(t.BasisZ, id.BasisZ) && t.Origin.NearOrigin(eps)
}

// Inverse returns the transform mapping the output frame back to the input
// frame. The second return value is false when the basis is singular.
func (t Transform) Inverse() (Transform, bool) {
	// Rows of the basis matrix
	a, b, c := t.BasisX, t.BasisY, t.BasisZ
	det := a.X*(b.Y*c.Z-c.Y*b.Z) - b.X*(a.Y*c.Z-c.Y*a.Z) + c.X*(a.Y*b.Z-b.Y*a.Z)
	if math.Abs(det) < 1e-12 {
		return Transform{}, false
	}
	inv := Transform{
		BasisX: Vector3{
			X: (b.Y*c.Z - c.Y*b.Z) / det,
			Y: (c.Y*a.Z - a.Y*c.Z) / det,
			Z: (a.Y*b.Z - b.Y*a.Z) / det,
		},
		BasisY: Vector3{
			X: (c.X*b.Z - b.X*c.Z) / det,
			Y: (a.X*c.Z - c.X*a.Z) / det,
			Z: (b.X*a.Z - a.X*b.Z) / det,
		},
		BasisZ: Vector3{
			X: (b.X*c.Y - c.X*b.Y) / det,
			Y: (c.X*a.Y - a.X*c.Y) / det,
			Z: (a.X*b.Y - b.X*a.Y) / det,
		},
	}
	o := inv.ApplyVector(Vector3{X: t.Origin.X, Y: t.Origin.Y, Z: t.Origin.Z})
	inv.Origin = Point3D{X: -o.X, Y: -o.Y, Z: -o.Z}
	return inv, true
}

// BoundingBox is an axis-aligned box in a single coordinate frame.
type BoundingBox struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
}

// BoxFromPoints returns the tightest box enclosing all points.
// The second return value is false for an empty point set.
func BoxFromPoints(points []Point3D) (BoundingBox, bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}
	box := BoundingBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box, true
}

// IsValid reports whether Min does not exceed Max on any axis and the box
// is not the zero value.
func (b BoundingBox) IsValid() bool {
	if b.Min == (Point3D{}) && b.Max == (Point3D{}) {
		return false
	}
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the box midpoint.
func (b BoundingBox) Center() Point3D {
	return b.Min.Midpoint(b.Max)
}

// Extent returns the box size along each axis.
func (b BoundingBox) Extent() Vector3 {
	return b.Max.Sub(b.Min)
}

// Expanded returns the box grown by tol on every side.
func (b BoundingBox) Expanded(tol float64) BoundingBox {
	return BoundingBox{
		Min: Point3D{X: b.Min.X - tol, Y: b.Min.Y - tol, Z: b.Min.Z - tol},
		Max: Point3D{X: b.Max.X + tol, Y: b.Max.Y + tol, Z: b.Max.Z + tol},
	}
}

// Contains reports whether p lies inside the box (inclusive of faces).
func (b BoundingBox) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap (touching counts).
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Union returns the smallest box enclosing both.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Point3D{
			X: math.Min(b.Min.X, other.Min.X),
			Y: math.Min(b.Min.Y, other.Min.Y),
			Z: math.Min(b.Min.Z, other.Min.Z),
		},
		Max: Point3D{
			X: math.Max(b.Max.X, other.Max.X),
			Y: math.Max(b.Max.Y, other.Max.Y),
			Z: math.Max(b.Max.Z, other.Max.Z),
		},
	}
}

// Transformed returns the axis-aligned box enclosing the transformed
// corners of b. The result is conservative for rotated frames.
func (b BoundingBox) Transformed(t Transform) BoundingBox {
	corners := []Point3D{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	for i := range corners {
		corners[i] = t.Apply(corners[i])
	}
	box, _ := BoxFromPoints(corners)
	return box
}
