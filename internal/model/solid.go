package model

import "math"

// Face is a planar polygon, one boundary face of a host solid.
// Vertices are ordered counter-clockwise when viewed from outside the solid,
// so the Newell normal points outward.
type Face struct {
	Vertices []Point3D `json:"vertices"`
}

// Normal returns the (unnormalized) face normal computed with Newell's
// method, which tolerates slightly non-planar vertex rings.
func (f Face) Normal() Vector3 {
	var n Vector3
	for i, p := range f.Vertices {
		q := f.Vertices[(i+1)%len(f.Vertices)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// Area returns the polygon area in square mm.
func (f Face) Area() float64 {
	return f.Normal().Length() / 2
}

// Transformed returns a copy of the face with every vertex mapped.
func (f Face) Transformed(t Transform) Face {
	out := Face{Vertices: make([]Point3D, len(f.Vertices))}
	for i, v := range f.Vertices {
		out.Vertices[i] = t.Apply(v)
	}
	return out
}

// ContainsPoint reports whether a point already known to lie on the face
// plane falls inside the polygon boundary. The polygon is projected onto
// the plane most perpendicular to its normal and tested with the
// even-odd crossing rule.
func (f Face) ContainsPoint(p Point3D) bool {
	if len(f.Vertices) < 3 {
		return false
	}
	n := f.Normal()
	ax, ay := projectionAxes(n)
	px, py := component(p, ax), component(p, ay)

	inside := false
	j := len(f.Vertices) - 1
	for i := 0; i < len(f.Vertices); i++ {
		xi, yi := component(f.Vertices[i], ax), component(f.Vertices[i], ay)
		xj, yj := component(f.Vertices[j], ax), component(f.Vertices[j], ay)
		if (yi > py) != (yj > py) &&
			px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// projectionAxes picks the two axes spanning the plane most perpendicular
// to n: the dominant normal component is dropped.
func projectionAxes(n Vector3) (int, int) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return 0, 1
	case ax >= ay:
		return 1, 2
	default:
		return 0, 2
	}
}

func component(p Point3D, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// Solid is a closed boundary representation: the set of planar faces
// enclosing a host's material.
type Solid struct {
	Faces []Face `json:"faces"`
}

// Volume returns the enclosed volume in cubic mm, computed with the
// divergence theorem over the outward-facing boundary.
func (s Solid) Volume() float64 {
	var vol float64
	for _, f := range s.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		// Fan-triangulate from the first vertex
		a := f.Vertices[0]
		for i := 1; i < len(f.Vertices)-1; i++ {
			b := f.Vertices[i]
			c := f.Vertices[i+1]
			va := Vector3{X: a.X, Y: a.Y, Z: a.Z}
			vol += va.Dot(b.Sub(a).Cross(c.Sub(a))) / 6
		}
	}
	return math.Abs(vol)
}

// BoundingBox returns the tightest axis-aligned box around all faces.
// The second return value is false when the solid has no vertices.
func (s Solid) BoundingBox() (BoundingBox, bool) {
	var points []Point3D
	for _, f := range s.Faces {
		points = append(points, f.Vertices...)
	}
	return BoxFromPoints(points)
}

// Transformed returns a copy of the solid with every face mapped.
func (s Solid) Transformed(t Transform) Solid {
	out := Solid{Faces: make([]Face, len(s.Faces))}
	for i, f := range s.Faces {
		out.Faces[i] = f.Transformed(t)
	}
	return out
}

// BoxSolid builds the six-face solid for an axis-aligned box. Used by
// fixtures and by the rectangular-replacement envelope check.
func BoxSolid(box BoundingBox) Solid {
	p := func(x, y, z float64) Point3D { return Point3D{X: x, Y: y, Z: z} }
	x0, y0, z0 := box.Min.X, box.Min.Y, box.Min.Z
	x1, y1, z1 := box.Max.X, box.Max.Y, box.Max.Z
	return Solid{Faces: []Face{
		{Vertices: []Point3D{p(x0, y0, z0), p(x1, y0, z0), p(x1, y1, z0), p(x0, y1, z0)}}, // bottom
		{Vertices: []Point3D{p(x0, y0, z1), p(x0, y1, z1), p(x1, y1, z1), p(x1, y0, z1)}}, // top
		{Vertices: []Point3D{p(x0, y0, z0), p(x0, y1, z0), p(x0, y1, z1), p(x0, y0, z1)}}, // west
		{Vertices: []Point3D{p(x1, y0, z0), p(x1, y0, z1), p(x1, y1, z1), p(x1, y1, z0)}}, // east
		{Vertices: []Point3D{p(x0, y0, z0), p(x0, y0, z1), p(x1, y0, z1), p(x1, y0, z0)}}, // south
		{Vertices: []Point3D{p(x0, y1, z0), p(x1, y1, z0), p(x1, y1, z1), p(x0, y1, z1)}}, // north
	}}
}
