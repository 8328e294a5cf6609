package importer

import (
	"fmt"
	"math"

	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment is a 2D plan segment, used to chain loose LINE and ARC entities
// into continuous centerlines.
type segment struct {
	start planPoint
	end   planPoint
}

type planPoint struct {
	X, Y float64
}

// ImportDXFRuns imports run centerlines from a plan-view DXF file. LINE,
// LWPOLYLINE, and ARC entities are chained into polylines; each chain
// becomes one circular run of the given diameter at the given elevation.
// Closed entities such as circles are skipped, they are not centerlines.
func ImportDXFRuns(path string, elevation, diameter float64) ImportResult {
	result := ImportResult{}

	if diameter <= 0 {
		result.Errors = append(result.Errors, "Diameter must be positive")
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := make([]planPoint, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				pts = append(pts, planPoint{X: v[0], Y: v[1]})
			}
			segments = append(segments, pointsToSegments(pts)...)

		case *entity.Line:
			segments = append(segments, segment{
				start: planPoint{X: e.Start[0], Y: e.Start[1]},
				end:   planPoint{X: e.End[0], Y: e.End[1]},
			})

		case *entity.Arc:
			pts := arcToPoints(e, 16)
			segments = append(segments, pointsToSegments(pts)...)

		case *entity.Circle:
			result.Warnings = append(result.Warnings, "Skipped CIRCLE entity, not a centerline")

		default:
			// Unsupported entity types are silently skipped
		}
	}

	chains := chainSegments(segments, 0.01)
	if len(chains) == 0 {
		result.Errors = append(result.Errors, "No centerlines found in DXF file")
		return result
	}

	for i, chain := range chains {
		centerline := make([]model.Point3D, len(chain))
		for j, p := range chain {
			centerline[j] = model.Point3D{X: p.X, Y: p.Y, Z: elevation}
		}
		run := model.NewCircularRun(fmt.Sprintf("DXF Run %d", i+1), diameter, centerline...)
		if run.Length() < 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate centerline (%.2f mm)", run.Length()))
			continue
		}
		result.Runs = append(result.Runs, run)
	}

	return result
}

// arcToPoints interpolates a DXF ARC entity into plan points.
func arcToPoints(a *entity.Arc, numSegments int) []planPoint {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]planPoint, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = planPoint{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence into connected segments.
func pointsToSegments(pts []planPoint) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins individual segments into continuous open polylines.
// tolerance is the maximum endpoint distance to consider two segments
// connected. Chains grow from both ends until no segment attaches.
func chainSegments(segs []segment, tolerance float64) [][]planPoint {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var chains [][]planPoint

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []planPoint{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			head := chain[0]
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				case pointsClose(head, seg.start, tolerance):
					chain = append([]planPoint{seg.end}, chain...)
				case pointsClose(head, seg.end, tolerance):
					chain = append([]planPoint{seg.start}, chain...)
				default:
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		chains = append(chains, chain)
	}

	return chains
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b planPoint, tolerance float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}
