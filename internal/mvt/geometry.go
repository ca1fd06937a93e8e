// SPDX-License-Identifier: MIT

package mvt

import (
	"fmt"
	"math"

	"github.com/ManuGH/vt2g/internal/tile"
)

// Geometry command IDs from the MVT spec.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// Point is a projected coordinate.
type Point struct {
	X float64
	Y float64
}

// Geometry is a decoded, projected feature geometry. Exactly one of the
// slices is populated depending on Type.
type Geometry struct {
	Type     GeomType
	Points   []Point     // GeomPoint: one or more points
	Lines    [][]Point   // GeomLineString: one or more linestrings
	Polygons [][][]Point // GeomPolygon: polygons, each a list of closed rings
}

// Empty reports whether the geometry carries no coordinates.
func (g Geometry) Empty() bool {
	return len(g.Points) == 0 && len(g.Lines) == 0 && len(g.Polygons) == 0
}

// rawPoint is a vertex in tile-local integer coordinates.
type rawPoint struct {
	x int64
	y int64
}

// Projector returns a transform from tile-local integer coordinates to
// lon/lat degrees (or EPSG:3857 meters when mercator is set) for the given
// tile and layer extent.
func Projector(t tile.Tile, extent uint32, mercator bool) func(x, y int64) Point {
	if extent == 0 {
		extent = DefaultExtent
	}
	n := float64(int(1) << uint(t.Z))
	size := float64(extent) * n
	x0 := float64(extent) * float64(t.X)
	y0 := float64(extent) * float64(t.Y)

	if mercator {
		return func(x, y int64) Point {
			px := (x0 + float64(x)) / size
			py := (y0 + float64(y)) / size
			return Point{
				X: -tile.WebMercatorMax + px*2*tile.WebMercatorMax,
				Y: tile.WebMercatorMax - py*2*tile.WebMercatorMax,
			}
		}
	}
	return func(x, y int64) Point {
		px := (x0 + float64(x)) / size
		py := (y0 + float64(y)) / size
		lon := px*360 - 180
		lat := math.Atan(math.Sinh(math.Pi*(1-2*py))) * 180 / math.Pi
		return Point{X: lon, Y: lat}
	}
}

// DecodeGeometry decodes the feature's command stream and projects each
// vertex with proj. Ring winding is judged in tile-local coordinates before
// projection: per spec an exterior ring has positive shoelace area there,
// and the projection flips the y axis.
func DecodeGeometry(f *Feature, proj func(x, y int64) Point) (Geometry, error) {
	g := Geometry{Type: f.Type}

	switch f.Type {
	case GeomPoint:
		raw, err := decodePoints(f.geometry)
		if err != nil {
			return g, err
		}
		g.Points = projectLine(raw, proj)
	case GeomLineString:
		lines, err := decodeLines(f.geometry, false)
		if err != nil {
			return g, err
		}
		for _, l := range lines {
			g.Lines = append(g.Lines, projectLine(l, proj))
		}
	case GeomPolygon:
		rings, err := decodeLines(f.geometry, true)
		if err != nil {
			return g, err
		}
		g.Polygons = assemblePolygons(rings, proj)
	default:
		return g, fmt.Errorf("%w: geometry type %d", ErrMalformedGeometry, f.Type)
	}
	return g, nil
}

// decodePoints handles POINT geometries: MoveTo commands only.
func decodePoints(cmds []uint32) ([]rawPoint, error) {
	var pts []rawPoint
	var cx, cy int64
	i := 0
	for i < len(cmds) {
		id, count := cmds[i]&0x7, cmds[i]>>3
		i++
		if id != cmdMoveTo {
			return nil, fmt.Errorf("%w: command %d in point geometry", ErrMalformedGeometry, id)
		}
		for c := uint32(0); c < count; c++ {
			if i+2 > len(cmds) {
				return nil, fmt.Errorf("%w: truncated point params", ErrMalformedGeometry)
			}
			cx += zigzag(cmds[i])
			cy += zigzag(cmds[i+1])
			i += 2
			pts = append(pts, rawPoint{cx, cy})
		}
	}
	return pts, nil
}

// decodeLines handles LINESTRING and POLYGON geometries. For polygons,
// ClosePath is required and the first vertex is repeated to close the ring.
func decodeLines(cmds []uint32, rings bool) ([][]rawPoint, error) {
	var out [][]rawPoint
	var cur []rawPoint
	var cx, cy int64
	var start rawPoint

	i := 0
	for i < len(cmds) {
		id, count := cmds[i]&0x7, cmds[i]>>3
		i++

		switch id {
		case cmdMoveTo:
			if count != 1 {
				return nil, fmt.Errorf("%w: MoveTo count %d", ErrMalformedGeometry, count)
			}
			if i+2 > len(cmds) {
				return nil, fmt.Errorf("%w: truncated MoveTo", ErrMalformedGeometry)
			}
			if len(cur) > 0 {
				if rings {
					return nil, fmt.Errorf("%w: unclosed ring", ErrMalformedGeometry)
				}
				out = append(out, cur)
			}
			cx += zigzag(cmds[i])
			cy += zigzag(cmds[i+1])
			i += 2
			start = rawPoint{cx, cy}
			cur = []rawPoint{start}

		case cmdLineTo:
			if count == 0 {
				return nil, fmt.Errorf("%w: empty LineTo", ErrMalformedGeometry)
			}
			if len(cur) == 0 {
				return nil, fmt.Errorf("%w: LineTo before MoveTo", ErrMalformedGeometry)
			}
			for c := uint32(0); c < count; c++ {
				if i+2 > len(cmds) {
					return nil, fmt.Errorf("%w: truncated LineTo", ErrMalformedGeometry)
				}
				cx += zigzag(cmds[i])
				cy += zigzag(cmds[i+1])
				i += 2
				cur = append(cur, rawPoint{cx, cy})
			}

		case cmdClosePath:
			if !rings {
				return nil, fmt.Errorf("%w: ClosePath in linestring", ErrMalformedGeometry)
			}
			if len(cur) == 0 {
				return nil, fmt.Errorf("%w: ClosePath before MoveTo", ErrMalformedGeometry)
			}
			// Close the ring explicitly; GeoJSON rings repeat the first vertex.
			cur = append(cur, start)
			out = append(out, cur)
			cur = nil

		default:
			return nil, fmt.Errorf("%w: command %d", ErrMalformedGeometry, id)
		}
	}

	if len(cur) > 0 {
		if rings {
			return nil, fmt.Errorf("%w: unclosed ring", ErrMalformedGeometry)
		}
		out = append(out, cur)
	}
	return out, nil
}

// assemblePolygons groups closed rings into polygons: a positive-area ring
// (in tile coordinates) opens a new polygon, negative rings are holes of the
// preceding one.
func assemblePolygons(rings [][]rawPoint, proj func(x, y int64) Point) [][][]Point {
	var polys [][][]Point
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		projected := projectLine(ring, proj)
		if signedArea(ring) > 0 || len(polys) == 0 {
			polys = append(polys, [][]Point{projected})
			continue
		}
		last := len(polys) - 1
		polys[last] = append(polys[last], projected)
	}
	return polys
}

func projectLine(pts []rawPoint, proj func(x, y int64) Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = proj(p.x, p.y)
	}
	return out
}

func signedArea(ring []rawPoint) float64 {
	var sum int64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].x*ring[i+1].y - ring[i+1].x*ring[i].y
	}
	return float64(sum) / 2
}

func zigzag(v uint32) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
