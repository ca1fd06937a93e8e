// SPDX-License-Identifier: MIT

package jobs

import (
	"github.com/ManuGH/vt2g/internal/geojson"
	"github.com/ManuGH/vt2g/internal/mvt"
	"github.com/ManuGH/vt2g/internal/tile"
)

// toGeoJSON converts a decoded tile geometry into the narrowest GeoJSON
// geometry that holds it: single-element multi geometries collapse to their
// simple form.
func toGeoJSON(g mvt.Geometry) *geojson.Geometry {
	switch g.Type {
	case mvt.GeomPoint:
		if len(g.Points) == 1 {
			return geojson.NewPoint(position(g.Points[0]))
		}
		return geojson.NewMultiPoint(positions(g.Points))
	case mvt.GeomLineString:
		if len(g.Lines) == 1 {
			return geojson.NewLineString(positions(g.Lines[0]))
		}
		lines := make([][]geojson.Position, len(g.Lines))
		for i, l := range g.Lines {
			lines[i] = positions(l)
		}
		return geojson.NewMultiLineString(lines)
	case mvt.GeomPolygon:
		polys := make([][][]geojson.Position, len(g.Polygons))
		for i, p := range g.Polygons {
			rings := make([][]geojson.Position, len(p))
			for j, r := range p {
				rings[j] = positions(r)
			}
			polys[i] = rings
		}
		if len(polys) == 1 {
			return geojson.NewPolygon(polys[0])
		}
		return geojson.NewMultiPolygon(polys)
	}
	return nil
}

func position(p mvt.Point) geojson.Position {
	return geojson.Position{p.X, p.Y}
}

func positions(pts []mvt.Point) []geojson.Position {
	out := make([]geojson.Position, len(pts))
	for i, p := range pts {
		out[i] = position(p)
	}
	return out
}

// bounds is an axis-aligned extent in the output coordinate system.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b bounds) intersects(o bounds) bool {
	return b.minX <= o.maxX && b.maxX >= o.minX &&
		b.minY <= o.maxY && b.maxY >= o.minY
}

// requestBounds returns the request box in the output coordinate system.
func requestBounds(req Request) bounds {
	if req.Mercator {
		m := req.BBox.Mercator()
		return bounds{minX: m[0], minY: m[1], maxX: m[2], maxY: m[3]}
	}
	return bounds{
		minX: req.BBox.MinLon, minY: req.BBox.MinLat,
		maxX: req.BBox.MaxLon, maxY: req.BBox.MaxLat,
	}
}

// geomBounds computes the extent of a projected geometry.
func geomBounds(g mvt.Geometry) bounds {
	b := bounds{
		minX: tile.WebMercatorMax, minY: tile.WebMercatorMax,
		maxX: -tile.WebMercatorMax, maxY: -tile.WebMercatorMax,
	}
	grow := func(p mvt.Point) {
		if p.X < b.minX {
			b.minX = p.X
		}
		if p.X > b.maxX {
			b.maxX = p.X
		}
		if p.Y < b.minY {
			b.minY = p.Y
		}
		if p.Y > b.maxY {
			b.maxY = p.Y
		}
	}
	for _, p := range g.Points {
		grow(p)
	}
	for _, l := range g.Lines {
		for _, p := range l {
			grow(p)
		}
	}
	for _, poly := range g.Polygons {
		for _, r := range poly {
			for _, p := range r {
				grow(p)
			}
		}
	}
	return b
}

// geometryType maps a catalog geometry kind to the decoded tile type.
func geometryType(kind string) (mvt.GeomType, bool) {
	switch kind {
	case "point":
		return mvt.GeomPoint, true
	case "line":
		return mvt.GeomLineString, true
	case "polygon":
		return mvt.GeomPolygon, true
	}
	return mvt.GeomUnknown, false
}
