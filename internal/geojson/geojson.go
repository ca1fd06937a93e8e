// SPDX-License-Identifier: MIT

// Package geojson holds the RFC 7946 document types emitted by vt2g.
package geojson

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string     `json:"type"`
	BBox     []float64  `json:"bbox,omitempty"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection with the type member set.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []*Feature{}}
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// NewFeature wraps a geometry and properties into a feature.
func NewFeature(geom *Geometry, props map[string]any) *Feature {
	if props == nil {
		props = map[string]any{}
	}
	return &Feature{Type: "Feature", Geometry: geom, Properties: props}
}

// Geometry is a GeoJSON geometry object. Coordinates follows the nesting
// depth implied by Type ([]Position, [][]Position, ...).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Position is a single [x, y] coordinate pair.
type Position [2]float64

// NewPoint builds a Point geometry.
func NewPoint(p Position) *Geometry {
	return &Geometry{Type: "Point", Coordinates: p}
}

// NewMultiPoint builds a MultiPoint geometry.
func NewMultiPoint(pts []Position) *Geometry {
	return &Geometry{Type: "MultiPoint", Coordinates: pts}
}

// NewLineString builds a LineString geometry.
func NewLineString(line []Position) *Geometry {
	return &Geometry{Type: "LineString", Coordinates: line}
}

// NewMultiLineString builds a MultiLineString geometry.
func NewMultiLineString(lines [][]Position) *Geometry {
	return &Geometry{Type: "MultiLineString", Coordinates: lines}
}

// NewPolygon builds a Polygon geometry from closed rings.
func NewPolygon(rings [][]Position) *Geometry {
	return &Geometry{Type: "Polygon", Coordinates: rings}
}

// NewMultiPolygon builds a MultiPolygon geometry.
func NewMultiPolygon(polys [][][]Position) *Geometry {
	return &Geometry{Type: "MultiPolygon", Coordinates: polys}
}
