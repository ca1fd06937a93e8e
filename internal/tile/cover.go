// SPDX-License-Identifier: MIT

package tile

import "fmt"

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Validate checks ordering and coordinate ranges.
func (b BBox) Validate() error {
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("longitude out of range [-180,180]: %v..%v", b.MinLon, b.MaxLon)
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("latitude out of range [-90,90]: %v..%v", b.MinLat, b.MaxLat)
	}
	if b.MinLon > b.MaxLon {
		return fmt.Errorf("min longitude %v greater than max %v", b.MinLon, b.MaxLon)
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("min latitude %v greater than max %v", b.MinLat, b.MaxLat)
	}
	return nil
}

// Intersects reports whether the two boxes overlap (edges touching counts).
func (b BBox) Intersects(o BBox) bool {
	return b.MinLon <= o.MaxLon && b.MaxLon >= o.MinLon &&
		b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat
}

// Mercator returns the EPSG:3857 corners of the box as [minX, minY, maxX, maxY].
func (b BBox) Mercator() [4]float64 {
	minX, minY := LonLatToMercator(b.MinLon, b.MinLat)
	maxX, maxY := LonLatToMercator(b.MaxLon, b.MaxLat)
	return [4]float64{minX, minY, maxX, maxY}
}

// Cover returns every tile at the given zoom that intersects the box, in
// row-major order (north to south, west to east). A degenerate box still
// yields the single tile containing the point.
func Cover(b BBox, zoom int) []Tile {
	nw := FromLonLat(b.MinLon, b.MaxLat, zoom)
	se := FromLonLat(b.MaxLon, b.MinLat, zoom)

	tiles := make([]Tile, 0, (se.X-nw.X+1)*(se.Y-nw.Y+1))
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			tiles = append(tiles, Tile{Z: zoom, X: x, Y: y})
		}
	}
	return tiles
}
