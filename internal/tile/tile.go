// SPDX-License-Identifier: MIT

// Package tile implements the XYZ tile scheme on the Web-Mercator grid.
package tile

import (
	"fmt"
	"math"
)

// WebMercatorMax is half the Web-Mercator circumference in meters (EPSG:3857).
const WebMercatorMax = 20037508.342789244

// MaxLatitude is the latitude bound of the Web-Mercator projection.
const MaxLatitude = 85.05112878

// Tile identifies a single XYZ tile. Y grows southward (slippy-map scheme).
type Tile struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Path returns the "z/x/y.pbf" URL path of the tile.
func (t Tile) Path() string {
	return fmt.Sprintf("%d/%d/%d.pbf", t.Z, t.X, t.Y)
}

// Key returns a compact cache key for the tile.
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

func (t Tile) String() string { return t.Key() }

// Valid reports whether X and Y are inside the grid at zoom Z.
func (t Tile) Valid() bool {
	if t.Z < 0 || t.Z > 30 {
		return false
	}
	n := 1 << uint(t.Z)
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// Bounds returns the lon/lat bounding box of the tile.
func (t Tile) Bounds() BBox {
	n := float64(int(1) << uint(t.Z))
	minLon := float64(t.X)/n*360 - 180
	maxLon := float64(t.X+1)/n*360 - 180
	maxLat := tileYToLat(float64(t.Y), n)
	minLat := tileYToLat(float64(t.Y+1), n)
	return BBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

func tileYToLat(y, n float64) float64 {
	rad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/n)))
	return rad * 180 / math.Pi
}

// FromLonLat returns the tile containing the given coordinate at zoom z.
func FromLonLat(lon, lat float64, z int) Tile {
	lat = clampLat(lat)
	n := float64(int(1) << uint(z))

	x := int(math.Floor((lon + 180) / 360 * n))
	latRad := lat * math.Pi / 180
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	max := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}
	return Tile{Z: z, X: x, Y: y}
}

func clampLat(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < -MaxLatitude {
		return -MaxLatitude
	}
	return lat
}
