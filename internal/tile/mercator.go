// SPDX-License-Identifier: MIT

package tile

import "math"

// LonLatToMercator projects a WGS84 coordinate to EPSG:3857 meters.
func LonLatToMercator(lon, lat float64) (x, y float64) {
	lat = clampLat(lat)
	x = lon * WebMercatorMax / 180
	y = math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180) * WebMercatorMax / 180
	return x, y
}

// MercatorToLonLat is the inverse of LonLatToMercator.
func MercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / WebMercatorMax * 180
	lat = y / WebMercatorMax * 180
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(lat*math.Pi/180)) - math.Pi/2)
	return lon, lat
}
