// SPDX-License-Identifier: MIT

package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLonLat(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		zoom     int
		want     Tile
	}{
		{"origin at zoom 0", 0, 0, 0, Tile{Z: 0, X: 0, Y: 0}},
		{"origin at zoom 1", 0.1, -0.1, 1, Tile{Z: 1, X: 1, Y: 1}},
		{"tokyo station at zoom 14", 139.7671, 35.6812, 14, Tile{Z: 14, X: 14552, Y: 6451}},
		{"west edge clamps to first column", -180, 0, 2, Tile{Z: 2, X: 0, Y: 1}},
		{"east edge clamps to last column", 180, 0, 2, Tile{Z: 2, X: 3, Y: 1}},
		{"north pole clamps to top row", 0, 90, 3, Tile{Z: 3, X: 4, Y: 0}},
		{"south pole clamps to bottom row", 0, -90, 3, Tile{Z: 3, X: 4, Y: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromLonLat(tt.lon, tt.lat, tt.zoom))
		})
	}
}

func TestTilePathAndKey(t *testing.T) {
	tl := Tile{Z: 14, X: 14552, Y: 6451}
	assert.Equal(t, "14/14552/6451.pbf", tl.Path())
	assert.Equal(t, "14/14552/6451", tl.Key())
}

func TestTileValid(t *testing.T) {
	assert.True(t, Tile{Z: 0, X: 0, Y: 0}.Valid())
	assert.True(t, Tile{Z: 2, X: 3, Y: 3}.Valid())
	assert.False(t, Tile{Z: 2, X: 4, Y: 0}.Valid())
	assert.False(t, Tile{Z: -1, X: 0, Y: 0}.Valid())
	assert.False(t, Tile{Z: 2, X: 0, Y: -1}.Valid())
}

func TestTileBoundsContainCenter(t *testing.T) {
	tl := FromLonLat(139.7671, 35.6812, 14)
	b := tl.Bounds()
	assert.LessOrEqual(t, b.MinLon, 139.7671)
	assert.GreaterOrEqual(t, b.MaxLon, 139.7671)
	assert.LessOrEqual(t, b.MinLat, 35.6812)
	assert.GreaterOrEqual(t, b.MaxLat, 35.6812)
}

func TestBBoxValidate(t *testing.T) {
	assert.NoError(t, BBox{MinLon: 139.6, MinLat: 35.5, MaxLon: 139.9, MaxLat: 35.8}.Validate())
	assert.NoError(t, BBox{MinLon: 139.7, MinLat: 35.6, MaxLon: 139.7, MaxLat: 35.6}.Validate())

	assert.Error(t, BBox{MinLon: -181, MaxLon: 0, MinLat: 0, MaxLat: 1}.Validate())
	assert.Error(t, BBox{MinLon: 0, MaxLon: 1, MinLat: -91, MaxLat: 0}.Validate())
	assert.Error(t, BBox{MinLon: 10, MaxLon: 5, MinLat: 0, MaxLat: 1}.Validate())
	assert.Error(t, BBox{MinLon: 0, MaxLon: 1, MinLat: 10, MaxLat: 5}.Validate())
}

func TestCoverRowMajor(t *testing.T) {
	// Tokyo station area at zoom 14 spans a small block of tiles.
	b := BBox{MinLon: 139.74, MinLat: 35.66, MaxLon: 139.80, MaxLat: 35.70}
	tiles := Cover(b, 14)
	require.NotEmpty(t, tiles)

	nw := FromLonLat(b.MinLon, b.MaxLat, 14)
	se := FromLonLat(b.MaxLon, b.MinLat, 14)
	require.Equal(t, (se.X-nw.X+1)*(se.Y-nw.Y+1), len(tiles))

	// Row-major: north to south, west to east.
	assert.Equal(t, Tile{Z: 14, X: nw.X, Y: nw.Y}, tiles[0])
	assert.Equal(t, Tile{Z: 14, X: se.X, Y: se.Y}, tiles[len(tiles)-1])
	for i := 1; i < len(tiles); i++ {
		prev, cur := tiles[i-1], tiles[i]
		if cur.Y == prev.Y {
			assert.Equal(t, prev.X+1, cur.X)
		} else {
			assert.Equal(t, prev.Y+1, cur.Y)
			assert.Equal(t, nw.X, cur.X)
		}
	}
}

func TestCoverDegenerateBox(t *testing.T) {
	b := BBox{MinLon: 139.7671, MinLat: 35.6812, MaxLon: 139.7671, MaxLat: 35.6812}
	tiles := Cover(b, 14)
	require.Len(t, tiles, 1)
	assert.Equal(t, FromLonLat(139.7671, 35.6812, 14), tiles[0])
}

func TestMercatorRoundTrip(t *testing.T) {
	lons := []float64{-139.5, 0, 2.35, 139.7671}
	lats := []float64{-45, 0, 35.6812, 60.2}
	for _, lon := range lons {
		for _, lat := range lats {
			x, y := LonLatToMercator(lon, lat)
			gotLon, gotLat := MercatorToLonLat(x, y)
			assert.InDelta(t, lon, gotLon, 1e-9)
			assert.InDelta(t, lat, gotLat, 1e-9)
		}
	}
}

func TestMercatorExtremes(t *testing.T) {
	x, _ := LonLatToMercator(180, 0)
	assert.InDelta(t, WebMercatorMax, x, 1e-6)
	x, _ = LonLatToMercator(-180, 0)
	assert.InDelta(t, -WebMercatorMax, x, 1e-6)

	// Latitudes beyond the Web Mercator limit clamp instead of diverging.
	_, y := LonLatToMercator(0, 89.9)
	_, yMax := LonLatToMercator(0, MaxLatitude)
	assert.InDelta(t, yMax, y, 1e-6)
}

func TestBBoxIntersects(t *testing.T) {
	a := BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	assert.True(t, a.Intersects(BBox{MinLon: 5, MinLat: 5, MaxLon: 15, MaxLat: 15}))
	assert.True(t, a.Intersects(BBox{MinLon: 10, MinLat: 10, MaxLon: 20, MaxLat: 20})) // edge touch
	assert.False(t, a.Intersects(BBox{MinLon: 11, MinLat: 0, MaxLon: 20, MaxLat: 10}))
}
