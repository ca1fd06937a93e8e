// SPDX-License-Identifier: MIT

package mvt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeatureWithProperties(t *testing.T) {
	data := encodeTile(testLayer{
		name:    "road",
		version: 2,
		extent:  4096,
		keys:    []string{"name", "lanes", "oneway", "width", "grade", "delta"},
		values: [][]byte{
			stringValue("Chuo Dori"),
			intValue(3),
			boolValue(true),
			doubleValue(2.5),
			floatValue(1.5),
			sintValue(-5),
		},
		features: []testFeature{{
			id:       7,
			hasID:    true,
			typ:      GeomPoint,
			tags:     []uint32{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5},
			geometry: []uint32{cmdInt(1, 1), zzEnc(25), zzEnc(17)},
		}},
	})

	tile, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, tile.Layers, 1)

	layer := tile.Layers[0]
	assert.Equal(t, "road", layer.Name)
	assert.Equal(t, uint32(2), layer.Version)
	assert.Equal(t, uint32(4096), layer.Extent)
	require.Len(t, layer.Features, 1)

	f := layer.Features[0]
	assert.True(t, f.HasID)
	assert.Equal(t, uint64(7), f.ID)
	assert.Equal(t, GeomPoint, f.Type)

	want := map[string]any{
		"name":   "Chuo Dori",
		"lanes":  int64(3),
		"oneway": true,
		"width":  2.5,
		"grade":  float64(float32(1.5)),
		"delta":  int64(-5),
	}
	if diff := cmp.Diff(want, f.Properties); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLayerDefaults(t *testing.T) {
	// Version and extent omitted: spec defaults apply.
	tile, err := Decode(encodeTile(testLayer{name: "water"}))
	require.NoError(t, err)
	require.Len(t, tile.Layers, 1)
	assert.Equal(t, uint32(1), tile.Layers[0].Version)
	assert.Equal(t, uint32(DefaultExtent), tile.Layers[0].Extent)
}

func TestDecodeRejectsFutureVersion(t *testing.T) {
	_, err := Decode(encodeTile(testLayer{name: "road", version: 3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeOddTagCount(t *testing.T) {
	data := encodeTile(testLayer{
		name: "road",
		keys: []string{"name"},
		values: [][]byte{
			stringValue("x"),
		},
		features: []testFeature{{
			typ:      GeomPoint,
			tags:     []uint32{0, 0, 1},
			geometry: []uint32{cmdInt(1, 1), zzEnc(1), zzEnc(1)},
		}},
	})
	_, err := Decode(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTile)
}

func TestDecodeTagIndexOutOfRange(t *testing.T) {
	data := encodeTile(testLayer{
		name:   "road",
		keys:   []string{"name"},
		values: [][]byte{stringValue("x")},
		features: []testFeature{{
			typ:      GeomPoint,
			tags:     []uint32{0, 9},
			geometry: []uint32{cmdInt(1, 1), zzEnc(1), zzEnc(1)},
		}},
	})
	_, err := Decode(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTile)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	// An unknown varint field inside the layer must be ignored.
	layer := testLayer{name: "road"}
	layer.extra = append(layer.extra, 0x98, 0x01, 0x2a) // field 19, varint 42

	tile, err := Decode(encodeTile(layer))
	require.NoError(t, err)
	require.Len(t, tile.Layers, 1)
	assert.Equal(t, "road", tile.Layers[0].Name)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTile)
}

func TestTileLayerLookup(t *testing.T) {
	tile, err := Decode(encodeTile(
		testLayer{name: "road"},
		testLayer{name: "building"},
	))
	require.NoError(t, err)

	require.NotNil(t, tile.Layer("building"))
	assert.Equal(t, "building", tile.Layer("building").Name)
	assert.Nil(t, tile.Layer("river"))
}
