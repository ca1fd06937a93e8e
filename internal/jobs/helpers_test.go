// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ManuGH/vt2g/internal/cache"
	"github.com/ManuGH/vt2g/internal/resilience"
	"github.com/ManuGH/vt2g/internal/upstream"
)

// Minimal wire-level tile builder for pipeline fixtures. Every feature gets
// the same single property ("name": layer name) so assertions stay simple.

func cmdInt(id, count uint32) uint32 { return id&0x7 | count<<3 }

func zzEnc(v int32) uint32 { return uint32(protowire.EncodeZigZag(int64(v))) }

type wireFeature struct {
	typ      uint64 // 1 point, 2 linestring, 3 polygon
	geometry []uint32
}

func encodeTestTile(layerName string, features ...wireFeature) []byte {
	var layer []byte
	layer = protowire.AppendTag(layer, 15, protowire.VarintType) // version
	layer = protowire.AppendVarint(layer, 2)
	layer = protowire.AppendTag(layer, 1, protowire.BytesType) // name
	layer = protowire.AppendString(layer, layerName)

	for _, f := range features {
		var feat []byte
		feat = protowire.AppendTag(feat, 2, protowire.BytesType) // tags
		feat = protowire.AppendBytes(feat, []byte{0, 0})
		feat = protowire.AppendTag(feat, 3, protowire.VarintType) // type
		feat = protowire.AppendVarint(feat, f.typ)
		var geom []byte
		for _, v := range f.geometry {
			geom = protowire.AppendVarint(geom, uint64(v))
		}
		feat = protowire.AppendTag(feat, 4, protowire.BytesType) // geometry
		feat = protowire.AppendBytes(feat, geom)

		layer = protowire.AppendTag(layer, 2, protowire.BytesType)
		layer = protowire.AppendBytes(layer, feat)
	}

	layer = protowire.AppendTag(layer, 3, protowire.BytesType) // keys
	layer = protowire.AppendString(layer, "name")
	value := protowire.AppendTag(nil, 1, protowire.BytesType)
	value = protowire.AppendString(value, layerName)
	layer = protowire.AppendTag(layer, 4, protowire.BytesType) // values
	layer = protowire.AppendBytes(layer, value)
	layer = protowire.AppendTag(layer, 5, protowire.VarintType) // extent
	layer = protowire.AppendVarint(layer, 4096)

	b := protowire.AppendTag(nil, 3, protowire.BytesType) // tile.layers
	return protowire.AppendBytes(b, layer)
}

// lineAcross spans the whole tile so it intersects any clip box.
func lineAcross() wireFeature {
	return wireFeature{typ: 2, geometry: []uint32{
		cmdInt(1, 1), zzEnc(0), zzEnc(0),
		cmdInt(2, 1), zzEnc(4095), zzEnc(4095),
	}}
}

// lineAtNWCorner stays near tile coordinate (0,0), far away from any clip box
// that does not touch the tile's northwest corner.
func lineAtNWCorner() wireFeature {
	return wireFeature{typ: 2, geometry: []uint32{
		cmdInt(1, 1), zzEnc(0), zzEnc(0),
		cmdInt(2, 1), zzEnc(10), zzEnc(0),
	}}
}

func pipelineConfig(t *testing.T, mock *upstream.MockServer) Config {
	t.Helper()
	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return Config{
		DataDir:      t.TempDir(),
		Workers:      2,
		Retries:      2,
		FetchTimeout: 5 * time.Second,
		MinZoom:      0,
		MaxZoom:      24,
		CacheTTL:     time.Minute,
		Client:       upstream.New(mock.URL),
		Store:        store,
		Breaker:      resilience.NewCircuitBreaker("test", 10, time.Second),
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
