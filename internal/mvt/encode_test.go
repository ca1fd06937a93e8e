// SPDX-License-Identifier: MIT

package mvt

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire-level builders for test tiles. Kept hand-rolled like the decoder so
// tests control every byte.

func cmdInt(id, count uint32) uint32 { return id&0x7 | count<<3 }

func zzEnc(v int32) uint32 { return uint32(protowire.EncodeZigZag(int64(v))) }

func packVarints(vals []uint32) []byte {
	var b []byte
	for _, v := range vals {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

func stringValue(s string) []byte {
	b := protowire.AppendTag(nil, fieldValueString, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func intValue(v int64) []byte {
	b := protowire.AppendTag(nil, fieldValueInt, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func sintValue(v int64) []byte {
	b := protowire.AppendTag(nil, fieldValueSint, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func boolValue(v bool) []byte {
	b := protowire.AppendTag(nil, fieldValueBool, protowire.VarintType)
	if v {
		return protowire.AppendVarint(b, 1)
	}
	return protowire.AppendVarint(b, 0)
}

func doubleValue(v float64) []byte {
	b := protowire.AppendTag(nil, fieldValueDouble, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func floatValue(v float32) []byte {
	b := protowire.AppendTag(nil, fieldValueFloat, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

type testFeature struct {
	id       uint64
	hasID    bool
	typ      GeomType
	tags     []uint32
	geometry []uint32
}

func (f testFeature) encode() []byte {
	var b []byte
	if f.hasID {
		b = protowire.AppendTag(b, fieldFeatureID, protowire.VarintType)
		b = protowire.AppendVarint(b, f.id)
	}
	if len(f.tags) > 0 {
		b = protowire.AppendTag(b, fieldFeatureTags, protowire.BytesType)
		b = protowire.AppendBytes(b, packVarints(f.tags))
	}
	b = protowire.AppendTag(b, fieldFeatureType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.typ))
	if len(f.geometry) > 0 {
		b = protowire.AppendTag(b, fieldFeatureGeometry, protowire.BytesType)
		b = protowire.AppendBytes(b, packVarints(f.geometry))
	}
	return b
}

type testLayer struct {
	name     string
	version  uint32 // 0 omits the field
	extent   uint32 // 0 omits the field
	keys     []string
	values   [][]byte
	features []testFeature
	extra    []byte // raw bytes appended verbatim
}

func (l testLayer) encode() []byte {
	var b []byte
	if l.version != 0 {
		b = protowire.AppendTag(b, fieldLayerVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.version))
	}
	b = protowire.AppendTag(b, fieldLayerName, protowire.BytesType)
	b = protowire.AppendString(b, l.name)
	for _, f := range l.features {
		b = protowire.AppendTag(b, fieldLayerFeatures, protowire.BytesType)
		b = protowire.AppendBytes(b, f.encode())
	}
	for _, k := range l.keys {
		b = protowire.AppendTag(b, fieldLayerKeys, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	for _, v := range l.values {
		b = protowire.AppendTag(b, fieldLayerValues, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	if l.extent != 0 {
		b = protowire.AppendTag(b, fieldLayerExtent, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.extent))
	}
	return append(b, l.extra...)
}

func encodeTile(layers ...testLayer) []byte {
	var b []byte
	for _, l := range layers {
		b = protowire.AppendTag(b, fieldTileLayer, protowire.BytesType)
		b = protowire.AppendBytes(b, l.encode())
	}
	return b
}
