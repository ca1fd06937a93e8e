// SPDX-License-Identifier: MIT

// Package mvt decodes Mapbox Vector Tiles (spec 2.1) from their protobuf
// wire encoding. The decoder walks the wire format directly; the tile schema
// is small and fixed, so no generated code is involved.
package mvt

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from the vector_tile.proto schema.
const (
	fieldTileLayer = 3

	fieldLayerVersion  = 15
	fieldLayerName     = 1
	fieldLayerFeatures = 2
	fieldLayerKeys     = 3
	fieldLayerValues   = 4
	fieldLayerExtent   = 5

	fieldFeatureID       = 1
	fieldFeatureTags     = 2
	fieldFeatureType     = 3
	fieldFeatureGeometry = 4

	fieldValueString = 1
	fieldValueFloat  = 2
	fieldValueDouble = 3
	fieldValueInt    = 4
	fieldValueUint   = 5
	fieldValueSint   = 6
	fieldValueBool   = 7
)

// DefaultExtent is the tile-local coordinate extent assumed when a layer
// does not carry one.
const DefaultExtent = 4096

// GeomType is the MVT feature geometry type.
type GeomType uint32

const (
	GeomUnknown    GeomType = 0
	GeomPoint      GeomType = 1
	GeomLineString GeomType = 2
	GeomPolygon    GeomType = 3
)

func (t GeomType) String() string {
	switch t {
	case GeomPoint:
		return "point"
	case GeomLineString:
		return "linestring"
	case GeomPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Tile is a decoded vector tile.
type Tile struct {
	Layers []Layer
}

// Layer returns the named layer, or nil if the tile does not contain it.
func (t *Tile) Layer(name string) *Layer {
	for i := range t.Layers {
		if t.Layers[i].Name == name {
			return &t.Layers[i]
		}
	}
	return nil
}

// Layer is a decoded tile layer. Feature properties are already resolved
// against the layer's key/value tables.
type Layer struct {
	Name     string
	Version  uint32
	Extent   uint32
	Features []Feature
}

// Feature is a decoded feature with its raw geometry command stream.
type Feature struct {
	ID         uint64
	HasID      bool
	Type       GeomType
	Properties map[string]any

	geometry []uint32
}

// Decode parses a complete vector tile from its wire encoding.
func Decode(data []byte) (*Tile, error) {
	t := &Tile{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag", ErrMalformedTile)
		}
		data = data[n:]

		if num == fieldTileLayer && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad layer field", ErrMalformedTile)
			}
			data = data[n:]

			layer, err := decodeLayer(raw)
			if err != nil {
				return nil, err
			}
			t.Layers = append(t.Layers, layer)
			continue
		}

		// Unknown fields are skipped, never fatal.
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad field %d", ErrMalformedTile, num)
		}
		data = data[n:]
	}
	return t, nil
}

func decodeLayer(data []byte) (Layer, error) {
	layer := Layer{Version: 1, Extent: DefaultExtent}

	var keys []string
	var values []any
	var rawFeatures [][]byte

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return layer, fmt.Errorf("%w: bad layer tag", ErrMalformedTile)
		}
		data = data[n:]

		switch {
		case num == fieldLayerName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer name", ErrMalformedTile)
			}
			layer.Name = s
			data = data[n:]

		case num == fieldLayerVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer version", ErrMalformedTile)
			}
			layer.Version = uint32(v)
			data = data[n:]

		case num == fieldLayerExtent && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer extent", ErrMalformedTile)
			}
			layer.Extent = uint32(v)
			data = data[n:]

		case num == fieldLayerKeys && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer key", ErrMalformedTile)
			}
			keys = append(keys, s)
			data = data[n:]

		case num == fieldLayerValues && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer value", ErrMalformedTile)
			}
			v, err := decodeValue(raw)
			if err != nil {
				return layer, err
			}
			values = append(values, v)
			data = data[n:]

		case num == fieldLayerFeatures && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad feature field", ErrMalformedTile)
			}
			rawFeatures = append(rawFeatures, raw)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return layer, fmt.Errorf("%w: bad layer field %d", ErrMalformedTile, num)
			}
			data = data[n:]
		}
	}

	if layer.Version > 2 {
		return layer, fmt.Errorf("%w: layer %q version %d", ErrUnsupportedVersion, layer.Name, layer.Version)
	}

	layer.Features = make([]Feature, 0, len(rawFeatures))
	for _, raw := range rawFeatures {
		f, err := decodeFeature(raw, keys, values)
		if err != nil {
			return layer, fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		layer.Features = append(layer.Features, f)
	}
	return layer, nil
}

func decodeFeature(data []byte, keys []string, values []any) (Feature, error) {
	f := Feature{Properties: map[string]any{}}
	var tags []uint32

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return f, fmt.Errorf("%w: bad feature tag", ErrMalformedTile)
		}
		data = data[n:]

		switch {
		case num == fieldFeatureID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return f, fmt.Errorf("%w: bad feature id", ErrMalformedTile)
			}
			f.ID = v
			f.HasID = true
			data = data[n:]

		case num == fieldFeatureType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return f, fmt.Errorf("%w: bad feature type", ErrMalformedTile)
			}
			f.Type = GeomType(v)
			data = data[n:]

		case num == fieldFeatureTags && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return f, fmt.Errorf("%w: bad feature tags", ErrMalformedTile)
			}
			data = data[n:]
			for len(raw) > 0 {
				v, n := protowire.ConsumeVarint(raw)
				if n < 0 {
					return f, fmt.Errorf("%w: bad packed tag", ErrMalformedTile)
				}
				tags = append(tags, uint32(v))
				raw = raw[n:]
			}

		case num == fieldFeatureGeometry && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return f, fmt.Errorf("%w: bad feature geometry", ErrMalformedTile)
			}
			data = data[n:]
			for len(raw) > 0 {
				v, n := protowire.ConsumeVarint(raw)
				if n < 0 {
					return f, fmt.Errorf("%w: bad packed geometry", ErrMalformedTile)
				}
				f.geometry = append(f.geometry, uint32(v))
				raw = raw[n:]
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return f, fmt.Errorf("%w: bad feature field %d", ErrMalformedTile, num)
			}
			data = data[n:]
		}
	}

	if len(tags)%2 != 0 {
		return f, fmt.Errorf("%w: odd tag count %d", ErrMalformedTile, len(tags))
	}
	for i := 0; i+1 < len(tags); i += 2 {
		ki, vi := int(tags[i]), int(tags[i+1])
		if ki >= len(keys) || vi >= len(values) {
			return f, fmt.Errorf("%w: tag index out of range (%d,%d)", ErrMalformedTile, ki, vi)
		}
		f.Properties[keys[ki]] = values[vi]
	}
	return f, nil
}

// decodeValue parses the Value oneof message into a native Go value.
func decodeValue(data []byte) (any, error) {
	var out any
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad value tag", ErrMalformedTile)
		}
		data = data[n:]

		switch {
		case num == fieldValueString && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad string value", ErrMalformedTile)
			}
			out = s
			data = data[n:]

		case num == fieldValueFloat && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad float value", ErrMalformedTile)
			}
			out = float64(math.Float32frombits(v))
			data = data[n:]

		case num == fieldValueDouble && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad double value", ErrMalformedTile)
			}
			out = math.Float64frombits(v)
			data = data[n:]

		case num == fieldValueInt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad int value", ErrMalformedTile)
			}
			out = int64(v)
			data = data[n:]

		case num == fieldValueUint && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad uint value", ErrMalformedTile)
			}
			out = v
			data = data[n:]

		case num == fieldValueSint && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad sint value", ErrMalformedTile)
			}
			out = protowire.DecodeZigZag(v)
			data = data[n:]

		case num == fieldValueBool && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad bool value", ErrMalformedTile)
			}
			out = v != 0
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad value field %d", ErrMalformedTile, num)
			}
			data = data[n:]
		}
	}
	return out, nil
}
