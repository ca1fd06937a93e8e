// SPDX-License-Identifier: MIT

package jobs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/vt2g/internal/tile"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"road", "road"},
		{"Water Area", "water-area"},
		{"wstructurea", "wstructurea"},
		{"道路", "layer"},
		{"a--b  c", "a-b-c"},
		{"--", "layer"},
		{"", "layer"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestOutputName(t *testing.T) {
	req := Request{
		BBox:  tile.BBox{MinLon: 139.7, MinLat: 35.6, MaxLon: 139.8, MaxLat: 35.7},
		Layer: "road",
		Zoom:  14,
	}

	name := outputName(req)
	assert.True(t, strings.HasPrefix(name, "road-z14-"), name)
	assert.True(t, strings.HasSuffix(name, ".geojson"), name)

	// Same area, same name; shifted area, different name.
	assert.Equal(t, name, outputName(req))

	other := req
	other.BBox.MaxLon = 139.9
	assert.NotEqual(t, name, outputName(other))

	// Clip and projection flags change the content, so they change the name.
	clipped := req
	clipped.Clip = true
	assert.NotEqual(t, name, outputName(clipped))
}
