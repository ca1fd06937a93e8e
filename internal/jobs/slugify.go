// SPDX-License-Identifier: MIT

package jobs

import (
	"crypto/sha1" // #nosec G505 -- filename suffix, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// slugify converts a layer name into a filesystem-safe slug.
// Example: "Water Area" → "water-area"
func slugify(name string) string {
	if name == "" {
		return "layer"
	}

	s := strings.ToLower(name)

	var result strings.Builder
	lastWasDash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			result.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			result.WriteRune('-')
			lastWasDash = true
		}
	}

	slug := strings.Trim(result.String(), "-")
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	if slug == "" {
		return "layer"
	}
	return slug
}

// outputName builds the export filename for a request. The bounding box is
// folded into a short hash suffix so repeated downloads of the same area
// overwrite each other while different areas stay apart.
// Format: "<layer>-z<zoom>-<suffix>.geojson", e.g. "road-z14-3fa92b.geojson".
func outputName(req Request) string {
	area := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f|%v|%v",
		req.BBox.MinLon, req.BBox.MinLat, req.BBox.MaxLon, req.BBox.MaxLat,
		req.Clip, req.Mercator)
	sum := sha1.Sum([]byte(area)) // #nosec G401
	suffix := hex.EncodeToString(sum[:])[:6]

	return fmt.Sprintf("%s-z%d-%s.geojson", slugify(req.Layer), req.Zoom, suffix)
}
