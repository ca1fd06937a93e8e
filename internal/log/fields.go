// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Tile fields
	FieldLayer = "layer"
	FieldZoom  = "zoom"
	FieldTile  = "tile"
	FieldTiles = "tiles"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
