// SPDX-License-Identifier: MIT

package mvt

import "errors"

var (
	// ErrUnsupportedVersion is returned for layers above spec version 2.
	ErrUnsupportedVersion = errors.New("mvt: unsupported layer version")
	// ErrMalformedTile is returned when the protobuf wire data is invalid.
	ErrMalformedTile = errors.New("mvt: malformed tile data")
	// ErrMalformedGeometry is returned for invalid command streams.
	ErrMalformedGeometry = errors.New("mvt: malformed geometry")
)
