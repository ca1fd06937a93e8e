// SPDX-License-Identifier: MIT

package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxDocumentSize bounds parsed documents to keep Read safe against
// oversized inputs (the daemon re-reads its own exports for health checks).
const maxDocumentSize = 512 * 1024 * 1024

// Write encodes the collection as a single JSON document.
func Write(w io.Writer, fc *FeatureCollection) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}

// Read decodes a FeatureCollection from r.
func Read(r io.Reader) (*FeatureCollection, error) {
	lr := io.LimitReader(r, maxDocumentSize)

	var fc FeatureCollection
	dec := json.NewDecoder(lr)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected document type %q", fc.Type)
	}
	return &fc, nil
}
