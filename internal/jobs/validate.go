// SPDX-License-Identifier: MIT

package jobs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/vt2g/internal/config"
)

// ErrInvalidRequest marks requests the pipeline refuses to run. The API maps
// it to 400.
var ErrInvalidRequest = errors.New("invalid download request")

// ErrUnknownLayer marks requests for a layer the catalog does not know.
var ErrUnknownLayer = errors.New("unknown layer")

// validateRequest checks a request against the configured limits and resolves
// the layer against the catalog.
func (c Config) validateRequest(req Request) (config.LayerInfo, error) {
	if err := req.BBox.Validate(); err != nil {
		return config.LayerInfo{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Zoom < c.MinZoom || req.Zoom > c.MaxZoom {
		return config.LayerInfo{}, fmt.Errorf("%w: zoom %d outside [%d,%d]", ErrInvalidRequest, req.Zoom, c.MinZoom, c.MaxZoom)
	}

	name := strings.TrimSpace(req.Layer)
	if name == "" {
		return config.LayerInfo{}, fmt.Errorf("%w: layer is empty", ErrInvalidRequest)
	}
	info, ok := c.catalog().Lookup(name)
	if !ok {
		return config.LayerInfo{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return info, nil
}
