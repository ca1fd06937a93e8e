// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/vt2g/internal/geojson"
	"github.com/ManuGH/vt2g/internal/log"
)

// writeCollection writes the feature collection atomically and durably:
// renameio creates a temp file in the target directory, fsyncs it and renames
// it over the destination, so readers never see a partial document. Returns
// the written size in bytes.
func writeCollection(ctx context.Context, path string, fc *geojson.FeatureCollection) (int64, error) {
	logger := log.FromContext(ctx)

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("create pending GeoJSON file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending GeoJSON file")
		}
	}()

	if err := geojson.Write(pending, fc); err != nil {
		return 0, fmt.Errorf("write GeoJSON data: %w", err)
	}

	fi, err := os.Stat(pending.Name())
	if err != nil {
		return 0, fmt.Errorf("stat pending GeoJSON file: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("atomically replace GeoJSON file: %w", err)
	}
	return fi.Size(), nil
}
