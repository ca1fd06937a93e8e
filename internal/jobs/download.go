// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/vt2g/internal/geojson"
	"github.com/ManuGH/vt2g/internal/log"
	"github.com/ManuGH/vt2g/internal/metrics"
	"github.com/ManuGH/vt2g/internal/mvt"
	"github.com/ManuGH/vt2g/internal/tile"
)

// Download runs one complete download: tile cover, fetch, decode, merge,
// write. It is synchronous; the Manager wraps it for async API jobs.
func Download(ctx context.Context, cfg Config, req Request) (*Result, error) {
	start := cfg.now()
	logger := log.WithComponentFromContext(ctx, "download")

	info, err := cfg.validateRequest(req)
	if err != nil {
		metrics.RecordDownload("invalid", 0)
		return nil, err
	}
	want, ok := geometryType(info.Geometry)
	if !ok {
		metrics.RecordDownload("invalid", 0)
		return nil, fmt.Errorf("%w: layer %q has unusable geometry kind %q", ErrInvalidRequest, req.Layer, info.Geometry)
	}

	tiles := tile.Cover(req.BBox, req.Zoom)
	logger.Info().
		Str(log.FieldEvent, "download.start").
		Str(log.FieldLayer, req.Layer).
		Int(log.FieldZoom, req.Zoom).
		Int(log.FieldTiles, len(tiles)).
		Msg("starting download")

	results, err := fetchAll(ctx, cfg, tiles)
	if err != nil {
		metrics.RecordDownload("error", cfg.now().Sub(start).Seconds())
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	fc.BBox = collectionBBox(req)
	clip := requestBounds(req)

	emptyTiles := 0
	cacheHits := 0
	for _, r := range results {
		if r.hit {
			cacheHits++
		}
		if len(r.data) == 0 {
			emptyTiles++
			continue
		}

		mt, err := mvt.Decode(r.data)
		if err != nil {
			metrics.RecordTileDecode(false)
			metrics.RecordDownload("error", cfg.now().Sub(start).Seconds())
			return nil, fmt.Errorf("decode tile %s: %w", r.tile.Key(), err)
		}
		metrics.RecordTileDecode(true)

		layer := mt.Layer(req.Layer)
		if layer == nil {
			continue
		}

		proj := mvt.Projector(r.tile, layer.Extent, req.Mercator)
		decoded := 0
		for i := range layer.Features {
			f := &layer.Features[i]
			if f.Type != want {
				continue
			}
			g, err := mvt.DecodeGeometry(f, proj)
			if err != nil {
				// One malformed feature should not abort a large download.
				logger.Warn().
					Err(err).
					Str(log.FieldTile, r.tile.Key()).
					Str(log.FieldLayer, req.Layer).
					Msg("skipping malformed feature geometry")
				continue
			}
			if g.Empty() {
				continue
			}
			if req.Clip && !clip.intersects(geomBounds(g)) {
				continue
			}

			feat := geojson.NewFeature(toGeoJSON(g), f.Properties)
			if f.HasID {
				feat.ID = f.ID
			}
			fc.Features = append(fc.Features, feat)
			decoded++
		}
		metrics.RecordFeaturesDecoded(req.Layer, decoded)
	}

	path := filepath.Join(cfg.DataDir, outputName(req))
	size, err := writeCollection(ctx, path, fc)
	if err != nil {
		metrics.RecordGeoJSONWriteError()
		metrics.RecordDownload("error", cfg.now().Sub(start).Seconds())
		return nil, err
	}

	elapsed := cfg.now().Sub(start)
	metrics.SetFeaturesWritten(req.Layer, len(fc.Features))
	metrics.RecordDownload("success", elapsed.Seconds())

	res := &Result{
		Output:     filepath.Base(path),
		Tiles:      len(tiles),
		EmptyTiles: emptyTiles,
		CacheHits:  cacheHits,
		Features:   len(fc.Features),
		Bytes:      size,
		DurationMS: elapsed.Milliseconds(),
	}
	logger.Info().
		Str(log.FieldEvent, "download.done").
		Str(log.FieldLayer, req.Layer).
		Int(log.FieldZoom, req.Zoom).
		Int(log.FieldTiles, res.Tiles).
		Int("empty_tiles", res.EmptyTiles).
		Int("cache_hits", res.CacheHits).
		Int("features", res.Features).
		Int64("bytes", res.Bytes).
		Int64("duration_ms", res.DurationMS).
		Str(log.FieldPath, res.Output).
		Msg("download complete")
	return res, nil
}

// collectionBBox returns the request box in the output coordinate system as
// the GeoJSON bbox member.
func collectionBBox(req Request) []float64 {
	b := requestBounds(req)
	return []float64{b.minX, b.minY, b.maxX, b.maxY}
}
