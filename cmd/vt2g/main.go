// SPDX-License-Identifier: MIT

// vt2g is the one-shot CLI: download one layer over a bounding box and write
// a GeoJSON file, without running the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/vt2g/internal/cache"
	"github.com/ManuGH/vt2g/internal/config"
	"github.com/ManuGH/vt2g/internal/jobs"
	vtlog "github.com/ManuGH/vt2g/internal/log"
	"github.com/ManuGH/vt2g/internal/resilience"
	"github.com/ManuGH/vt2g/internal/tile"
	"github.com/ManuGH/vt2g/internal/upstream"
	"github.com/ManuGH/vt2g/internal/version"
)

func main() {
	var (
		bboxFlag    = flag.String("bbox", "", "bounding box minLon,minLat,maxLon,maxLat (required)")
		layerFlag   = flag.String("layer", "", "source layer name (required)")
		zoomFlag    = flag.Int("zoom", 14, "zoom level")
		outFlag     = flag.String("out", ".", "output directory")
		clipFlag    = flag.Bool("clip", false, "drop features whose extent misses the bounding box")
		mercFlag    = flag.Bool("mercator", false, "emit EPSG:3857 coordinates instead of WGS84")
		baseFlag    = flag.String("base", upstream.DefaultBase, "tile endpoint base URL")
		workersFlag = flag.Int("workers", 5, "concurrent tile fetches")
		retriesFlag = flag.Int("retries", 2, "per-tile retry attempts")
		timeoutFlag = flag.Duration("timeout", 15*time.Second, "per-tile request timeout")
		levelFlag   = flag.String("log-level", "warn", "log level")
		showVersion = flag.Bool("version", false, "print version and exit")
		listLayers  = flag.Bool("layers", false, "list known layers and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	vtlog.Configure(vtlog.Config{
		Level:   *levelFlag,
		Service: "vt2g",
		Version: version.Version,
	})

	catalog := config.DefaultCatalog()
	if *listLayers {
		for _, l := range catalog.Layers() {
			fmt.Printf("%-14s %-8s %s\n", l.Name, l.Geometry, l.Description)
		}
		return
	}

	bbox, err := parseBBox(*bboxFlag)
	if err != nil {
		fatalf("invalid -bbox: %v", err)
	}
	if *layerFlag == "" {
		fatalf("-layer is required (see -layers for the catalog)")
	}
	if err := config.ValidateBaseURL(*baseFlag); err != nil {
		fatalf("invalid -base: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cache.NewNoOpStore()
	defer func() { _ = store.Close() }()

	cfg := jobs.Config{
		DataDir:      *outFlag,
		Workers:      *workersFlag,
		Retries:      *retriesFlag,
		FetchTimeout: *timeoutFlag,
		MinZoom:      0,
		MaxZoom:      24,
		Client: upstream.NewWithOptions(*baseFlag, upstream.Options{
			Timeout:   *timeoutFlag,
			UserAgent: "vt2g/" + version.Version,
		}),
		Store:   store,
		Breaker: resilience.NewCircuitBreaker("upstream", 5, 30*time.Second),
		Catalog: func() *config.Catalog { return catalog },
	}

	req := jobs.Request{
		BBox:     bbox,
		Layer:    *layerFlag,
		Zoom:     *zoomFlag,
		Clip:     *clipFlag,
		Mercator: *mercFlag,
	}

	res, err := jobs.Download(ctx, cfg, req)
	if err != nil {
		fatalf("download failed: %v", err)
	}

	fmt.Printf("wrote %s: %d features from %d tiles (%d empty) in %dms\n",
		res.Output, res.Features, res.Tiles, res.EmptyTiles, res.DurationMS)
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (tile.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return tile.BBox{}, fmt.Errorf("need 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return tile.BBox{}, fmt.Errorf("value %q: %w", p, err)
		}
		vals[i] = v
	}
	b := tile.BBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}
	return b, b.Validate()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "vt2g: "+format+"\n", args...)
	os.Exit(2)
}
