// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/ManuGH/vt2g/internal/log"
	"github.com/ManuGH/vt2g/internal/metrics"
)

// CatalogHolder provides hot-reloadable access to the layer catalog. When no
// catalog file is configured it serves the built-in default and never
// changes.
type CatalogHolder struct {
	path    string
	current atomic.Pointer[Catalog]
}

// NewCatalogHolder loads the initial catalog. A load failure of a configured
// file is fatal at startup but only a warning on later reloads.
func NewCatalogHolder(path string) (*CatalogHolder, error) {
	h := &CatalogHolder{path: path}

	if path == "" {
		h.current.Store(DefaultCatalog())
		return h, nil
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	h.current.Store(cat)
	return h, nil
}

// Current returns the active catalog.
func (h *CatalogHolder) Current() *Catalog {
	return h.current.Load()
}

// Reload re-reads the catalog file. The previous catalog stays active when
// the new file is invalid.
func (h *CatalogHolder) Reload() error {
	if h.path == "" {
		return nil
	}
	cat, err := LoadCatalog(h.path)
	if err != nil {
		metrics.RecordCatalogReload(false)
		return err
	}
	h.current.Store(cat)
	metrics.RecordCatalogReload(true)
	return nil
}

// Watch blocks until ctx is done, reloading the catalog whenever the file
// changes. Editors often replace files via rename, so the parent directory
// is watched and events are filtered by name.
func (h *CatalogHolder) Watch(ctx context.Context) error {
	if h.path == "" {
		<-ctx.Done()
		return nil
	}

	logger := log.WithComponent("catalog")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(h.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := h.Reload(); err != nil {
				logger.Warn().
					Err(err).
					Str(log.FieldEvent, "catalog.reload_failed").
					Str(log.FieldPath, h.path).
					Msg("layer catalog reload failed, keeping previous catalog")
				continue
			}
			logger.Info().
				Str(log.FieldEvent, "catalog.reloaded").
				Str(log.FieldPath, h.path).
				Int("layers", h.Current().Len()).
				Msg("layer catalog reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("catalog watcher error")
		}
	}
}
