// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vt2g/internal/fsutil"
	"github.com/ManuGH/vt2g/internal/log"
)

// handleFile serves one exported GeoJSON file from the data directory. The
// path is confined symlink-safe to the data directory; only .geojson files
// are served.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	name := chi.URLParam(r, "name")
	if !strings.HasSuffix(name, ".geojson") {
		logger.Warn().
			Str(log.FieldEvent, "file_req.denied").
			Str(log.FieldPath, name).
			Str("reason", "extension").
			Msg("refusing non-GeoJSON file request")
		writeNotFound(w)
		return
	}

	path, err := fsutil.ConfineRelPath(s.cfg.DataDir, name)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "file_req.denied").
			Str(log.FieldPath, name).
			Str("reason", "path_escape").
			Msg("file request escapes data directory")
		writeNotFound(w)
		return
	}
	if err := fsutil.IsRegularFile(path); err != nil {
		writeNotFound(w)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	http.ServeFile(w, r, path)
}
