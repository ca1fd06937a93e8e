// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vt2g/internal/jobs"
	"github.com/ManuGH/vt2g/internal/log"
	"github.com/ManuGH/vt2g/internal/tile"
)

// maxRequestBody caps the download request body.
const maxRequestBody = 1 << 20

// downloadRequest is the wire form of a download submission. The bounding
// box follows the GeoJSON convention [minLon, minLat, maxLon, maxLat].
type downloadRequest struct {
	BBox     []float64 `json:"bbox"`
	Layer    string    `json:"layer"`
	Zoom     int       `json:"zoom"`
	Clip     bool      `json:"clip"`
	Mercator bool      `json:"mercator"`
}

// handleDownload accepts a download request and starts it asynchronously.
// Responds 202 with the job record, or 409 when the identical download is
// already in progress.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req downloadRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.BBox) != 4 {
		writeError(w, http.StatusBadRequest, "bbox must be [minLon, minLat, maxLon, maxLat]")
		return
	}

	job, err := s.manager.Submit(jobs.Request{
		BBox: tile.BBox{
			MinLon: req.BBox[0], MinLat: req.BBox[1],
			MaxLon: req.BBox[2], MaxLat: req.BBox[3],
		},
		Layer:    req.Layer,
		Zoom:     req.Zoom,
		Clip:     req.Clip,
		Mercator: req.Mercator,
	})
	switch {
	case errors.Is(err, jobs.ErrJobActive):
		writeJSON(w, http.StatusConflict, job)
		return
	case errors.Is(err, jobs.ErrInvalidRequest), errors.Is(err, jobs.ErrUnknownLayer):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error().Err(err).Str(log.FieldEvent, "api.submit_failed").Msg("download submission failed")
		writeError(w, http.StatusInternalServerError, "submission failed")
		return
	}

	logger.Info().
		Str(log.FieldEvent, "api.download_accepted").
		Str(log.FieldJobID, job.ID).
		Str(log.FieldLayer, job.Request.Layer).
		Int(log.FieldZoom, job.Request.Zoom).
		Msg("download job accepted")

	w.Header().Set("Location", "/api/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

// handleJob returns a single job record.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.manager.Get(id)
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// statusResponse is the /api/status body.
type statusResponse struct {
	Version string      `json:"version"`
	Status  jobs.Status `json:"status"`
}

// handleStatus returns the aggregate daemon state.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Version: s.version,
		Status:  s.manager.Status(),
	})
}

// handleLayers returns the active layer catalog.
func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"layers": s.catalog().Layers(),
	})
}
