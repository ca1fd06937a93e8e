// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/vt2g/internal/cache"
	"github.com/ManuGH/vt2g/internal/log"
)

// JobState is the lifecycle state of an async download job.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// ErrJobActive is returned when an identical download is already queued or
// running. The API maps it to 409.
var ErrJobActive = errors.New("identical download already in progress")

// ErrJobNotFound is returned for unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// maxJobHistory bounds the number of finished jobs kept for status queries.
const maxJobHistory = 100

// Job is the public record of one async download.
type Job struct {
	ID       string     `json:"id"`
	Request  Request    `json:"request"`
	State    JobState   `json:"state"`
	Created  time.Time  `json:"created"`
	Started  *time.Time `json:"started,omitempty"`
	Finished *time.Time `json:"finished,omitempty"`
	Result   *Result    `json:"result,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Status is the aggregate view served by /api/status.
type Status struct {
	Jobs        int         `json:"jobs"`
	Active      int         `json:"active"`
	LastSuccess *time.Time  `json:"last_success,omitempty"`
	LastJob     *Job        `json:"last_job,omitempty"`
	Cache       cache.Stats `json:"cache"`
}

// Manager runs downloads asynchronously and keeps a bounded job history.
type Manager struct {
	cfg     Config
	baseCtx context.Context

	mu          sync.Mutex
	jobs        map[string]*Job
	order       []string          // job IDs, oldest first
	active      map[string]string // dedupe key -> job ID for queued/running jobs
	lastSuccess time.Time
}

// NewManager creates a manager. baseCtx bounds the lifetime of all jobs: when
// it is canceled, running downloads abort.
func NewManager(baseCtx context.Context, cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		baseCtx: baseCtx,
		jobs:    make(map[string]*Job),
		active:  make(map[string]string),
	}
}

// Submit validates the request and starts it asynchronously. An identical
// request that is still queued or running is rejected with ErrJobActive.
func (m *Manager) Submit(req Request) (Job, error) {
	if _, err := m.cfg.validateRequest(req); err != nil {
		return Job{}, err
	}

	key := dedupeKey(req)
	m.mu.Lock()
	if id, busy := m.active[key]; busy {
		snapshot := *m.jobs[id]
		m.mu.Unlock()
		return snapshot, fmt.Errorf("%w: job %s", ErrJobActive, snapshot.ID)
	}

	job := &Job{
		ID:      uuid.NewString(),
		Request: req,
		State:   JobQueued,
		Created: m.cfg.now(),
	}
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	m.active[key] = job.ID
	m.trimLocked()
	snapshot := *job
	m.mu.Unlock()

	go m.run(job.ID, key, req)
	return snapshot, nil
}

// Get returns a snapshot of a job.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *job, nil
}

// Status returns the aggregate manager state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		Jobs:   len(m.jobs),
		Active: len(m.active),
		Cache:  m.cfg.Store.Stats(),
	}
	if !m.lastSuccess.IsZero() {
		t := m.lastSuccess
		s.LastSuccess = &t
	}
	if n := len(m.order); n > 0 {
		last := *m.jobs[m.order[n-1]]
		s.LastJob = &last
	}
	return s
}

// LastSuccess returns the completion time of the most recent successful job.
// Zero means no job has succeeded yet.
func (m *Manager) LastSuccess() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSuccess
}

func (m *Manager) run(id, key string, req Request) {
	ctx := log.ContextWithJobID(m.baseCtx, id)
	logger := log.WithComponentFromContext(ctx, "jobs")

	now := m.cfg.now()
	m.mu.Lock()
	if job, ok := m.jobs[id]; ok {
		job.State = JobRunning
		job.Started = &now
	}
	m.mu.Unlock()

	res, err := Download(ctx, m.cfg, req)

	finished := m.cfg.now()
	m.mu.Lock()
	delete(m.active, key)
	if job, ok := m.jobs[id]; ok {
		job.Finished = &finished
		if err != nil {
			job.State = JobFailed
			job.Error = err.Error()
		} else {
			job.State = JobDone
			job.Result = res
			m.lastSuccess = finished
		}
	}
	m.mu.Unlock()

	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldJobID, id).
			Str(log.FieldLayer, req.Layer).
			Msg("download job failed")
	}
}

// trimLocked drops the oldest finished jobs beyond the history bound. Active
// jobs are never dropped. Caller holds m.mu.
func (m *Manager) trimLocked() {
	for len(m.order) > maxJobHistory {
		dropped := false
		for i, id := range m.order {
			job := m.jobs[id]
			if job.State == JobQueued || job.State == JobRunning {
				continue
			}
			delete(m.jobs, id)
			m.order = append(m.order[:i], m.order[i+1:]...)
			dropped = true
			break
		}
		if !dropped {
			return
		}
	}
}

func dedupeKey(req Request) string {
	return fmt.Sprintf("%s|%d|%.6f|%.6f|%.6f|%.6f|%v|%v",
		req.Layer, req.Zoom,
		req.BBox.MinLon, req.BBox.MinLat, req.BBox.MaxLon, req.BBox.MaxLat,
		req.Clip, req.Mercator)
}
