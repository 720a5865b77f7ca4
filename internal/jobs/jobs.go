// Package jobs runs edits asynchronously on behalf of the HTTP API and the
// CLI.
//
// A Service accepts edit requests, runs them through an editor with bounded
// concurrency, keeps the latest progress and outcome of each job in memory,
// records the history in the database and publishes finished outputs.
package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-editor/internal/database"
	"media-editor/internal/edit"
	"media-editor/internal/logging"
	"media-editor/internal/metrics"
	"media-editor/internal/publish"
)

var (
	// ErrNotFound is returned for an unknown job ID.
	ErrNotFound = errors.New("job not found")

	// ErrAlreadyFinished is returned when cancelling a job that has resolved.
	ErrAlreadyFinished = errors.New("job already finished")

	// ErrShuttingDown is returned by Submit after Shutdown.
	ErrShuttingDown = errors.New("job service shutting down")
)

// storeTimeout bounds history writes made outside a request context.
const storeTimeout = 5 * time.Second

// defaultRetained is how many finished jobs are kept in memory.
const defaultRetained = 200

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Editor runs one edit to completion. *editor.Orchestrator implements it.
type Editor interface {
	Execute(ctx context.Context, req edit.Request, onProgress func(edit.Progress), onFallback func(edit.FallbackEvent)) (*edit.Result, error)
}

// Store persists the job history. *database.Database implements it.
type Store interface {
	InsertEdit(ctx context.Context, rec *database.EditRecord) error
	MarkEditRunning(ctx context.Context, id string) error
	FinishEdit(ctx context.Context, id string, out database.EditOutcome) error
	ListEdits(ctx context.Context, limit, offset int) ([]database.EditRecord, error)
	CountEdits(ctx context.Context) (int, error)
}

// Publisher copies finished outputs somewhere else. *publish.Publisher
// implements it.
type Publisher interface {
	Publish(ctx context.Context, result *edit.Result) (*publish.Publication, error)
}

// Admission gates the start of each edit. *memory.Monitor implements it.
type Admission interface {
	Wait(ctx context.Context) error
}

// Option configures a Service.
type Option func(*Service)

// WithAdmission makes every edit wait on a before it starts.
func WithAdmission(a Admission) Option {
	return func(s *Service) { s.admission = a }
}

// WithRetained sets how many finished jobs are kept in memory. Values below
// one are ignored.
func WithRetained(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retained = n
		}
	}
}

// Snapshot is a point-in-time copy of a job.
type Snapshot struct {
	ID          string               `json:"id"`
	Status      Status               `json:"status"`
	InputPath   string               `json:"inputPath"`
	OutputPath  string               `json:"outputPath"`
	Progress    edit.Progress        `json:"progress"`
	Fallbacks   []edit.FallbackEvent `json:"fallbacks,omitempty"`
	Result      *edit.Result         `json:"result,omitempty"`
	Publication *publish.Publication `json:"publication,omitempty"`
	Error       string               `json:"error,omitempty"`
	Warning     string               `json:"warning,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	StartedAt   *time.Time           `json:"startedAt,omitempty"`
	FinishedAt  *time.Time           `json:"finishedAt,omitempty"`
}

type job struct {
	snap   Snapshot
	req    edit.Request
	cancel context.CancelFunc

	// executed is set once the editor has returned; the job can no longer
	// be cancelled.
	executed bool
}

// Service tracks and runs jobs.
type Service struct {
	editor    Editor
	store     Store
	publisher Publisher
	admission Admission

	slots    chan struct{}
	retained int

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu     sync.RWMutex
	jobs   map[string]*job
	closed bool
}

// NewService creates a service that runs at most maxConcurrent edits at a
// time. store and publisher may be nil.
func NewService(editor Editor, store Store, publisher Publisher, maxConcurrent int, opts ...Option) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		editor:    editor,
		store:     store,
		publisher: publisher,
		slots:     make(chan struct{}, maxConcurrent),
		retained:  defaultRetained,
		baseCtx:   ctx,
		cancelAll: cancel,
		jobs:      make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req, records it and starts it in the background. It
// returns the new job's ID.
func (s *Service) Submit(req edit.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrShuttingDown
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(s.baseCtx)
	j := &job{
		req:    req,
		cancel: cancel,
		snap: Snapshot{
			ID:         id,
			Status:     StatusQueued,
			InputPath:  req.InputPath,
			OutputPath: req.OutputPath,
			Progress:   edit.NotStarted(),
			CreatedAt:  time.Now(),
		},
	}
	s.jobs[id] = j
	s.wg.Add(1)
	s.mu.Unlock()

	s.record(func(ctx context.Context, store Store) error {
		return store.InsertEdit(ctx, &database.EditRecord{
			ID:         id,
			InputPath:  req.InputPath,
			OutputPath: req.OutputPath,
			Status:     database.EditStatusQueued,
			CreatedAt:  j.snap.CreatedAt,
		})
	})

	logging.Info("Job %s queued: %s -> %s", id, req.InputPath, req.OutputPath)

	go s.run(ctx, j)
	return id, nil
}

func (s *Service) run(ctx context.Context, j *job) {
	defer s.wg.Done()
	defer j.cancel()

	id := j.snap.ID

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		s.finish(j, StatusCancelled, nil, nil, nil, nil)
		return
	}
	defer func() { <-s.slots }()

	if s.admission != nil {
		if err := s.admission.Wait(ctx); err != nil {
			s.finish(j, StatusCancelled, nil, nil, nil, nil)
			return
		}
	}

	s.update(j, func(snap *Snapshot) {
		now := time.Now()
		snap.Status = StatusRunning
		snap.StartedAt = &now
	})
	s.record(func(ctx context.Context, store Store) error {
		return store.MarkEditRunning(ctx, id)
	})

	result, err := s.editor.Execute(ctx, j.req,
		func(p edit.Progress) {
			s.update(j, func(snap *Snapshot) { snap.Progress = p })
		},
		func(ev edit.FallbackEvent) {
			s.update(j, func(snap *Snapshot) { snap.Fallbacks = append(snap.Fallbacks, ev) })
		},
	)
	s.mu.Lock()
	j.executed = true
	s.mu.Unlock()

	switch {
	case err == nil:
		pub, warning := s.publish(result)
		s.finish(j, StatusCompleted, result, pub, nil, warning)
	case errors.Is(err, context.Canceled):
		s.finish(j, StatusCancelled, nil, nil, nil, nil)
	default:
		s.finish(j, StatusFailed, nil, nil, err, nil)
	}
}

// publish runs the post-processing step. Its failure is only a warning.
func (s *Service) publish(result *edit.Result) (*publish.Publication, error) {
	if s.publisher == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return s.publisher.Publish(ctx, result)
}

func (s *Service) finish(j *job, status Status, result *edit.Result, pub *publish.Publication, err, warning error) {
	now := time.Now()

	s.mu.RLock()
	snap := j.snap
	s.mu.RUnlock()

	snap.Status = status
	snap.Result = result
	snap.Publication = pub
	snap.FinishedAt = &now
	if err != nil {
		snap.Error = err.Error()
	}
	if warning != nil {
		snap.Warning = warning.Error()
	}

	// History is written before the terminal state becomes visible.
	s.record(func(ctx context.Context, store Store) error {
		return store.FinishEdit(ctx, snap.ID, outcomeOf(&snap))
	})
	s.update(j, func(cur *Snapshot) { *cur = snap })
	s.prune()

	switch status {
	case StatusCompleted:
		if warning != nil {
			logging.Warn("Job %s completed with warning: %v", snap.ID, warning)
		} else {
			logging.Info("Job %s completed", snap.ID)
		}
	case StatusFailed:
		logging.Error("Job %s failed: %v", snap.ID, err)
	default:
		logging.Info("Job %s %s", snap.ID, status)
	}
}

func outcomeOf(snap *Snapshot) database.EditOutcome {
	out := database.EditOutcome{
		Status:  database.EditStatus(snap.Status),
		Error:   snap.Error,
		Warning: snap.Warning,
	}
	if snap.FinishedAt != nil {
		out.FinishedAt = *snap.FinishedAt
	}
	if snap.Publication != nil {
		out.PublishPath = snap.Publication.Path
	}
	if r := snap.Result; r != nil {
		out.DurationMs = r.DurationMs
		out.FileSize = r.FileSizeBytes
		if r.VideoCodec != nil {
			out.VideoCodec = *r.VideoCodec
		}
		if r.AudioCodec != nil {
			out.AudioCodec = *r.AudioCodec
		}
	}
	return out
}

func (s *Service) update(j *job, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&j.snap)
}

// record writes to the store, logging failures. History is best effort.
func (s *Service) record(fn func(ctx context.Context, store Store) error) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := fn(ctx, s.store); err != nil {
		logging.Warn("Failed to record job history: %v", err)
	}
}

// prune drops the oldest finished jobs beyond the retention limit.
func (s *Service) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var finished []*job
	for _, j := range s.jobs {
		if j.snap.Status.Terminal() {
			finished = append(finished, j)
		}
	}
	if len(finished) <= s.retained {
		return
	}

	sort.Slice(finished, func(a, b int) bool {
		return finished[a].snap.FinishedAt.Before(*finished[b].snap.FinishedAt)
	})
	for _, j := range finished[:len(finished)-s.retained] {
		delete(s.jobs, j.snap.ID)
	}
}

// Get returns a snapshot of one job.
func (s *Service) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return copySnapshot(j.snap), nil
}

// List returns snapshots of the jobs held in memory, newest first.
func (s *Service) List() []Snapshot {
	s.mu.RLock()
	snaps := make([]Snapshot, 0, len(s.jobs))
	for _, j := range s.jobs {
		snaps = append(snaps, copySnapshot(j.snap))
	}
	s.mu.RUnlock()

	sort.Slice(snaps, func(a, b int) bool {
		return snaps[a].CreatedAt.After(snaps[b].CreatedAt)
	})
	return snaps
}

func copySnapshot(snap Snapshot) Snapshot {
	snap.Fallbacks = append([]edit.FallbackEvent(nil), snap.Fallbacks...)
	return snap
}

// Cancel requests cancellation of a queued or running job. Once the edit
// itself has returned, a job that is still publishing counts as finished.
func (s *Service) Cancel(id string) error {
	s.mu.RLock()
	j, ok := s.jobs[id]
	var status Status
	var executed bool
	if ok {
		status = j.snap.Status
		executed = j.executed
	}
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if status.Terminal() || executed {
		return ErrAlreadyFinished
	}

	logging.Info("Job %s cancellation requested", id)
	j.cancel()
	return nil
}

// History returns recorded jobs from the store, newest first.
func (s *Service) History(ctx context.Context, limit, offset int) ([]database.EditRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListEdits(ctx, limit, offset)
}

// Shutdown cancels every job and waits for them to resolve or for ctx.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancelAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All jobs stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetStats implements metrics.StatsProvider.
func (s *Service) GetStats() metrics.Stats {
	var stats metrics.Stats

	s.mu.RLock()
	for _, j := range s.jobs {
		switch j.snap.Status {
		case StatusQueued:
			stats.Queued++
		case StatusRunning:
			stats.Running++
		case StatusCompleted:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		case StatusCancelled:
			stats.Cancelled++
		}
	}
	s.mu.RUnlock()

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if n, err := s.store.CountEdits(ctx); err == nil {
			stats.Recorded = n
		}
	}
	return stats
}
