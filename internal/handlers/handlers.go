package handlers

import (
	"context"
	"crypto/sha256"
	"sync/atomic"
	"time"

	"media-editor/internal/database"
	"media-editor/internal/edit"
	"media-editor/internal/jobs"
	"media-editor/internal/metrics"
)

// JobService is the part of *jobs.Service the handlers use.
type JobService interface {
	Submit(req edit.Request) (string, error)
	Get(id string) (jobs.Snapshot, error)
	List() []jobs.Snapshot
	Cancel(id string) error
	History(ctx context.Context, limit, offset int) ([]database.EditRecord, error)
	GetStats() metrics.Stats
}

// Options configures the handlers.
type Options struct {
	// TokenHash is the bcrypt hash of the API bearer token. Empty disables
	// authentication.
	TokenHash string

	// EngineAvailable reports whether edits can start. Nil means always.
	EngineAvailable func() bool

	// WorkDir is the directory submitted input and output paths are
	// resolved against. Empty means the current directory.
	WorkDir string
}

type Handlers struct {
	jobs            JobService
	tokenHash       []byte
	tokenDigest     atomic.Pointer[[sha256.Size]byte]
	engineAvailable func() bool
	workDir         string
	startTime       time.Time
}

func New(svc JobService, opts Options) *Handlers {
	h := &Handlers{
		jobs:            svc,
		engineAvailable: opts.EngineAvailable,
		workDir:         opts.WorkDir,
		startTime:       time.Now(),
	}
	if h.workDir == "" {
		h.workDir = "."
	}
	if opts.TokenHash != "" {
		h.tokenHash = []byte(opts.TokenHash)
	}
	if h.engineAvailable == nil {
		h.engineAvailable = func() bool { return true }
	}
	return h
}
