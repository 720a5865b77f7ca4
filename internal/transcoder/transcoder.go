package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"media-editor/internal/engine"
	"media-editor/internal/logging"
)

// ErrNoStreams is returned by Start when both audio and video are removed.
var ErrNoStreams = errors.New("output would contain no streams")

// probeTimeout bounds each ffprobe call.
const probeTimeout = 30 * time.Second

// Options locates the FFmpeg binaries. Empty paths are looked up on PATH.
type Options struct {
	FFmpegPath  string
	FFprobePath string
}

// Factory builds FFmpeg-backed engines.
type Factory struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFactory creates a factory for the given binaries.
func NewFactory(opts Options) *Factory {
	f := &Factory{ffmpegPath: opts.FFmpegPath, ffprobePath: opts.FFprobePath}
	if f.ffmpegPath == "" {
		f.ffmpegPath = "ffmpeg"
	}
	if f.ffprobePath == "" {
		f.ffprobePath = "ffprobe"
	}
	return f
}

// Available reports whether both binaries can be found.
func (f *Factory) Available() bool {
	_, err1 := exec.LookPath(f.ffmpegPath)
	_, err2 := exec.LookPath(f.ffprobePath)
	return err1 == nil && err2 == nil
}

// NewEngine implements engine.Factory. It fails when ffmpeg cannot be found.
func (f *Factory) NewEngine(cfg engine.Config, listener engine.Listener) (engine.Engine, error) {
	ffmpeg, err := exec.LookPath(f.ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}
	ffprobe, err := exec.LookPath(f.ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not available: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ffmpegPath:  ffmpeg,
		ffprobePath: ffprobe,
		cfg:         cfg,
		listener:    listener,
		progress:    newProgressTracker(),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Engine runs a single ffmpeg export.
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	cfg         engine.Config
	listener    engine.Listener
	progress    *progressTracker

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool

	cancelled atomic.Bool
}

// Start launches ffmpeg. Errors before the process is running are returned;
// later failures go to the listener.
func (e *Engine) Start(media engine.EditedMedia, outputPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return engine.ErrAlreadyStarted
	}
	e.started = true

	if media.RemoveAudio && media.RemoveVideo {
		return ErrNoStreams
	}
	if _, err := os.Stat(media.InputPath); err != nil {
		return fmt.Errorf("input not readable: %w", err)
	}

	plan, fellBack := planOutput(media, e.cfg, outputPath)
	args := buildArgs(media, e.cfg, plan, outputPath)

	cmd := exec.CommandContext(e.ctx, e.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("Running ffmpeg %s", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	e.progress.started.Store(true)

	go e.probeInputDuration(media.InputPath)
	go e.wait(cmd, stdout, &stderr, outputPath)

	if fellBack {
		original, fallback := requested(media, e.cfg), substituted(plan, e.cfg)
		go e.listener.OnFallbackApplied(original, fallback)
	}

	return nil
}

// Progress implements engine.Engine.
func (e *Engine) Progress() (engine.ProgressState, int) {
	return e.progress.snapshot()
}

// Cancel kills ffmpeg. The listener is not called for a cancelled export.
func (e *Engine) Cancel() {
	e.cancelled.Store(true)
	e.cancel()
}

// Release stops anything still running.
func (e *Engine) Release() {
	e.cancel()
}

func (e *Engine) probeInputDuration(inputPath string) {
	ctx, cancel := context.WithTimeout(e.ctx, probeTimeout)
	defer cancel()

	probe, err := runProbe(ctx, e.ffprobePath, inputPath)
	if err != nil {
		logging.Debug("Could not probe duration of %s: %v", inputPath, err)
		e.progress.durationUs.Store(durationUnknown)
		return
	}

	if us := probe.durationUs(); us > 0 {
		e.progress.durationUs.Store(us)
	} else {
		e.progress.durationUs.Store(durationUnknown)
	}
}

func (e *Engine) wait(cmd *exec.Cmd, stdout io.Reader, stderr *bytes.Buffer, outputPath string) {
	e.progress.consume(stdout)
	err := cmd.Wait()

	if e.cancelled.Load() {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("failed to remove partial output %s: %v", outputPath, rmErr)
		}
		return
	}

	if err != nil {
		e.listener.OnError(fmt.Errorf("ffmpeg error: %w - %s", err, stderrTail(stderr.String(), 5)))
		return
	}

	e.listener.OnCompleted(e.describeOutput(outputPath))
}

// describeOutput probes the finished file. A failed probe still reports the
// file size when it can.
func (e *Engine) describeOutput(outputPath string) engine.ExportResult {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	probe, err := runProbe(ctx, e.ffprobePath, outputPath)
	if err == nil {
		return probe.exportResult()
	}

	logging.Warn("Could not probe output %s: %v", outputPath, err)
	result := (&probeOutput{}).exportResult()
	if info, statErr := os.Stat(outputPath); statErr == nil {
		result.FileSizeBytes = info.Size()
	}
	return result
}

// stderrTail returns the last n non-empty lines of ffmpeg's stderr.
func stderrTail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append([]string{line}, kept...)
		}
	}
	return strings.Join(kept, " | ")
}
