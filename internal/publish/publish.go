// Package publish copies finished edits into the media library and renders
// a poster thumbnail next to each one.
//
// Publishing runs after an edit has completed. Its failures never change the
// outcome of the edit: they are reported as *edit.PublishWarning and the
// output stays where the engine wrote it.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-editor/internal/edit"
	"media-editor/internal/filesystem"
	"media-editor/internal/logging"
	"media-editor/internal/mediatypes"
	"media-editor/internal/metrics"
)

// maxNameAttempts bounds the search for a free file name in the library.
const maxNameAttempts = 1000

// Publication is where a published edit ended up.
type Publication struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	PosterPath  string `json:"posterPath,omitempty"`
}

// Publisher copies outputs into a library directory.
type Publisher struct {
	libraryDir string
	enabled    bool
	ffmpegPath string
	posterSize int
	retry      filesystem.RetryConfig
}

// New creates a publisher. A disabled publisher skips every output.
func New(libraryDir, ffmpegPath string, enabled bool) *Publisher {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if enabled {
		logging.Debug("Publisher: enabled, library dir: %s", libraryDir)
	} else {
		logging.Debug("Publisher: disabled")
	}
	return &Publisher{
		libraryDir: libraryDir,
		enabled:    enabled,
		ffmpegPath: ffmpegPath,
		posterSize: 320,
		retry:      filesystem.DefaultRetryConfig(),
	}
}

// IsEnabled reports whether outputs are published.
func (p *Publisher) IsEnabled() bool {
	return p.enabled
}

// Publish copies result's output into the library. When the output has a
// video track a poster is rendered as well; a poster failure is only logged.
// It returns nil, nil when publishing is disabled.
func (p *Publisher) Publish(ctx context.Context, result *edit.Result) (*Publication, error) {
	if !p.enabled || result == nil {
		metrics.PublishTotal.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.PublishDuration.Observe(time.Since(start).Seconds())
	}()

	dest, err := p.copyToLibrary(result.OutputPath)
	if err != nil {
		metrics.PublishTotal.WithLabelValues("error").Inc()
		logging.Warn("Failed to publish %s: %v", result.OutputPath, err)
		return nil, &edit.PublishWarning{Path: result.OutputPath, Cause: err}
	}
	metrics.PublishTotal.WithLabelValues("success").Inc()

	container := mediatypes.ForPath(dest)
	pub := &Publication{Path: dest, ContentType: container.Mime}

	if container.Kind != mediatypes.KindAudio && (result.VideoCodec != nil || result.Width != nil) {
		posterPath := posterPathFor(dest)
		if err := p.renderPoster(ctx, dest, posterPath); err != nil {
			metrics.PosterGenerationsTotal.WithLabelValues("error").Inc()
			logging.Warn("Poster generation failed for %s: %v", dest, err)
		} else {
			metrics.PosterGenerationsTotal.WithLabelValues("success").Inc()
			pub.PosterPath = posterPath
		}
	} else {
		metrics.PosterGenerationsTotal.WithLabelValues("skipped").Inc()
	}

	logging.Info("Published %s to %s", result.OutputPath, dest)
	return pub, nil
}

// copyToLibrary copies src into the library under a free name. The copy is
// written to a hidden temporary file first so a partial file is never
// visible under its final name.
func (p *Publisher) copyToLibrary(src string) (string, error) {
	in, err := filesystem.OpenWithRetry(src, p.retry)
	if err != nil {
		return "", fmt.Errorf("failed to open output: %w", err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	if err := os.MkdirAll(p.libraryDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create library directory: %w", err)
	}

	out, err := os.CreateTemp(p.libraryDir, ".publish-*")
	if err != nil {
		return "", fmt.Errorf("failed to create library file: %w", err)
	}
	tmp := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to copy output: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to sync library file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close library file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		logging.Debug("failed to chmod %s: %v", tmp, err)
	}

	dest, err := p.claimName(filepath.Base(src))
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	// dest is an empty placeholder owned by this call; the rename replaces it.
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		os.Remove(dest)
		return "", fmt.Errorf("failed to move library file into place: %w", err)
	}

	return dest, nil
}

// claimName reserves a library path for name by creating it exclusively,
// adding a numeric suffix while the name is taken. Concurrent publishers
// never receive the same path.
func (p *Publisher) claimName(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(p.libraryDir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to claim %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to claim %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, p.libraryDir)
}

func posterPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".jpg"
}
