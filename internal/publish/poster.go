package publish

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"

	_ "image/png"

	"github.com/disintegration/imaging"

	"media-editor/internal/filesystem"
	"media-editor/internal/logging"
)

// renderPoster extracts a frame from videoPath and writes it as a JPEG.
func (p *Publisher) renderPoster(ctx context.Context, videoPath, posterPath string) error {
	img, err := p.extractFrame(ctx, videoPath)
	if err != nil {
		return err
	}
	return p.writePoster(img, posterPath)
}

// extractFrame grabs the frame at one second, or the first frame for clips
// shorter than that.
func (p *Publisher) extractFrame(ctx context.Context, videoPath string) (image.Image, error) {
	logging.Debug("Extracting poster frame: %s", videoPath)

	var stdout, stderr bytes.Buffer
	run := func(args ...string) error {
		stdout.Reset()
		stderr.Reset()
		cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		return cmd.Run()
	}

	err := run("-ss", "00:00:01", "-i", videoPath, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	if err != nil || stdout.Len() == 0 {
		logging.Debug("FFmpeg first attempt failed for %s: %v, stderr: %s", videoPath, err, stderr.String())

		if err := run("-i", videoPath, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-"); err != nil {
			return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
		}
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", videoPath)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

// writePoster scales img to fit the poster box and saves it as a JPEG.
func (p *Publisher) writePoster(img image.Image, posterPath string) error {
	poster := imaging.Fit(img, p.posterSize, p.posterSize, imaging.Lanczos)

	f, err := filesystem.CreateWithRetry(posterPath, p.retry)
	if err != nil {
		return fmt.Errorf("failed to create poster: %w", err)
	}

	if err := imaging.Encode(f, poster, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		f.Close()
		os.Remove(posterPath)
		return fmt.Errorf("failed to encode poster: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close poster: %w", err)
	}

	logging.Debug("Poster written: %s", posterPath)
	return nil
}
