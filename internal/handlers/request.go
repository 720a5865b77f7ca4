package handlers

import (
	"path/filepath"

	"media-editor/internal/edit"
)

// EditRequest is the JSON body of POST /api/edits.
type EditRequest struct {
	Input             string            `json:"input"`
	Output            string            `json:"output"`
	Crop              *edit.Rect        `json:"crop,omitempty"`
	Resize            *ResizeRequest    `json:"resize,omitempty"`
	RotationDegrees   *float64          `json:"rotationDegrees,omitempty"`
	Transcode         *TranscodeRequest `json:"transcode,omitempty"`
	RemoveAudio       bool              `json:"removeAudio,omitempty"`
	RemoveVideo       bool              `json:"removeVideo,omitempty"`
	FlattenSlowMotion bool              `json:"flattenSlowMotion,omitempty"`
}

// ResizeRequest selects one resize variant. Width and height give a fixed
// size, height alone keeps the aspect ratio and aspectRatio changes it.
type ResizeRequest struct {
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
	AspectRatio *float64 `json:"aspectRatio,omitempty"`
	Layout      string   `json:"layout,omitempty"`
}

// TranscodeRequest carries the optional encoder knobs.
type TranscodeRequest struct {
	VideoCodec              string   `json:"videoCodec,omitempty"`
	AudioCodec              string   `json:"audioCodec,omitempty"`
	TargetVideoBitrate      *int     `json:"targetVideoBitrate,omitempty"`
	VideoBitrateMode        string   `json:"videoBitrateMode,omitempty"`
	VideoQuality            string   `json:"videoQuality,omitempty"`
	KeyframeIntervalSeconds *float64 `json:"keyframeIntervalSeconds,omitempty"`
	OperatingRate           *int     `json:"operatingRate,omitempty"`
	Priority                *int     `json:"priority,omitempty"`
}

// ToRequest converts the body into a validated edit request.
func (r EditRequest) ToRequest() (edit.Request, error) {
	req := edit.Request{
		InputPath:         r.Input,
		OutputPath:        r.Output,
		RotationDegrees:   r.RotationDegrees,
		RemoveAudio:       r.RemoveAudio,
		RemoveVideo:       r.RemoveVideo,
		FlattenSlowMotion: r.FlattenSlowMotion,
	}

	if r.Crop != nil {
		crop, err := edit.NewCropOptions(*r.Crop)
		if err != nil {
			return edit.Request{}, err
		}
		req.Crop = crop
	}

	if r.Resize != nil {
		resize, err := r.Resize.toOptions()
		if err != nil {
			return edit.Request{}, err
		}
		req.Resize = resize
	}

	if r.Transcode != nil {
		transcode, err := r.Transcode.toOptions()
		if err != nil {
			return edit.Request{}, err
		}
		req.Transcode = transcode
	}

	return req, req.Validate()
}

func (r ResizeRequest) toOptions() (edit.ResizeOptions, error) {
	layout, err := edit.ParseLayoutMode(r.Layout)
	if err != nil {
		return nil, err
	}

	switch {
	case r.AspectRatio != nil:
		if r.Width != nil || r.Height != nil {
			return nil, &edit.ValidationError{Field: "resize", Reason: "aspectRatio cannot be combined with width or height"}
		}
		return edit.NewAspectRatioResize(*r.AspectRatio, layout)
	case r.Width != nil:
		if r.Height == nil {
			return nil, &edit.ValidationError{Field: "resize.height", Reason: "height is required with width"}
		}
		return edit.NewFixedResize(*r.Width, *r.Height, layout)
	case r.Height != nil:
		if r.Layout != "" {
			return nil, &edit.ValidationError{Field: "resize.layout", Reason: "layout needs both width and height"}
		}
		return edit.NewHeightResize(*r.Height)
	default:
		return nil, &edit.ValidationError{Field: "resize", Reason: "one of width, height or aspectRatio is required"}
	}
}

func (t TranscodeRequest) toOptions() (edit.TranscodeOptions, error) {
	opts := edit.TranscodeOptions{
		VideoCodec:              t.VideoCodec,
		AudioCodec:              t.AudioCodec,
		TargetVideoBitrate:      t.TargetVideoBitrate,
		KeyframeIntervalSeconds: t.KeyframeIntervalSeconds,
		OperatingRate:           t.OperatingRate,
		Priority:                t.Priority,
	}

	if t.VideoBitrateMode != "" {
		mode, err := edit.ParseBitrateMode(t.VideoBitrateMode)
		if err != nil {
			return edit.TranscodeOptions{}, err
		}
		opts.VideoBitrateMode = &mode
	}

	if t.VideoQuality != "" {
		quality, err := edit.ParseVideoQuality(t.VideoQuality)
		if err != nil {
			return edit.TranscodeOptions{}, err
		}
		opts.VideoQuality = &quality
	}

	return opts, nil
}

// resolveWorkPath joins a client supplied path onto the work directory.
// Absolute paths, paths that climb out of the work directory and paths
// that leave it through a symlink are rejected.
func resolveWorkPath(workDir, field, path string) (string, error) {
	if !filepath.IsLocal(path) {
		return "", &edit.ValidationError{Field: field, Reason: "must be a relative path inside the work directory"}
	}
	full := filepath.Join(workDir, path)
	if !insideDir(workDir, full) {
		return "", &edit.ValidationError{Field: field, Reason: "resolves outside the work directory"}
	}
	return full, nil
}

// insideDir reports whether path, after following symlinks, stays under
// root. Only the part of path that exists on disk is followed.
func insideDir(root, path string) bool {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return true
	}

	existing := path
	var rest []string
	for {
		real, err := filepath.EvalSymlinks(existing)
		if err == nil {
			existing = filepath.Join(append([]string{real}, rest...)...)
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return false
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	rel, err := filepath.Rel(realRoot, existing)
	return err == nil && filepath.IsLocal(rel)
}
