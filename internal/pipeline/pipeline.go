// Package pipeline turns an edit request into the effect list and encoder
// configuration handed to the engine. Everything here is pure and
// deterministic.
package pipeline

import (
	"math"

	"media-editor/internal/edit"
	"media-editor/internal/engine"
)

// Quality preset bitrates in bits per second.
const (
	BitrateHigh   = 12_000_000
	BitrateMedium = 6_000_000
	BitrateLow    = 3_000_000
)

// Plan is everything the orchestrator submits to the engine for one request.
type Plan struct {
	Media  engine.EditedMedia
	Config engine.Config
}

// Build derives the engine plan for req. The request is assumed valid.
func Build(req edit.Request) Plan {
	return Plan{
		Media: engine.EditedMedia{
			InputPath:            req.InputPath,
			Effects:              BuildEffects(req),
			RemoveAudio:          req.RemoveAudio,
			RemoveVideo:          req.RemoveVideo,
			FlattenForSlowMotion: req.FlattenSlowMotion,
		},
		Config: engine.Config{
			VideoMimeType: req.Transcode.VideoCodec,
			AudioMimeType: req.Transcode.AudioCodec,
			Encoder:       BuildEncoderSettings(req.Transcode),
		},
	}
}

// BuildEffects returns the video effects in application order: crop, then
// resize, then rotate. Stages that are not requested are left out, as is a
// rotation by a multiple of 360 degrees.
func BuildEffects(req edit.Request) []engine.Effect {
	var effects []engine.Effect
	if req.Crop != nil {
		effects = append(effects, CropEffect(req.Crop.Rect()))
	}
	if req.Resize != nil {
		if p, ok := PresentationEffect(req.Resize); ok {
			effects = append(effects, p)
		}
	}
	if req.RotationDegrees != nil && math.Mod(*req.RotationDegrees, 360) != 0 {
		effects = append(effects, engine.ScaleAndRotate{RotationDegrees: *req.RotationDegrees})
	}
	return effects
}

// CropEffect maps a top-left origin [0,1] rectangle onto the engine's [-1,1]
// space, where y points up.
func CropEffect(r edit.Rect) engine.Crop {
	return engine.Crop{
		Left:   r.Left*2 - 1,
		Right:  r.Right*2 - 1,
		Top:    1 - r.Top*2,
		Bottom: 1 - r.Bottom*2,
	}
}

// PresentationEffect converts a resize option. It reports false for a
// variant it does not know.
func PresentationEffect(r edit.ResizeOptions) (engine.Presentation, bool) {
	switch v := r.(type) {
	case edit.FixedResize:
		return engine.PresentationForWidthAndHeight(v.Width(), v.Height(), engineLayout(v.Layout())), true
	case edit.HeightResize:
		return engine.PresentationForHeight(v.Height()), true
	case edit.AspectRatioResize:
		return engine.PresentationForAspectRatio(v.Ratio(), engineLayout(v.Layout())), true
	default:
		return engine.Presentation{}, false
	}
}

func engineLayout(l edit.LayoutMode) engine.Layout {
	switch l {
	case edit.LayoutScaleToFitWithCrop:
		return engine.LayoutScaleToFitWithCrop
	case edit.LayoutStretchToFit:
		return engine.LayoutStretchToFit
	default:
		return engine.LayoutScaleToFit
	}
}

// BuildEncoderSettings returns nil unless at least one encoder knob is set,
// so that the engine keeps its own defaults.
func BuildEncoderSettings(o edit.TranscodeOptions) *engine.EncoderSettings {
	var settings engine.EncoderSettings
	changed := false

	if bitrate, ok := ResolveBitrate(o); ok {
		settings.Bitrate = bitrate
		changed = true
	}

	if o.VideoBitrateMode != nil {
		mode := engineBitrateMode(*o.VideoBitrateMode)
		settings.BitrateMode = &mode
		changed = true
	}

	if o.KeyframeIntervalSeconds != nil {
		interval := *o.KeyframeIntervalSeconds
		settings.KeyframeIntervalSeconds = &interval
		changed = true
	}

	// The engine only accepts the performance hint as a pair.
	if o.OperatingRate != nil && o.Priority != nil {
		settings.Performance = &engine.PerformanceHint{
			OperatingRate: *o.OperatingRate,
			Priority:      *o.Priority,
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return &settings
}

// ResolveBitrate picks the explicit target bitrate first, then the quality
// preset. It reports false when neither is set.
func ResolveBitrate(o edit.TranscodeOptions) (int, bool) {
	if o.TargetVideoBitrate != nil {
		return *o.TargetVideoBitrate, true
	}
	if o.VideoQuality != nil {
		return QualityBitrate(*o.VideoQuality), true
	}
	return 0, false
}

// QualityBitrate maps a quality preset to bits per second.
func QualityBitrate(q edit.VideoQuality) int {
	switch q {
	case edit.QualityHigh:
		return BitrateHigh
	case edit.QualityMedium:
		return BitrateMedium
	default:
		return BitrateLow
	}
}

func engineBitrateMode(m edit.BitrateMode) engine.BitrateMode {
	switch m {
	case edit.BitrateModeCBR:
		return engine.BitrateModeCBR
	case edit.BitrateModeCQ:
		return engine.BitrateModeCQ
	default:
		return engine.BitrateModeVBR
	}
}
