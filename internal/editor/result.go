package editor

import (
	"strings"

	"media-editor/internal/edit"
	"media-editor/internal/engine"
)

func toResult(outputPath string, r engine.ExportResult) *edit.Result {
	frames := r.VideoFrameCount
	if frames < 0 {
		frames = 0
	}
	return &edit.Result{
		OutputPath:          outputPath,
		DurationMs:          max(r.DurationMs, 0),
		FileSizeBytes:       max(r.FileSizeBytes, 0),
		AverageVideoBitrate: optionalInt(r.AverageVideoBitrate),
		AverageAudioBitrate: optionalInt(r.AverageAudioBitrate),
		VideoCodec:          optionalString(r.VideoMimeType),
		AudioCodec:          optionalString(r.AudioMimeType),
		VideoFrameCount:     frames,
		Width:               optionalInt(r.Width),
		Height:              optionalInt(r.Height),
		ChannelCount:        optionalInt(r.ChannelCount),
		SampleRate:          optionalInt(r.SampleRate),
	}
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toOutputConfig(r engine.TransformationRequest) edit.OutputConfig {
	return edit.OutputConfig{
		VideoCodec:        r.VideoMimeType,
		AudioCodec:        r.AudioMimeType,
		VideoBitrate:      r.VideoBitrate,
		FlattenSlowMotion: r.FlattenForSlowMotion,
		OperatingRate:     r.OperatingRate,
		Priority:          r.Priority,
	}
}

func toFallbackEvent(original, fallback engine.TransformationRequest) edit.FallbackEvent {
	return edit.FallbackEvent{
		Original:    toOutputConfig(original),
		Substituted: toOutputConfig(fallback),
		Reason:      describeFallback(original, fallback),
	}
}

// describeFallback lists the settings the engine changed.
func describeFallback(original, fallback engine.TransformationRequest) string {
	var changes []string
	if original.VideoMimeType != fallback.VideoMimeType {
		changes = append(changes, "video codec "+orNone(original.VideoMimeType)+" -> "+orNone(fallback.VideoMimeType))
	}
	if original.AudioMimeType != fallback.AudioMimeType {
		changes = append(changes, "audio codec "+orNone(original.AudioMimeType)+" -> "+orNone(fallback.AudioMimeType))
	}
	if original.VideoBitrate != fallback.VideoBitrate {
		changes = append(changes, "video bitrate changed")
	}
	if original.FlattenForSlowMotion && !fallback.FlattenForSlowMotion {
		changes = append(changes, "slow motion flattening disabled")
	}
	hinted := original.OperatingRate != 0 || original.Priority != 0
	if hinted && fallback.OperatingRate == 0 && fallback.Priority == 0 {
		changes = append(changes, "performance hint ignored")
	}
	if len(changes) == 0 {
		return "engine settings adjusted"
	}
	return strings.Join(changes, "; ")
}

func orNone(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
