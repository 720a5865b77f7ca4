// Package engine describes the transformation engine consumed by the editor:
// the capability to start, poll and cancel one export, the callbacks it
// reports through, and the vocabulary of effects and encoder settings it
// understands.
//
// The editor never depends on a concrete engine. Implementations, such as the
// FFmpeg-backed one in the transcoder package, satisfy [Factory].
package engine

import (
	"errors"
)

// ErrAlreadyStarted is returned by Start when the engine was already started.
var ErrAlreadyStarted = errors.New("engine already started")

// ProgressState is the raw progress state reported by an engine.
type ProgressState int

const (
	ProgressStateNotStarted ProgressState = iota
	ProgressStateWaitingForAvailability
	ProgressStateAvailable
	ProgressStateUnavailable
)

// NoValue marks an ExportResult field the engine could not determine.
const NoValue = -1

// Codec identifiers, expressed as MIME types.
const (
	MimeVideoH264 = "video/avc"
	MimeVideoH265 = "video/hevc"
	MimeVideoVP9  = "video/x-vnd.on2.vp9"
	MimeVideoAV1  = "video/av01"
	MimeAudioAAC  = "audio/mp4a-latm"
	MimeAudioOpus = "audio/opus"
)

// EditedMedia is one input together with the edits to apply to it.
type EditedMedia struct {
	InputPath            string
	Effects              []Effect
	RemoveAudio          bool
	RemoveVideo          bool
	FlattenForSlowMotion bool
}

// Config selects output codecs and, optionally, encoder settings. A nil
// Encoder means the engine uses its defaults.
type Config struct {
	VideoMimeType string
	AudioMimeType string
	Encoder       *EncoderSettings
}

// TransformationRequest is the output configuration an engine was asked for
// or substituted. It is reported through OnFallbackApplied.
type TransformationRequest struct {
	VideoMimeType        string
	AudioMimeType        string
	VideoBitrate         int
	FlattenForSlowMotion bool

	// OperatingRate and Priority echo the encoder performance hint. Zero
	// means no hint.
	OperatingRate int
	Priority      int
}

// ExportResult is what the engine reports about a finished export. Integer
// fields set to NoValue and empty strings are unknown.
type ExportResult struct {
	DurationMs          int64
	FileSizeBytes       int64
	AverageVideoBitrate int
	AverageAudioBitrate int
	VideoMimeType       string
	AudioMimeType       string
	VideoFrameCount     int
	Width               int
	Height              int
	ChannelCount        int
	SampleRate          int
}

// Listener receives the terminal and fallback notifications of one export.
// Implementations must not assume which goroutine calls them.
type Listener interface {
	OnCompleted(result ExportResult)
	OnError(err error)
	OnFallbackApplied(original, fallback TransformationRequest)
}

// Engine runs a single export. Start is called at most once. Cancel stops a
// running export without invoking the listener.
type Engine interface {
	Start(media EditedMedia, outputPath string) error
	Progress() (state ProgressState, percent int)
	Cancel()
}

// Factory builds an engine for one export. Construction errors are reported
// synchronously.
type Factory interface {
	NewEngine(cfg Config, listener Listener) (Engine, error)
}

// Releaser is implemented by engines that hold resources beyond a single
// export. Release is called exactly once, after the export has resolved or
// been cancelled.
type Releaser interface {
	Release()
}
