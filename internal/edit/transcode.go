package edit

import (
	"fmt"
	"math"
	"strings"
)

// VideoQuality is a coarse quality preset used when no explicit bitrate is set.
type VideoQuality int

const (
	QualityHigh VideoQuality = iota
	QualityMedium
	QualityLow
)

func (q VideoQuality) String() string {
	switch q {
	case QualityHigh:
		return "HIGH"
	case QualityMedium:
		return "MEDIUM"
	case QualityLow:
		return "LOW"
	default:
		return fmt.Sprintf("unknown(%d)", int(q))
	}
}

// ParseVideoQuality parses HIGH, MEDIUM or LOW (case insensitive).
func ParseVideoQuality(s string) (VideoQuality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return QualityHigh, nil
	case "MEDIUM":
		return QualityMedium, nil
	case "LOW":
		return QualityLow, nil
	default:
		return 0, &ValidationError{Field: "transcode.videoQuality", Reason: fmt.Sprintf("unknown quality preset %q", s)}
	}
}

// BitrateMode selects the encoder rate control strategy.
type BitrateMode int

const (
	BitrateModeVBR BitrateMode = iota
	BitrateModeCBR
	BitrateModeCQ
)

func (m BitrateMode) String() string {
	switch m {
	case BitrateModeVBR:
		return "VBR"
	case BitrateModeCBR:
		return "CBR"
	case BitrateModeCQ:
		return "CQ"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseBitrateMode parses VBR, CBR or CQ (case insensitive).
func ParseBitrateMode(s string) (BitrateMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VBR":
		return BitrateModeVBR, nil
	case "CBR":
		return BitrateModeCBR, nil
	case "CQ":
		return BitrateModeCQ, nil
	default:
		return 0, &ValidationError{Field: "transcode.videoBitrateMode", Reason: fmt.Sprintf("unknown bitrate mode %q", s)}
	}
}

// TranscodeOptions holds optional encoder knobs. A nil pointer means "not
// set"; when nothing is set the engine's own defaults apply.
//
// OperatingRate and Priority form one performance hint and are only honoured
// when both are present.
type TranscodeOptions struct {
	VideoCodec              string
	AudioCodec              string
	TargetVideoBitrate      *int
	VideoBitrateMode        *BitrateMode
	VideoQuality            *VideoQuality
	KeyframeIntervalSeconds *float64
	OperatingRate           *int
	Priority                *int
}

func (o TranscodeOptions) validate() error {
	if o.TargetVideoBitrate != nil && *o.TargetVideoBitrate <= 0 {
		return &ValidationError{Field: "transcode.targetVideoBitrate", Reason: "bitrate must be positive"}
	}
	if o.KeyframeIntervalSeconds != nil {
		k := *o.KeyframeIntervalSeconds
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return &ValidationError{Field: "transcode.keyframeIntervalSeconds", Reason: "interval must be finite"}
		}
	}
	return nil
}
