package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"media-editor/internal/engine"
)

var mimeByCodecName = map[string]string{
	"h264": engine.MimeVideoH264,
	"hevc": engine.MimeVideoH265,
	"vp9":  engine.MimeVideoVP9,
	"av1":  engine.MimeVideoAV1,
	"aac":  engine.MimeAudioAAC,
	"opus": engine.MimeAudioOpus,
}

// probeOutput mirrors the parts of `ffprobe -print_format json` we read.
// ffprobe reports most numbers as strings.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BitRate    string `json:"bit_rate"`
	NbFrames   string `json:"nb_frames"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
}

func runProbe(ctx context.Context, ffprobePath, path string) (*probeOutput, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	return parseProbe(stdout.Bytes())
}

func parseProbe(data []byte) (*probeOutput, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &out, nil
}

// durationUs returns the container duration in microseconds, or 0 if unknown.
func (p *probeOutput) durationUs() int64 {
	secs, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return 0
	}
	return int64(math.Round(secs * 1e6))
}

// exportResult converts a probe of the finished file. Values ffprobe did not
// report are set to engine.NoValue.
func (p *probeOutput) exportResult() engine.ExportResult {
	r := engine.ExportResult{
		DurationMs:          engine.NoValue,
		FileSizeBytes:       engine.NoValue,
		AverageVideoBitrate: engine.NoValue,
		AverageAudioBitrate: engine.NoValue,
		VideoFrameCount:     engine.NoValue,
		Width:               engine.NoValue,
		Height:              engine.NoValue,
		ChannelCount:        engine.NoValue,
		SampleRate:          engine.NoValue,
	}

	if us := p.durationUs(); us > 0 {
		r.DurationMs = us / 1000
	}
	if size, err := strconv.ParseInt(p.Format.Size, 10, 64); err == nil {
		r.FileSizeBytes = size
	}

	videoSeen, audioSeen := false, false
	for _, s := range p.Streams {
		switch {
		case s.CodecType == "video" && !videoSeen:
			videoSeen = true
			r.VideoMimeType = mimeByCodecName[s.CodecName]
			r.AverageVideoBitrate = atoiOr(s.BitRate, engine.NoValue)
			r.VideoFrameCount = atoiOr(s.NbFrames, engine.NoValue)
			if s.Width > 0 && s.Height > 0 {
				r.Width, r.Height = s.Width, s.Height
			}
		case s.CodecType == "audio" && !audioSeen:
			audioSeen = true
			r.AudioMimeType = mimeByCodecName[s.CodecName]
			r.AverageAudioBitrate = atoiOr(s.BitRate, engine.NoValue)
			r.SampleRate = atoiOr(s.SampleRate, engine.NoValue)
			if s.Channels > 0 {
				r.ChannelCount = s.Channels
			}
		}
	}

	return r
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
