package transcoder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"media-editor/internal/engine"
	"media-editor/internal/logging"
	"media-editor/internal/mediatypes"
)

var videoEncoders = map[string]string{
	engine.MimeVideoH264: "libx264",
	engine.MimeVideoH265: "libx265",
	engine.MimeVideoVP9:  "libvpx-vp9",
	engine.MimeVideoAV1:  "libaom-av1",
}

var audioEncoders = map[string]string{
	engine.MimeAudioAAC:  "aac",
	engine.MimeAudioOpus: "libopus",
}

const (
	// cqCRF is the constant quality level used for BitrateModeCQ.
	cqCRF = 23

	// defaultCBRBitrate applies when CBR is requested without a bitrate.
	defaultCBRBitrate = 6_000_000
)

// outputPlan is the configuration the engine will actually run with.
type outputPlan struct {
	videoMime    string
	audioMime    string
	videoEncoder string
	audioEncoder string
}

// defaultMimes picks codecs that fit the output container.
func defaultMimes(outputPath string) (video, audio string) {
	if mediatypes.ForPath(outputPath).WebM {
		return engine.MimeVideoVP9, engine.MimeAudioOpus
	}
	return engine.MimeVideoH264, engine.MimeAudioAAC
}

// planOutput resolves codec identifiers to encoders. It reports whether any
// part of the request had to be substituted.
func planOutput(media engine.EditedMedia, cfg engine.Config, outputPath string) (outputPlan, bool) {
	defVideo, defAudio := defaultMimes(outputPath)
	plan := outputPlan{videoMime: cfg.VideoMimeType, audioMime: cfg.AudioMimeType}
	fellBack := false

	if plan.videoMime == "" {
		plan.videoMime = defVideo
	}
	if enc, ok := videoEncoders[plan.videoMime]; ok {
		plan.videoEncoder = enc
	} else {
		plan.videoMime = defVideo
		plan.videoEncoder = videoEncoders[defVideo]
		fellBack = !media.RemoveVideo
	}

	if plan.audioMime == "" {
		plan.audioMime = defAudio
	}
	if enc, ok := audioEncoders[plan.audioMime]; ok {
		plan.audioEncoder = enc
	} else {
		plan.audioMime = defAudio
		plan.audioEncoder = audioEncoders[defAudio]
		fellBack = fellBack || !media.RemoveAudio
	}

	// Slow-motion metadata is not understood by ffmpeg, so the flag is
	// always dropped.
	if media.FlattenForSlowMotion {
		fellBack = true
	}

	// ffmpeg has no operating rate or priority knob for its encoders.
	if cfg.Encoder != nil && cfg.Encoder.Performance != nil && !media.RemoveVideo {
		fellBack = true
	}

	return plan, fellBack
}

func requested(media engine.EditedMedia, cfg engine.Config) engine.TransformationRequest {
	req := engine.TransformationRequest{
		VideoMimeType:        cfg.VideoMimeType,
		AudioMimeType:        cfg.AudioMimeType,
		FlattenForSlowMotion: media.FlattenForSlowMotion,
	}
	if cfg.Encoder != nil {
		req.VideoBitrate = cfg.Encoder.Bitrate
		if perf := cfg.Encoder.Performance; perf != nil {
			req.OperatingRate = perf.OperatingRate
			req.Priority = perf.Priority
		}
	}
	return req
}

func substituted(plan outputPlan, cfg engine.Config) engine.TransformationRequest {
	req := engine.TransformationRequest{
		VideoMimeType: plan.videoMime,
		AudioMimeType: plan.audioMime,
	}
	if cfg.Encoder != nil {
		req.VideoBitrate = cfg.Encoder.Bitrate
	}
	return req
}

// buildArgs returns the ffmpeg arguments for one export. Progress is written
// to stdout in key=value form.
func buildArgs(media engine.EditedMedia, cfg engine.Config, plan outputPlan, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", media.InputPath,
	}

	if media.RemoveVideo {
		args = append(args, "-vn")
	} else {
		if graph := filterGraph(media.Effects); graph != "" {
			args = append(args, "-vf", graph)
		}
		args = append(args, "-c:v", plan.videoEncoder)
		args = append(args, encoderArgs(cfg.Encoder)...)
		args = append(args, "-pix_fmt", "yuv420p")
	}

	if media.RemoveAudio {
		args = append(args, "-an")
	} else {
		args = append(args, "-c:a", plan.audioEncoder)
	}

	if mediatypes.ForPath(outputPath).FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args,
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	)
	return args
}

// encoderArgs maps encoder settings to rate control and keyframe flags.
func encoderArgs(s *engine.EncoderSettings) []string {
	if s == nil {
		return nil
	}

	var args []string
	mode := engine.BitrateModeVBR
	if s.BitrateMode != nil {
		mode = *s.BitrateMode
	}

	switch mode {
	case engine.BitrateModeCBR:
		rate := s.Bitrate
		if rate <= 0 {
			rate = defaultCBRBitrate
		}
		r := strconv.Itoa(rate)
		args = append(args, "-b:v", r, "-minrate", r, "-maxrate", r, "-bufsize", strconv.Itoa(rate*2))
	case engine.BitrateModeCQ:
		args = append(args, "-crf", strconv.Itoa(cqCRF))
		if s.Bitrate > 0 {
			args = append(args, "-maxrate", strconv.Itoa(s.Bitrate), "-bufsize", strconv.Itoa(s.Bitrate*2))
		}
	default:
		if s.Bitrate > 0 {
			args = append(args, "-b:v", strconv.Itoa(s.Bitrate))
		}
	}

	if s.KeyframeIntervalSeconds != nil && *s.KeyframeIntervalSeconds > 0 {
		args = append(args, "-force_key_frames", "expr:gte(t,n_forced*"+formatFloat(*s.KeyframeIntervalSeconds)+")")
	}

	return args
}

// filterGraph joins the filters for each effect, in order.
func filterGraph(effects []engine.Effect) string {
	var filters []string
	for _, e := range effects {
		switch v := e.(type) {
		case engine.Crop:
			filters = append(filters, cropFilter(v))
		case engine.Presentation:
			filters = append(filters, presentationFilters(v)...)
		case engine.ScaleAndRotate:
			filters = append(filters, rotateFilters(v.RotationDegrees)...)
		default:
			logging.Warn("Skipping unsupported effect %q", e.Name())
		}
	}
	return strings.Join(filters, ",")
}

// cropFilter converts normalized device coordinates back to fractions of the
// input frame. Output dimensions are kept even for yuv420p.
func cropFilter(c engine.Crop) string {
	left := (c.Left + 1) / 2
	right := (c.Right + 1) / 2
	top := (1 - c.Top) / 2
	bottom := (1 - c.Bottom) / 2

	return fmt.Sprintf("crop=w=trunc(iw*%s/2)*2:h=trunc(ih*%s/2)*2:x=iw*%s:y=ih*%s",
		formatFloat(right-left), formatFloat(bottom-top), formatFloat(left), formatFloat(top))
}

func presentationFilters(p engine.Presentation) []string {
	switch {
	case p.Width > 0 && p.Height > 0:
		w, h := p.Width, p.Height
		switch p.Layout {
		case engine.LayoutScaleToFitWithCrop:
			return []string{
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", w, h),
				fmt.Sprintf("crop=%d:%d", w, h),
			}
		case engine.LayoutStretchToFit:
			return []string{fmt.Sprintf("scale=%d:%d", w, h), "setsar=1"}
		default:
			return []string{
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
				fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", w, h),
			}
		}

	case p.Height > 0:
		return []string{fmt.Sprintf("scale=-2:%d", p.Height)}

	case p.AspectRatio > 0:
		r := formatFloat(p.AspectRatio)
		switch p.Layout {
		case engine.LayoutScaleToFitWithCrop:
			return []string{fmt.Sprintf("crop=w='trunc(min(iw,ih*%s)/2)*2':h='trunc(min(ih,iw/%s)/2)*2'", r, r)}
		case engine.LayoutStretchToFit:
			return []string{fmt.Sprintf("scale=w='trunc(ih*%s/2)*2':h=ih", r), "setsar=1"}
		default:
			return []string{fmt.Sprintf("pad=w='trunc(max(iw,ih*%s)/2)*2':h='trunc(max(ih,iw/%s)/2)*2':x=(ow-iw)/2:y=(oh-ih)/2", r, r)}
		}
	}
	return nil
}

// rotateFilters rotates counter-clockwise. Quarter turns use lossless
// transposes; other angles grow the canvas to fit the rotated frame.
func rotateFilters(degrees float64) []string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}

	switch d {
	case 0:
		return nil
	case 90:
		return []string{"transpose=cclock"}
	case 180:
		return []string{"hflip", "vflip"}
	case 270:
		return []string{"transpose=clock"}
	}

	// ffmpeg rotates clockwise for positive angles.
	a := formatFloat(-d * math.Pi / 180)
	return []string{fmt.Sprintf("rotate=%s:ow='trunc(rotw(%s)/2)*2':oh='trunc(roth(%s)/2)*2':c=black", a, a, a)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
