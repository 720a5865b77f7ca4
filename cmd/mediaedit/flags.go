package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"media-editor/internal/edit"
)

// runOptions holds the parsed flags of the run command.
type runOptions struct {
	input    string
	output   string
	crop     string
	square   bool
	width    int
	height   int
	aspect   float64
	layout   string
	rotate   float64
	vcodec   string
	acodec   string
	bitrate  int
	mode     string
	quality  string
	keyframe float64
	noAudio  bool
	noVideo  bool
	flatten  bool
	logLevel string
	ffmpeg   string
	ffprobe  string

	// set records which flags were given explicitly.
	set map[string]bool
}

func newRunFlagSet(opts *runOptions, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.input, "in", "", "input video `path` (required)")
	fs.StringVar(&opts.output, "out", "", "output `path` (required)")
	fs.StringVar(&opts.crop, "crop", "", "crop rectangle as `left,top,right,bottom` in [0,1]")
	fs.BoolVar(&opts.square, "square", false, "centre crop to a square frame")
	fs.IntVar(&opts.width, "width", 0, "output width in pixels (requires -height)")
	fs.IntVar(&opts.height, "height", 0, "output height in pixels, e.g. 720")
	fs.Float64Var(&opts.aspect, "aspect", 0, "output aspect `ratio` (width/height)")
	fs.StringVar(&opts.layout, "layout", "", "resize layout: scale-to-fit, scale-to-fit-with-crop or stretch-to-fit")
	fs.Float64Var(&opts.rotate, "rotate", 0, "clockwise rotation in `degrees`")
	fs.StringVar(&opts.vcodec, "vcodec", "", "video codec MIME type, e.g. video/hevc")
	fs.StringVar(&opts.acodec, "acodec", "", "audio codec MIME type, e.g. audio/mp4a-latm")
	fs.IntVar(&opts.bitrate, "bitrate", 0, "target video bitrate in `bps`")
	fs.StringVar(&opts.mode, "mode", "", "video bitrate mode: VBR, CBR or CQ")
	fs.StringVar(&opts.quality, "quality", "", "video quality preset: HIGH, MEDIUM or LOW")
	fs.Float64Var(&opts.keyframe, "keyframe", 0, "keyframe interval in `seconds`")
	fs.BoolVar(&opts.noAudio, "no-audio", false, "remove the audio track")
	fs.BoolVar(&opts.noVideo, "no-video", false, "remove the video track")
	fs.BoolVar(&opts.flatten, "flatten", false, "flatten slow-motion segments")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	fs.StringVar(&opts.ffprobe, "ffprobe", "ffprobe", "ffprobe binary")

	return fs
}

// parseRunFlags parses args for the run command.
func parseRunFlags(args []string, output io.Writer) (*runOptions, error) {
	opts := &runOptions{set: make(map[string]bool)}
	fs := newRunFlagSet(opts, output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// request builds the edit request described by the flags.
func (o *runOptions) request() (edit.Request, error) {
	req := edit.Request{
		InputPath:         o.input,
		OutputPath:        o.output,
		RemoveAudio:       o.noAudio,
		RemoveVideo:       o.noVideo,
		FlattenSlowMotion: o.flatten,
	}

	if o.crop != "" {
		rect, err := parseRect(o.crop)
		if err != nil {
			return edit.Request{}, &edit.ValidationError{Field: "crop", Reason: err.Error()}
		}
		crop, err := edit.NewCropOptions(rect)
		if err != nil {
			return edit.Request{}, err
		}
		req.Crop = crop
	}

	resize, err := o.resize()
	if err != nil {
		return edit.Request{}, err
	}
	req.Resize = resize

	if o.set["rotate"] {
		req.RotationDegrees = edit.Ptr(o.rotate)
	}

	transcode, err := o.transcode()
	if err != nil {
		return edit.Request{}, err
	}
	req.Transcode = transcode

	return req, req.Validate()
}

func (o *runOptions) resize() (edit.ResizeOptions, error) {
	layout, err := edit.ParseLayoutMode(o.layout)
	if err != nil {
		return nil, err
	}

	sizing := o.set["width"] || o.set["height"] || o.set["aspect"]
	switch {
	case o.square:
		if sizing {
			return nil, &edit.ValidationError{Field: "resize", Reason: "-square cannot be combined with -width, -height or -aspect"}
		}
		return edit.NewAspectRatioResize(1, edit.LayoutScaleToFitWithCrop)
	case o.set["aspect"]:
		if o.set["width"] || o.set["height"] {
			return nil, &edit.ValidationError{Field: "resize", Reason: "-aspect cannot be combined with -width or -height"}
		}
		return edit.NewAspectRatioResize(o.aspect, layout)
	case o.set["width"]:
		if !o.set["height"] {
			return nil, &edit.ValidationError{Field: "resize.height", Reason: "-height is required with -width"}
		}
		return edit.NewFixedResize(o.width, o.height, layout)
	case o.set["height"]:
		return edit.NewHeightResize(o.height)
	case o.set["layout"]:
		return nil, &edit.ValidationError{Field: "resize.layout", Reason: "-layout needs a resize"}
	default:
		return nil, nil
	}
}

func (o *runOptions) transcode() (edit.TranscodeOptions, error) {
	t := edit.TranscodeOptions{
		VideoCodec: o.vcodec,
		AudioCodec: o.acodec,
	}
	if o.set["bitrate"] {
		t.TargetVideoBitrate = edit.Ptr(o.bitrate)
	}
	if o.set["keyframe"] {
		t.KeyframeIntervalSeconds = edit.Ptr(o.keyframe)
	}
	if o.mode != "" {
		mode, err := edit.ParseBitrateMode(o.mode)
		if err != nil {
			return edit.TranscodeOptions{}, err
		}
		t.VideoBitrateMode = &mode
	}
	if o.quality != "" {
		quality, err := edit.ParseVideoQuality(o.quality)
		if err != nil {
			return edit.TranscodeOptions{}, err
		}
		t.VideoQuality = &quality
	}
	return t, nil
}

// parseRect parses "left,top,right,bottom".
func parseRect(s string) (edit.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return edit.Rect{}, errors.New("expected four comma-separated values")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return edit.Rect{}, fmt.Errorf("bad value %q", p)
		}
		v[i] = f
	}
	return edit.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
}
