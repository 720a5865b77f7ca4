package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"media-editor/internal/edit"
)

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, want := range []string{"run", "hash-token"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := map[string]string{
		"run":          "run",
		"hash-token":   "hash-token",
		"rm -rf /":     "rm_-rf__",
		"x\n\x1b[31m":  "x___31m",
		"unicode-é_ok": "unicode-__ok",
	}
	for in, want := range tests {
		if got := sanitizeCommand(in); got != want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRunFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, req edit.Request)
		wantErr string
	}{
		{
			name: "minimal",
			args: []string{"-in", "in.mp4", "-out", "out.mp4"},
			check: func(t *testing.T, req edit.Request) {
				if req.Crop != nil || req.Resize != nil || req.RotationDegrees != nil {
					t.Errorf("unexpected options: %+v", req)
				}
				if req.Transcode.TargetVideoBitrate != nil || req.Transcode.KeyframeIntervalSeconds != nil {
					t.Errorf("unexpected transcode options: %+v", req.Transcode)
				}
			},
		},
		{
			name: "crop and rotation",
			args: []string{"-in", "a", "-out", "b", "-crop", "0.1, 0.2, 0.9, 0.8", "-rotate", "0"},
			check: func(t *testing.T, req edit.Request) {
				want := edit.Rect{Left: 0.1, Top: 0.2, Right: 0.9, Bottom: 0.8}
				if req.Crop == nil || req.Crop.Rect() != want {
					t.Errorf("Crop = %+v, want %+v", req.Crop, want)
				}
				if req.RotationDegrees == nil || *req.RotationDegrees != 0 {
					t.Error("explicit zero rotation should be kept")
				}
			},
		},
		{
			name: "square preset",
			args: []string{"-in", "a", "-out", "b", "-square"},
			check: func(t *testing.T, req edit.Request) {
				r, ok := req.Resize.(edit.AspectRatioResize)
				if !ok || r.Ratio() != 1 || r.Layout() != edit.LayoutScaleToFitWithCrop {
					t.Errorf("Resize = %v", req.Resize)
				}
			},
		},
		{
			name: "height preset",
			args: []string{"-in", "a", "-out", "b", "-height", "720"},
			check: func(t *testing.T, req edit.Request) {
				r, ok := req.Resize.(edit.HeightResize)
				if !ok || r.Height() != 720 {
					t.Errorf("Resize = %v", req.Resize)
				}
			},
		},
		{
			name: "fixed size",
			args: []string{"-in", "a", "-out", "b", "-width", "1280", "-height", "720", "-layout", "stretch-to-fit"},
			check: func(t *testing.T, req edit.Request) {
				r, ok := req.Resize.(edit.FixedResize)
				if !ok || r.Width() != 1280 || r.Height() != 720 || r.Layout() != edit.LayoutStretchToFit {
					t.Errorf("Resize = %v", req.Resize)
				}
			},
		},
		{
			name: "transcode knobs",
			args: []string{"-in", "a", "-out", "b", "-vcodec", "video/hevc", "-bitrate", "4000000", "-mode", "cq", "-quality", "low", "-keyframe", "1"},
			check: func(t *testing.T, req edit.Request) {
				tr := req.Transcode
				if tr.VideoCodec != "video/hevc" || tr.TargetVideoBitrate == nil || *tr.TargetVideoBitrate != 4_000_000 {
					t.Errorf("Transcode = %+v", tr)
				}
				if tr.VideoBitrateMode == nil || *tr.VideoBitrateMode != edit.BitrateModeCQ {
					t.Errorf("VideoBitrateMode = %v", tr.VideoBitrateMode)
				}
				if tr.VideoQuality == nil || *tr.VideoQuality != edit.QualityLow {
					t.Errorf("VideoQuality = %v", tr.VideoQuality)
				}
				if tr.KeyframeIntervalSeconds == nil || *tr.KeyframeIntervalSeconds != 1 {
					t.Errorf("KeyframeIntervalSeconds = %v", tr.KeyframeIntervalSeconds)
				}
			},
		},
		{
			name: "track flags",
			args: []string{"-in", "a", "-out", "b", "-no-audio", "-flatten"},
			check: func(t *testing.T, req edit.Request) {
				if !req.RemoveAudio || req.RemoveVideo || !req.FlattenSlowMotion {
					t.Errorf("flags = %+v", req)
				}
			},
		},
		{name: "missing input", args: []string{"-out", "b"}, wantErr: "input"},
		{name: "width without height", args: []string{"-in", "a", "-out", "b", "-width", "640"}, wantErr: "resize.height"},
		{name: "square with height", args: []string{"-in", "a", "-out", "b", "-square", "-height", "720"}, wantErr: "resize"},
		{name: "aspect with width", args: []string{"-in", "a", "-out", "b", "-aspect", "1.5", "-width", "640", "-height", "480"}, wantErr: "resize"},
		{name: "layout alone", args: []string{"-in", "a", "-out", "b", "-layout", "stretch-to-fit"}, wantErr: "resize.layout"},
		{name: "bad crop", args: []string{"-in", "a", "-out", "b", "-crop", "0,0,1"}, wantErr: "crop"},
		{name: "bad mode", args: []string{"-in", "a", "-out", "b", "-mode", "ABR"}, wantErr: "transcode.videoBitrateMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseRunFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseRunFlags() error = %v", err)
			}
			req, err := opts.request()

			if tt.wantErr != "" {
				var verr *edit.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error = %v, want a validation error", err)
				}
				if verr.Field != tt.wantErr {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("request() error = %v", err)
			}
			tt.check(t, req)
		})
	}
}

func TestParseRunFlags_Errors(t *testing.T) {
	if _, err := parseRunFlags([]string{"-bogus"}, io.Discard); err == nil {
		t.Error("expected an error for an unknown flag")
	}
	if _, err := parseRunFlags([]string{"-in", "a", "extra"}, io.Discard); err == nil {
		t.Error("expected an error for positional arguments")
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name string
		p    edit.Progress
		want string
	}{
		{"no percentage", edit.NotStarted(), edit.NotStarted().State.String()},
		{"half", edit.Progress{State: edit.ProgressAvailable, Percent: edit.Ptr(50)}, "[#####.....]  50%"},
		{"done", edit.Progress{State: edit.ProgressAvailable, Percent: edit.Ptr(100)}, "[##########] 100%"},
		{"clamped", edit.Progress{State: edit.ProgressAvailable, Percent: edit.Ptr(140)}, "[##########] 100%"},
	}
	for _, tt := range tests {
		if got := renderProgress(tt.p, 10); got != tt.want {
			t.Errorf("%s: renderProgress() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestProgressBar_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	bar := &progressBar{w: &buf, width: 10}

	for _, pct := range []int{0, 5, 5, 10, 15, 20} {
		bar.update(edit.Progress{State: edit.ProgressAvailable, Percent: edit.Ptr(pct)})
	}
	bar.clear()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("printed %d lines, want 3 (0%%, 10%%, 20%%): %q", len(lines), buf.String())
	}
}

func TestBarWidth(t *testing.T) {
	tests := map[int]int{0: 10, 15: 10, 40: 32, 200: 60}
	for cols, want := range tests {
		if got := barWidth(cols); got != want {
			t.Errorf("barWidth(%d) = %d, want %d", cols, got, want)
		}
	}
}

func TestHashToken(t *testing.T) {
	if _, err := hashToken([]byte("short")); err == nil {
		t.Error("expected an error for a short token")
	}

	token := []byte("a-long-enough-api-token")
	hash, err := hashToken(token)
	if err != nil {
		t.Fatalf("hashToken() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q is not a bcrypt hash", hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), token); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}
