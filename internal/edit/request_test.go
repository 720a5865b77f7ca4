package edit

import (
	"errors"
	"math"
	"testing"
)

func TestNewCropOptions(t *testing.T) {
	tests := []struct {
		name    string
		rect    Rect
		wantErr bool
	}{
		{"Full frame", Rect{0, 0, 1, 1}, false},
		{"Centre half", Rect{0.25, 0, 0.75, 1}, false},
		{"Inverted horizontal", Rect{0.6, 0, 0.4, 1}, true},
		{"Inverted vertical", Rect{0, 0.8, 1, 0.2}, true},
		{"Zero width", Rect{0.5, 0, 0.5, 1}, true},
		{"Zero height", Rect{0, 0.5, 1, 0.5}, true},
		{"Negative left", Rect{-0.1, 0, 0.5, 1}, true},
		{"Right beyond frame", Rect{0, 0, 1.1, 1}, true},
		{"Bottom beyond frame", Rect{0, 0, 1, 1.5}, true},
		{"NaN bound", Rect{math.NaN(), 0, 1, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crop, err := NewCropOptions(tt.rect)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected validation error for %+v", tt.rect)
				}
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
				if crop != nil {
					t.Error("expected nil crop on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if crop.Rect() != tt.rect {
				t.Errorf("Rect() = %+v, want %+v", crop.Rect(), tt.rect)
			}
		})
	}
}

func TestNewFixedResize(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		layout  LayoutMode
		wantErr bool
	}{
		{"Valid 720p", 1280, 720, LayoutScaleToFit, false},
		{"Valid with crop layout", 720, 720, LayoutScaleToFitWithCrop, false},
		{"Zero width", 0, 720, LayoutScaleToFit, true},
		{"Negative height", 1280, -1, LayoutScaleToFit, true},
		{"Unknown layout", 1280, 720, LayoutMode(42), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFixedResize(tt.width, tt.height, tt.layout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFixedResize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (r.Width() != tt.width || r.Height() != tt.height || r.Layout() != tt.layout) {
				t.Errorf("unexpected resize %s", r)
			}
		})
	}
}

func TestNewHeightResize(t *testing.T) {
	if _, err := NewHeightResize(0); err == nil {
		t.Error("expected error for zero height")
	}
	r, err := NewHeightResize(480)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Height() != 480 {
		t.Errorf("Height() = %d, want 480", r.Height())
	}
}

func TestNewAspectRatioResize(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		layout  LayoutMode
		wantErr bool
	}{
		{"Square", 1, LayoutScaleToFitWithCrop, false},
		{"Widescreen", 16.0 / 9.0, LayoutStretchToFit, false},
		{"Zero", 0, LayoutScaleToFit, true},
		{"Negative", -1.5, LayoutScaleToFit, true},
		{"Infinite", math.Inf(1), LayoutScaleToFit, true},
		{"Bad layout", 1, LayoutMode(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAspectRatioResize(tt.ratio, tt.layout)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAspectRatioResize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLayoutMode(t *testing.T) {
	tests := []struct {
		input   string
		want    LayoutMode
		wantErr bool
	}{
		{"", LayoutScaleToFit, false},
		{"scale-to-fit", LayoutScaleToFit, false},
		{"Scale-To-Fit-With-Crop", LayoutScaleToFitWithCrop, false},
		{"stretch-to-fit", LayoutStretchToFit, false},
		{"zoom", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLayoutMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLayoutMode(%q) error = %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLayoutMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	base := Request{InputPath: "/in.mp4", OutputPath: "/out.mp4"}

	t.Run("Minimal request is valid", func(t *testing.T) {
		if err := base.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Missing input", func(t *testing.T) {
		r := base
		r.InputPath = " "
		if err := r.Validate(); err == nil {
			t.Error("expected error for missing input")
		}
	})

	t.Run("Missing output", func(t *testing.T) {
		r := base
		r.OutputPath = ""
		if err := r.Validate(); err == nil {
			t.Error("expected error for missing output")
		}
	})

	t.Run("Zero value resize is rejected", func(t *testing.T) {
		r := base
		r.Resize = FixedResize{}
		if err := r.Validate(); err == nil {
			t.Error("expected error for zero value FixedResize")
		}
	})

	t.Run("Non-finite rotation", func(t *testing.T) {
		r := base
		r.RotationDegrees = Ptr(math.NaN())
		if err := r.Validate(); err == nil {
			t.Error("expected error for NaN rotation")
		}
	})

	t.Run("Non-positive bitrate", func(t *testing.T) {
		r := base
		r.Transcode.TargetVideoBitrate = Ptr(0)
		if err := r.Validate(); err == nil {
			t.Error("expected error for zero bitrate")
		}
	})

	t.Run("Removing both tracks is left to the engine", func(t *testing.T) {
		r := base
		r.RemoveAudio = true
		r.RemoveVideo = true
		if err := r.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestProgressStateText(t *testing.T) {
	for state, name := range progressStateNames {
		text, err := state.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", state, err)
		}
		if string(text) != name {
			t.Errorf("MarshalText(%v) = %s, want %s", state, text, name)
		}

		var decoded ProgressState
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error: %v", text, err)
		}
		if decoded != state {
			t.Errorf("UnmarshalText(%s) = %v, want %v", text, decoded, state)
		}
	}

	var s ProgressState
	if err := s.UnmarshalText([]byte("DONE")); err == nil {
		t.Error("expected error for unknown state name")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("codec init failed")
	err := &Error{Kind: KindStart, Message: "Unable to start transformation", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "Unable to start transformation: codec init failed" {
		t.Errorf("unexpected message %q", err.Error())
	}

	warn := &PublishWarning{Path: "/work/out.mp4", Cause: cause}
	if !errors.Is(warn, cause) {
		t.Error("expected errors.Is to find the publish cause")
	}
}
