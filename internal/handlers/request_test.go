package handlers

import (
	"testing"

	"media-editor/internal/edit"
)

func TestEditRequest_ToRequest(t *testing.T) {
	ptr := func(v int) *int { return &v }

	t.Run("full request", func(t *testing.T) {
		body := EditRequest{
			Input:  "/in.mov",
			Output: "/out.mp4",
			Crop:   &edit.Rect{Left: 0.1, Top: 0.1, Right: 0.9, Bottom: 0.9},
			Resize: &ResizeRequest{Width: ptr(1280), Height: ptr(720), Layout: "stretch-to-fit"},
			Transcode: &TranscodeRequest{
				VideoCodec:       "video/hevc",
				VideoBitrateMode: "cbr",
				VideoQuality:     "high",
			},
			RemoveAudio: true,
		}

		req, err := body.ToRequest()
		if err != nil {
			t.Fatalf("ToRequest() error = %v", err)
		}
		if req.Crop == nil || req.Crop.Rect().Right != 0.9 {
			t.Errorf("Crop = %+v", req.Crop)
		}
		fixed, ok := req.Resize.(edit.FixedResize)
		if !ok || fixed.Width() != 1280 || fixed.Height() != 720 || fixed.Layout() != edit.LayoutStretchToFit {
			t.Errorf("Resize = %v", req.Resize)
		}
		if req.Transcode.VideoBitrateMode == nil || *req.Transcode.VideoBitrateMode != edit.BitrateModeCBR {
			t.Errorf("VideoBitrateMode = %v", req.Transcode.VideoBitrateMode)
		}
		if req.Transcode.VideoQuality == nil || *req.Transcode.VideoQuality != edit.QualityHigh {
			t.Errorf("VideoQuality = %v", req.Transcode.VideoQuality)
		}
		if !req.RemoveAudio || req.RemoveVideo {
			t.Error("track flags not copied")
		}
	})

	t.Run("resize variants", func(t *testing.T) {
		ratio := 1.0
		tests := []struct {
			name   string
			resize ResizeRequest
			want   string
		}{
			{"height only", ResizeRequest{Height: ptr(480)}, "edit.HeightResize"},
			{"aspect ratio", ResizeRequest{AspectRatio: &ratio, Layout: "scale-to-fit-with-crop"}, "edit.AspectRatioResize"},
			{"fixed", ResizeRequest{Width: ptr(640), Height: ptr(480)}, "edit.FixedResize"},
		}
		for _, tt := range tests {
			req, err := EditRequest{Input: "a", Output: "b", Resize: &tt.resize}.ToRequest()
			if err != nil {
				t.Fatalf("%s: error = %v", tt.name, err)
			}
			var got string
			switch req.Resize.(type) {
			case edit.HeightResize:
				got = "edit.HeightResize"
			case edit.AspectRatioResize:
				got = "edit.AspectRatioResize"
			case edit.FixedResize:
				got = "edit.FixedResize"
			}
			if got != tt.want {
				t.Errorf("%s: resize type = %s, want %s", tt.name, got, tt.want)
			}
		}
	})

	t.Run("no options", func(t *testing.T) {
		req, err := EditRequest{Input: "a", Output: "b"}.ToRequest()
		if err != nil {
			t.Fatal(err)
		}
		if req.Crop != nil || req.Resize != nil || req.RotationDegrees != nil {
			t.Errorf("unexpected options in %+v", req)
		}
	})

	t.Run("empty resize", func(t *testing.T) {
		if _, err := (EditRequest{Input: "a", Output: "b", Resize: &ResizeRequest{}}).ToRequest(); err == nil {
			t.Error("expected a validation error")
		}
	})
}
