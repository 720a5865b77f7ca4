package transcoder

import (
	"slices"
	"strings"
	"testing"

	"media-editor/internal/engine"
)

func TestPlanOutput(t *testing.T) {
	tests := []struct {
		name         string
		media        engine.EditedMedia
		cfg          engine.Config
		output       string
		wantVideo    string
		wantAudio    string
		wantFellBack bool
	}{
		{
			name:      "defaults for mp4",
			output:    "out.mp4",
			wantVideo: "libx264",
			wantAudio: "aac",
		},
		{
			name:      "defaults for webm",
			output:    "out.webm",
			wantVideo: "libvpx-vp9",
			wantAudio: "libopus",
		},
		{
			name:      "explicit hevc",
			cfg:       engine.Config{VideoMimeType: engine.MimeVideoH265},
			output:    "out.mp4",
			wantVideo: "libx265",
			wantAudio: "aac",
		},
		{
			name:         "unknown video codec falls back",
			cfg:          engine.Config{VideoMimeType: "video/x-unknown"},
			output:       "out.mp4",
			wantVideo:    "libx264",
			wantAudio:    "aac",
			wantFellBack: true,
		},
		{
			name:      "unknown video codec ignored without video",
			media:     engine.EditedMedia{RemoveVideo: true},
			cfg:       engine.Config{VideoMimeType: "video/x-unknown"},
			output:    "out.m4a",
			wantVideo: "libx264",
			wantAudio: "aac",
		},
		{
			name:         "unknown audio codec falls back",
			cfg:          engine.Config{AudioMimeType: "audio/x-unknown"},
			output:       "out.mp4",
			wantVideo:    "libx264",
			wantAudio:    "aac",
			wantFellBack: true,
		},
		{
			name: "performance hint dropped",
			cfg: engine.Config{Encoder: &engine.EncoderSettings{
				Performance: &engine.PerformanceHint{OperatingRate: 120, Priority: 0},
			}},
			output:       "out.mp4",
			wantVideo:    "libx264",
			wantAudio:    "aac",
			wantFellBack: true,
		},
		{
			name:  "performance hint irrelevant without video",
			media: engine.EditedMedia{RemoveVideo: true},
			cfg: engine.Config{Encoder: &engine.EncoderSettings{
				Performance: &engine.PerformanceHint{OperatingRate: 120},
			}},
			output:    "out.m4a",
			wantVideo: "libx264",
			wantAudio: "aac",
		},
		{
			name:         "slow motion flattening unsupported",
			media:        engine.EditedMedia{FlattenForSlowMotion: true},
			output:       "out.mp4",
			wantVideo:    "libx264",
			wantAudio:    "aac",
			wantFellBack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, fellBack := planOutput(tt.media, tt.cfg, tt.output)
			if plan.videoEncoder != tt.wantVideo {
				t.Errorf("video encoder = %q, want %q", plan.videoEncoder, tt.wantVideo)
			}
			if plan.audioEncoder != tt.wantAudio {
				t.Errorf("audio encoder = %q, want %q", plan.audioEncoder, tt.wantAudio)
			}
			if fellBack != tt.wantFellBack {
				t.Errorf("fellBack = %v, want %v", fellBack, tt.wantFellBack)
			}
		})
	}
}

func TestSubstitutedDropsSlowMotion(t *testing.T) {
	media := engine.EditedMedia{FlattenForSlowMotion: true}
	cfg := engine.Config{VideoMimeType: "video/x-unknown", Encoder: &engine.EncoderSettings{Bitrate: 500_000}}
	plan, _ := planOutput(media, cfg, "out.mp4")

	orig := requested(media, cfg)
	sub := substituted(plan, cfg)

	if !orig.FlattenForSlowMotion || sub.FlattenForSlowMotion {
		t.Errorf("slow motion: original %v substituted %v", orig.FlattenForSlowMotion, sub.FlattenForSlowMotion)
	}
	if orig.VideoMimeType != "video/x-unknown" || sub.VideoMimeType != engine.MimeVideoH264 {
		t.Errorf("video mime: original %q substituted %q", orig.VideoMimeType, sub.VideoMimeType)
	}
	if orig.VideoBitrate != 500_000 || sub.VideoBitrate != 500_000 {
		t.Errorf("bitrate: original %d substituted %d", orig.VideoBitrate, sub.VideoBitrate)
	}
}

func TestSubstitutedDropsPerformanceHint(t *testing.T) {
	cfg := engine.Config{Encoder: &engine.EncoderSettings{
		Bitrate:     2_000_000,
		Performance: &engine.PerformanceHint{OperatingRate: 240, Priority: 1},
	}}
	plan, fellBack := planOutput(engine.EditedMedia{}, cfg, "out.mp4")
	if !fellBack {
		t.Fatal("performance hint should be reported as a fallback")
	}

	orig := requested(engine.EditedMedia{}, cfg)
	sub := substituted(plan, cfg)
	if orig.OperatingRate != 240 || orig.Priority != 1 {
		t.Errorf("original hint = %d/%d, want 240/1", orig.OperatingRate, orig.Priority)
	}
	if sub.OperatingRate != 0 || sub.Priority != 0 {
		t.Errorf("substituted hint = %d/%d, want none", sub.OperatingRate, sub.Priority)
	}
	if sub.VideoBitrate != 2_000_000 {
		t.Errorf("substituted bitrate = %d, want 2000000", sub.VideoBitrate)
	}
}

func TestBuildArgs(t *testing.T) {
	media := engine.EditedMedia{
		InputPath: "/work/in.mov",
		Effects:   []engine.Effect{engine.PresentationForHeight(720)},
	}
	cfg := engine.Config{}
	plan, _ := planOutput(media, cfg, "/work/out.mp4")

	args := buildArgs(media, cfg, plan, "/work/out.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /work/in.mov",
		"-vf scale=-2:720",
		"-c:v libx264",
		"-c:a aac",
		"-movflags +faststart",
		"-progress pipe:1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/work/out.mp4" {
		t.Errorf("last arg = %q, want output path", args[len(args)-1])
	}
}

func TestBuildArgs_RemoveTracks(t *testing.T) {
	tests := []struct {
		name    string
		media   engine.EditedMedia
		want    []string
		notWant []string
	}{
		{
			name:    "remove audio",
			media:   engine.EditedMedia{InputPath: "in.mp4", RemoveAudio: true},
			want:    []string{"-an", "-c:v"},
			notWant: []string{"-c:a", "-vn"},
		},
		{
			name:    "remove video",
			media:   engine.EditedMedia{InputPath: "in.mp4", RemoveVideo: true, Effects: []engine.Effect{engine.ScaleAndRotate{RotationDegrees: 90}}},
			want:    []string{"-vn", "-c:a"},
			notWant: []string{"-c:v", "-an", "-vf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, _ := planOutput(tt.media, engine.Config{}, "out.mp4")
			args := buildArgs(tt.media, engine.Config{}, plan, "out.mp4")
			for _, w := range tt.want {
				if !slices.Contains(args, w) {
					t.Errorf("args missing %q: %v", w, args)
				}
			}
			for _, w := range tt.notWant {
				if slices.Contains(args, w) {
					t.Errorf("args unexpectedly contain %q: %v", w, args)
				}
			}
		})
	}
}

func TestEncoderArgs(t *testing.T) {
	cbr := engine.BitrateModeCBR
	cq := engine.BitrateModeCQ
	vbr := engine.BitrateModeVBR

	tests := []struct {
		name     string
		settings *engine.EncoderSettings
		want     []string
	}{
		{"nil settings", nil, nil},
		{"bitrate only", &engine.EncoderSettings{Bitrate: 500_000}, []string{"-b:v", "500000"}},
		{"explicit vbr", &engine.EncoderSettings{Bitrate: 500_000, BitrateMode: &vbr}, []string{"-b:v", "500000"}},
		{
			"cbr",
			&engine.EncoderSettings{Bitrate: 1_000_000, BitrateMode: &cbr},
			[]string{"-b:v", "1000000", "-minrate", "1000000", "-maxrate", "1000000", "-bufsize", "2000000"},
		},
		{
			"cbr without bitrate",
			&engine.EncoderSettings{BitrateMode: &cbr},
			[]string{"-b:v", "6000000", "-minrate", "6000000", "-maxrate", "6000000", "-bufsize", "12000000"},
		},
		{"cq", &engine.EncoderSettings{BitrateMode: &cq}, []string{"-crf", "23"}},
		{
			"cq capped",
			&engine.EncoderSettings{Bitrate: 3_000_000, BitrateMode: &cq},
			[]string{"-crf", "23", "-maxrate", "3000000", "-bufsize", "6000000"},
		},
		{
			"keyframes",
			&engine.EncoderSettings{KeyframeIntervalSeconds: ptr(1.5)},
			[]string{"-force_key_frames", "expr:gte(t,n_forced*1.5)"},
		},
		{
			"performance hint ignored",
			&engine.EncoderSettings{Performance: &engine.PerformanceHint{OperatingRate: 60, Priority: 0}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encoderArgs(tt.settings)
			if !slices.Equal(got, tt.want) {
				t.Errorf("encoderArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterGraph(t *testing.T) {
	tests := []struct {
		name    string
		effects []engine.Effect
		want    string
	}{
		{"no effects", nil, ""},
		{
			"centre crop",
			[]engine.Effect{engine.Crop{Left: -0.5, Right: 0.5, Top: 1, Bottom: -1}},
			"crop=w=trunc(iw*0.5/2)*2:h=trunc(ih*1/2)*2:x=iw*0.25:y=ih*0",
		},
		{
			"fit box",
			[]engine.Effect{engine.PresentationForWidthAndHeight(1280, 720, engine.LayoutScaleToFit)},
			"scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2",
		},
		{
			"fill box",
			[]engine.Effect{engine.PresentationForWidthAndHeight(720, 720, engine.LayoutScaleToFitWithCrop)},
			"scale=720:720:force_original_aspect_ratio=increase,crop=720:720",
		},
		{
			"stretch box",
			[]engine.Effect{engine.PresentationForWidthAndHeight(640, 480, engine.LayoutStretchToFit)},
			"scale=640:480,setsar=1",
		},
		{
			"aspect ratio crop",
			[]engine.Effect{engine.PresentationForAspectRatio(1, engine.LayoutScaleToFitWithCrop)},
			"crop=w='trunc(min(iw,ih*1)/2)*2':h='trunc(min(ih,iw/1)/2)*2'",
		},
		{
			"quarter turns",
			[]engine.Effect{engine.ScaleAndRotate{RotationDegrees: 90}, engine.ScaleAndRotate{RotationDegrees: -90}},
			"transpose=cclock,transpose=clock",
		},
		{
			"half turn",
			[]engine.Effect{engine.ScaleAndRotate{RotationDegrees: 540}},
			"hflip,vflip",
		},
		{
			"crop then resize then rotate keeps order",
			[]engine.Effect{
				engine.Crop{Left: -1, Right: 1, Top: 1, Bottom: -1},
				engine.PresentationForHeight(480),
				engine.ScaleAndRotate{RotationDegrees: 270},
			},
			"crop=w=trunc(iw*1/2)*2:h=trunc(ih*1/2)*2:x=iw*0:y=ih*0,scale=-2:480,transpose=clock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterGraph(tt.effects); got != tt.want {
				t.Errorf("filterGraph() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func TestRotateFilters_ArbitraryAngle(t *testing.T) {
	got := rotateFilters(45)
	if len(got) != 1 || !strings.HasPrefix(got[0], "rotate=-0.785398") {
		t.Fatalf("rotateFilters(45) = %v", got)
	}
	if !strings.Contains(got[0], "rotw(") || !strings.Contains(got[0], "c=black") {
		t.Errorf("rotate filter should grow the canvas: %s", got[0])
	}
	if rotateFilters(720) != nil {
		t.Error("full turns should produce no filter")
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestBuildArgs_FastStart(t *testing.T) {
	tests := map[string]bool{
		"out.mp4":  true,
		"out.MOV":  true,
		"out.m4a":  true,
		"out.mkv":  false,
		"out.webm": false,
	}
	media := engine.EditedMedia{InputPath: "in.mp4"}

	for output, want := range tests {
		plan, _ := planOutput(media, engine.Config{}, output)
		args := buildArgs(media, engine.Config{}, plan, output)
		if got := slices.Contains(args, "+faststart"); got != want {
			t.Errorf("%s: faststart = %v, want %v", output, got, want)
		}
	}
}
