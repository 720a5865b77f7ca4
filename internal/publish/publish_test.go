package publish

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"

	"media-editor/internal/edit"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPublish_Disabled(t *testing.T) {
	p := New(t.TempDir(), "", false)
	if p.IsEnabled() {
		t.Fatal("IsEnabled() = true")
	}

	pub, err := p.Publish(context.Background(), &edit.Result{OutputPath: "/work/out.mp4"})
	if pub != nil || err != nil {
		t.Errorf("Publish() = %v, %v; want nil, nil", pub, err)
	}
}

func TestPublish_CopiesAudioOnlyOutput(t *testing.T) {
	work := t.TempDir()
	library := filepath.Join(t.TempDir(), "library")

	src := filepath.Join(work, "clip.m4a")
	writeFile(t, src, "audio-bytes")

	p := New(library, "", true)
	pub, err := p.Publish(context.Background(), &edit.Result{OutputPath: src})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if pub.Path != filepath.Join(library, "clip.m4a") {
		t.Errorf("Path = %q", pub.Path)
	}
	if pub.PosterPath != "" {
		t.Errorf("PosterPath = %q, want none for audio", pub.PosterPath)
	}
	if pub.ContentType != "audio/mp4" {
		t.Errorf("ContentType = %q, want audio/mp4", pub.ContentType)
	}

	data, err := os.ReadFile(pub.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("copied content = %q", data)
	}
	if leftovers, _ := filepath.Glob(filepath.Join(library, ".publish-*")); len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should be kept: %v", err)
	}
}

func TestPublish_AvoidsOverwriting(t *testing.T) {
	work := t.TempDir()
	library := t.TempDir()

	src := filepath.Join(work, "clip.m4a")
	writeFile(t, src, "new")
	writeFile(t, filepath.Join(library, "clip.m4a"), "old")
	writeFile(t, filepath.Join(library, "clip-1.m4a"), "older")

	p := New(library, "", true)
	pub, err := p.Publish(context.Background(), &edit.Result{OutputPath: src})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if want := filepath.Join(library, "clip-2.m4a"); pub.Path != want {
		t.Errorf("Path = %q, want %q", pub.Path, want)
	}

	data, _ := os.ReadFile(filepath.Join(library, "clip.m4a"))
	if string(data) != "old" {
		t.Error("existing library file was overwritten")
	}
}

func TestPublish_ConcurrentSameName(t *testing.T) {
	library := t.TempDir()
	p := New(library, "", true)

	const n = 8
	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		src := filepath.Join(t.TempDir(), "clip.m4a")
		writeFile(t, src, strings.Repeat(fmt.Sprintf("%d", i), 1<<16))

		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			pub, err := p.Publish(context.Background(), &edit.Result{OutputPath: src})
			errs[i] = err
			if pub != nil {
				paths[i] = pub.Path
			}
		}(i, src)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("publish %d error = %v", i, errs[i])
			continue
		}
		if seen[paths[i]] {
			t.Errorf("path %s handed out twice", paths[i])
		}
		seen[paths[i]] = true

		data, err := os.ReadFile(paths[i])
		if err != nil {
			t.Fatal(err)
		}
		if want := strings.Repeat(fmt.Sprintf("%d", i), 1<<16); string(data) != want {
			t.Errorf("%s holds another publish's content", paths[i])
		}
	}

	if leftovers, _ := filepath.Glob(filepath.Join(library, ".publish-*")); len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestPublish_MissingOutputIsWarning(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.mp4")
	p := New(t.TempDir(), "", true)

	pub, err := p.Publish(context.Background(), &edit.Result{OutputPath: missing})
	if pub != nil {
		t.Errorf("Publication = %+v, want nil", pub)
	}

	var warning *edit.PublishWarning
	if !errors.As(err, &warning) {
		t.Fatalf("error = %v, want *edit.PublishWarning", err)
	}
	if warning.Path != missing {
		t.Errorf("warning path = %q, want %q", warning.Path, missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("warning should wrap the cause: %v", err)
	}
}

func TestWritePoster(t *testing.T) {
	p := New(t.TempDir(), "", true)
	img := imaging.New(640, 480, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	path := filepath.Join(t.TempDir(), "poster.jpg")

	if err := p.writePoster(img, path); err != nil {
		t.Fatalf("writePoster() error = %v", err)
	}

	got, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("poster not readable: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("poster size = %dx%d, want 320x240", b.Dx(), b.Dy())
	}
}

func TestPosterPathFor(t *testing.T) {
	tests := map[string]string{
		"/library/clip.mp4":     "/library/clip.jpg",
		"/library/clip.v2.webm": "/library/clip.v2.jpg",
		"/library/no-extension": "/library/no-extension.jpg",
	}
	for in, want := range tests {
		if got := posterPathFor(in); got != want {
			t.Errorf("posterPathFor(%q) = %q, want %q", in, got, want)
		}
	}
}
