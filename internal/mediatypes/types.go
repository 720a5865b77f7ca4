package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the broad class of media a container holds.
type Kind string

const (
	// KindVideo marks containers that normally carry a video track.
	KindVideo Kind = "video"
	// KindAudio marks audio-only containers.
	KindAudio Kind = "audio"
	// KindOther represents an unknown or unsupported extension.
	KindOther Kind = "other"
)

// Container describes a media container by its file extension.
type Container struct {
	Ext  string
	Mime string
	Kind Kind

	// WebM containers only accept VP8, VP9 or AV1 video and Vorbis or Opus
	// audio.
	WebM bool

	// FastStart marks ISO base media files whose index can be moved to the
	// front of the file.
	FastStart bool
}

var containers = map[string]Container{
	".mp4":  {Mime: "video/mp4", Kind: KindVideo, FastStart: true},
	".m4v":  {Mime: "video/x-m4v", Kind: KindVideo, FastStart: true},
	".mov":  {Mime: "video/quicktime", Kind: KindVideo, FastStart: true},
	".3gp":  {Mime: "video/3gpp", Kind: KindVideo, FastStart: true},
	".mkv":  {Mime: "video/x-matroska", Kind: KindVideo},
	".webm": {Mime: "video/webm", Kind: KindVideo, WebM: true},
	".avi":  {Mime: "video/x-msvideo", Kind: KindVideo},
	".ts":   {Mime: "video/mp2t", Kind: KindVideo},
	".mpeg": {Mime: "video/mpeg", Kind: KindVideo},
	".mpg":  {Mime: "video/mpeg", Kind: KindVideo},
	".m4a":  {Mime: "audio/mp4", Kind: KindAudio, FastStart: true},
	".aac":  {Mime: "audio/aac", Kind: KindAudio},
	".opus": {Mime: "audio/ogg", Kind: KindAudio},
	".ogg":  {Mime: "audio/ogg", Kind: KindAudio},
	".mp3":  {Mime: "audio/mpeg", Kind: KindAudio},
	".wav":  {Mime: "audio/wav", Kind: KindAudio},
}

// ForPath returns the container for path's extension. The match is case
// insensitive. Unknown extensions get KindOther and
// "application/octet-stream".
func ForPath(path string) Container {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := containers[ext]
	if !ok {
		return Container{Ext: ext, Mime: "application/octet-stream", Kind: KindOther}
	}
	c.Ext = ext
	return c
}

// Known reports whether the extension was recognized.
func (c Container) Known() bool {
	return c.Kind != KindOther
}

// IsVideo reports whether path names a video container.
func IsVideo(path string) bool {
	return ForPath(path).Kind == KindVideo
}
