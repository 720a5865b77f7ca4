// Package transcoder implements the editor's transformation engine on top of
// FFmpeg.
//
// It supports:
//   - Crop, resize and rotate effects, translated to an ffmpeg filter graph
//   - Codec selection by MIME type, with a fallback for unknown codecs
//   - Bitrate modes (VBR, CBR, constant quality) and forced keyframe intervals
//   - Audio or video track removal
//   - Progress reporting from ffmpeg's -progress output
//   - Describing the finished file with ffprobe
//
// FFmpeg and ffprobe must be installed. Slow-motion flattening is not
// available and is reported as a fallback.
package transcoder
