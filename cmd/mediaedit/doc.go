// Command mediaedit runs one video edit from the command line, or prints a
// bcrypt hash for the media-editor API token.
//
// Usage:
//
//	mediaedit run -in <path> -out <path> [flags]
//	mediaedit hash-token
//
// Commands:
//
//	run         Edit one video with the FFmpeg engine and print a summary of
//	            the result. Progress is drawn on stderr and Ctrl+C cancels
//	            the edit.
//
//	hash-token  Read a token from the terminal without echo and print the
//	            value to use for API_TOKEN_HASH.
//
// Presets:
//
//	-square        centre crop to a square frame
//	-height 720    720p output, keeping the aspect ratio
//	-keyframe 1    one keyframe per second
//
// Exit status is 0 on success, 1 when the edit fails, 2 for usage errors and
// 130 when the edit is cancelled.
package main
