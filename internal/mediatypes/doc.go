// Package mediatypes maps file extensions to the media containers the editor
// reads and writes.
//
// The package has no dependencies beyond the standard library so that the
// engine, the publisher and the command line can share it without import
// cycles.
//
// # Containers
//
// ForPath looks up the container for a path by extension:
//
//	c := mediatypes.ForPath("/work/out.webm")
//	c.Mime      // "video/webm"
//	c.Kind      // mediatypes.KindVideo
//	c.WebM      // true: only VP9/AV1 video and Opus audio fit
//	c.FastStart // false
//
// Unknown extensions return a Container with KindOther and the
// "application/octet-stream" MIME type; Known reports the difference.
package mediatypes
