// Package edit defines the data model for a single declarative video edit.
//
// A [Request] describes one single-pass edit of one input file:
//   - Crop: a normalized rectangle in the source frame ([CropOptions])
//   - Resize: fixed size, fixed height or aspect ratio ([ResizeOptions])
//   - Rotation in degrees
//   - Audio or video track removal and slow-motion flattening
//   - Encoder tuning ([TranscodeOptions])
//
// Geometric options are validated when they are constructed, so malformed
// input is rejected before any asynchronous work starts. The package also
// carries the caller-facing progress, fallback and result types and the
// error taxonomy shared by the orchestrator and its callers.
package edit
