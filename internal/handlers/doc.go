// Package handlers provides the HTTP job API of the media editor.
//
// Routes:
//   - POST   /api/edits       submit an edit, 202 with the job ID
//   - GET    /api/edits       recorded history, or live jobs with ?scope=live
//   - GET    /api/edits/{id}  snapshot of one job
//   - DELETE /api/edits/{id}  request cancellation, 202
//   - GET    /health, /livez, /readyz, /version
//
// The input and output of a submitted edit are paths relative to the work
// directory. Absolute paths and paths that escape it are rejected with 400.
//
// When an API token hash is configured every /api route requires
// "Authorization: Bearer <token>".
package handlers
