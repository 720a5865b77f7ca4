/*
Package filesystem provides file operations with retry logic for NFS stale
file handle errors.

The library directory that finished edits are published to is often a
network mount. StatWithRetry, OpenWithRetry and CreateWithRetry wrap the
matching os calls and retry only on ESTALE, with exponential backoff:

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff, 500ms maximum backoff. All other
errors are returned immediately.

Retry metrics are reported through an [Observer] installed with SetObserver;
volume labels come from a [VolumeResolver] mapping mount paths to names such
as "work" and "library".
*/
package filesystem
