/*
Package workers sizes the edit worker pool for containerized deployments.

runtime.NumCPU reports the host's CPUs, not the container's share. Since Go
1.19 GOMAXPROCS follows the cgroup CPU limit, so the helpers here derive
worker counts from it instead:

	// One ffmpeg process per CPU, at most four.
	n := workers.ForCPU(4)

The EDIT_WORKERS environment variable overrides the computed value. Invalid
or non-positive overrides are ignored. The limit argument still applies.

	EDIT_WORKERS=2 ./media-editor
*/
package workers
