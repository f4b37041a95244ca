// Package objstore provides the media object store backing the pipeline.
//
// Objects live under a single bucket directory on the local filesystem.
// Each object may carry a metadata sidecar holding download tokens and
// arbitrary key/value pairs. Preview URLs embed a random token that the
// daemon's media endpoint verifies against the sidecar before serving.
package objstore
