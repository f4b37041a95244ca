// Package transcoder drives the remote video transcoding service that merges
// answer clips into one session video.
//
// The package has three layers:
//   - job construction: BuildMergeRequest produces the concatenation job
//     (one input per clip, one edit atom per input, fixed output profile)
//   - Client: the service API surface (create job, fetch job state) with an
//     HTTP implementation
//   - Merger: submits a job and polls it to a terminal state with jittered
//     exponential backoff between polls
//
// A failed or unrecognized job state surfaces as a FailureError immediately;
// running out of poll attempts surfaces as a RetryExhaustedError. The two are
// distinct so callers can tell "the service rejected the work" from "the
// service never finished within our patience".
package transcoder
