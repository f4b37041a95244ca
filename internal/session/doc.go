// Package session holds the assembly pipeline: chapter timeline generation,
// the thumbnail pipeline, and the top-level assembler that merges one
// section's answer clips and upserts the result into the session store.
package session
