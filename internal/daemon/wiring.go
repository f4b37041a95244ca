package daemon

import (
	"context"

	"loom/internal/media/probe"
	"loom/internal/objstore"
	"loom/internal/response"
	"loom/internal/transcoder"
)

// BucketProber measures clip durations by running ffprobe against the
// bucket-local file behind an object path.
type BucketProber struct {
	bucket *objstore.Bucket
	binary string
}

func NewBucketProber(bucket *objstore.Bucket, binary string) *BucketProber {
	return &BucketProber{bucket: bucket, binary: binary}
}

func (p *BucketProber) Duration(ctx context.Context, objectPath string) (float64, error) {
	local, err := p.bucket.LocalPath(objectPath)
	if err != nil {
		return 0, err
	}
	return probe.Duration(ctx, p.binary, local)
}

// MergeAdapter narrows the transcoder merger to the assembly flow, which
// only cares whether the merge settled successfully.
type MergeAdapter struct {
	Merger *transcoder.Merger
}

func (a MergeAdapter) Merge(ctx context.Context, outputURI, outputName string, clips []response.AnswerClip) error {
	_, err := a.Merger.Merge(ctx, outputURI, outputName, clips)
	return err
}
