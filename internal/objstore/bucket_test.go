package objstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/services"
)

func newTestBucket(t *testing.T) *Bucket {
	t.Helper()
	bucket, err := NewBucket(t.TempDir(), "http://127.0.0.1:7519/media")
	if err != nil {
		t.Fatalf("NewBucket: %v", err)
	}
	return bucket
}

func TestWriteStreamAndOpenRoundTrip(t *testing.T) {
	bucket := newTestBucket(t)
	content := "fake mp4 payload"

	written, err := bucket.WriteStream(context.Background(), "responses/a1.mp4", strings.NewReader(content))
	if err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	if written != int64(len(content)) {
		t.Fatalf("written = %d, want %d", written, len(content))
	}

	reader, err := bucket.Open("responses/a1.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(got) != content {
		t.Fatalf("object content = %q, want %q", got, content)
	}
}

func TestWriteStreamReplacesExisting(t *testing.T) {
	bucket := newTestBucket(t)
	ctx := context.Background()
	if _, err := bucket.WriteStream(ctx, "responses/a1.mp4", strings.NewReader("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := bucket.WriteStream(ctx, "responses/a1.mp4", strings.NewReader("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	reader, err := bucket.Open("responses/a1.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	got, _ := io.ReadAll(reader)
	if string(got) != "new" {
		t.Fatalf("object content = %q, want %q", got, "new")
	}
}

func TestResolveRejectsEscapingPaths(t *testing.T) {
	bucket := newTestBucket(t)
	for _, bad := range []string{"../outside.mp4", "a/../../b", "", "   "} {
		if _, err := bucket.LocalPath(bad); err == nil {
			t.Fatalf("LocalPath(%q) accepted an invalid path", bad)
		}
	}
}

func TestDownloadCopiesObject(t *testing.T) {
	bucket := newTestBucket(t)
	ctx := context.Background()
	if _, err := bucket.WriteStream(ctx, "sessions/s1.mp4", strings.NewReader("merged")); err != nil {
		t.Fatalf("WriteStream: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "staging", "s1.mp4")
	if err := bucket.Download(ctx, "sessions/s1.mp4", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != "merged" {
		t.Fatalf("downloaded content = %q", got)
	}
}

func TestDownloadMissingObjectFails(t *testing.T) {
	bucket := newTestBucket(t)
	err := bucket.Download(context.Background(), "sessions/none.mp4", filepath.Join(t.TempDir(), "out.mp4"))
	if err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestMetadataMergePreservesExistingKeys(t *testing.T) {
	bucket := newTestBucket(t)
	if _, err := bucket.WriteStream(context.Background(), "thumbs/t1.png", strings.NewReader("png")); err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	if err := bucket.SetMetadata("thumbs/t1.png", map[string]string{"contentType": "image/png"}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := bucket.SetMetadata("thumbs/t1.png", map[string]string{"owner": "loom"}); err != nil {
		t.Fatalf("SetMetadata merge: %v", err)
	}
	meta, err := bucket.Metadata("thumbs/t1.png")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta["contentType"] != "image/png" || meta["owner"] != "loom" {
		t.Fatalf("metadata = %v", meta)
	}
}

func TestPreviewURLMintsVerifiableToken(t *testing.T) {
	bucket := newTestBucket(t)
	if _, err := bucket.WriteStream(context.Background(), "sessions/s1.mp4", strings.NewReader("merged")); err != nil {
		t.Fatalf("WriteStream: %v", err)
	}

	previewURL, err := bucket.PreviewURL("sessions/s1.mp4")
	if err != nil {
		t.Fatalf("PreviewURL: %v", err)
	}
	if !strings.HasPrefix(previewURL, "http://127.0.0.1:7519/media/o/sessions%2Fs1.mp4?alt=media&token=") {
		t.Fatalf("preview url = %q", previewURL)
	}

	objectPath, token, err := ParseObjectURL("/media/o/sessions%2Fs1.mp4", previewURL[strings.Index(previewURL, "?")+1:])
	if err != nil {
		t.Fatalf("ParseObjectURL: %v", err)
	}
	if objectPath != "sessions/s1.mp4" {
		t.Fatalf("parsed object path = %q", objectPath)
	}
	if !bucket.VerifyToken(objectPath, token) {
		t.Fatal("minted token did not verify")
	}
	if bucket.VerifyToken(objectPath, "bogus") {
		t.Fatal("bogus token verified")
	}
}

func TestPreviewURLRejectsMissingObject(t *testing.T) {
	bucket := newTestBucket(t)

	_, err := bucket.PreviewURL("sessions/never-written.mp4")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing object, got %v", err)
	}
	// The failed mint must not leave a token sidecar behind.
	meta, metaErr := bucket.Metadata("sessions/never-written.mp4")
	if metaErr != nil {
		t.Fatalf("Metadata: %v", metaErr)
	}
	if meta[MetadataKeyDownloadTokens] != "" {
		t.Fatalf("tokens recorded for missing object: %v", meta)
	}
}

func TestPreviewURLKeepsOlderTokens(t *testing.T) {
	bucket := newTestBucket(t)
	if _, err := bucket.WriteStream(context.Background(), "sessions/s1.mp4", strings.NewReader("merged")); err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	first, err := bucket.PreviewURL("sessions/s1.mp4")
	if err != nil {
		t.Fatalf("first PreviewURL: %v", err)
	}
	if _, err := bucket.PreviewURL("sessions/s1.mp4"); err != nil {
		t.Fatalf("second PreviewURL: %v", err)
	}
	_, firstToken, err := ParseObjectURL("/media/o/sessions%2Fs1.mp4", first[strings.Index(first, "?")+1:])
	if err != nil {
		t.Fatalf("ParseObjectURL: %v", err)
	}
	if !bucket.VerifyToken("sessions/s1.mp4", firstToken) {
		t.Fatal("older token invalidated by newer mint")
	}
}
