package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"loom/internal/services"
)

// Bucket is a filesystem-backed object store rooted at a single directory.
type Bucket struct {
	root    string
	baseURL string
}

// NewBucket opens (creating if needed) the bucket rooted at dir. baseURL is
// the public prefix preview URLs are built from.
func NewBucket(dir, baseURL string) (*Bucket, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrConfiguration, "objstore", "new_bucket", "bucket directory is required", nil)
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "objstore", "new_bucket", "create bucket directory", err)
	}
	return &Bucket{
		root:    trimmed,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// resolve maps an object path to its location on disk. Paths carrying ".."
// segments are rejected outright rather than cleaned, so a malformed path
// errors instead of aliasing onto another object.
func (b *Bucket) resolve(objectPath string) (string, error) {
	trimmed := strings.TrimSpace(objectPath)
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", services.Wrap(services.ErrValidation, "objstore", "resolve", fmt.Sprintf("invalid object path %q", objectPath), nil)
		}
	}
	cleaned := path.Clean("/" + trimmed)
	if cleaned == "/" {
		return "", services.Wrap(services.ErrValidation, "objstore", "resolve", fmt.Sprintf("invalid object path %q", objectPath), nil)
	}
	return filepath.Join(b.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

// normalize returns the canonical slash-separated object path.
func normalize(objectPath string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(objectPath)), "/")
}

// LocalPath returns the on-disk location for an object. The object need not
// exist yet.
func (b *Bucket) LocalPath(objectPath string) (string, error) {
	return b.resolve(objectPath)
}

// Exists reports whether an object is present in the bucket.
func (b *Bucket) Exists(objectPath string) bool {
	local, err := b.resolve(objectPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(local)
	return err == nil && info.Mode().IsRegular()
}

// WriteStream stores the reader's contents at objectPath, replacing any
// existing object. The write is staged to a temp file and renamed so readers
// never observe a partial object.
func (b *Bucket) WriteStream(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	local, err := b.resolve(objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "objstore", "write", "create object directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(local), ".upload-*")
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "objstore", "write", "create staging file", err)
	}
	tmpName := tmp.Name()
	written, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, services.Wrap(services.ErrExternalTool, "objstore", "write", fmt.Sprintf("write object %s", normalize(objectPath)), err)
	}
	if err := os.Rename(tmpName, local); err != nil {
		os.Remove(tmpName)
		return 0, services.Wrap(services.ErrExternalTool, "objstore", "write", "publish object", err)
	}
	return written, nil
}

// Open returns a reader over an object's contents.
func (b *Bucket) Open(objectPath string) (io.ReadCloser, error) {
	local, err := b.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "objstore", "open", fmt.Sprintf("object %s not found", normalize(objectPath)), nil)
		}
		return nil, services.Wrap(services.ErrExternalTool, "objstore", "open", "open object", err)
	}
	return f, nil
}

// Download copies an object to destPath on the local filesystem.
func (b *Bucket) Download(ctx context.Context, objectPath, destPath string) error {
	src, err := b.Open(objectPath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "objstore", "download", "create destination directory", err)
	}
	dest, err := os.Create(destPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "objstore", "download", "create destination file", err)
	}
	_, err = io.Copy(dest, &contextReader{ctx: ctx, r: src})
	closeErr := dest.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return services.Wrap(services.ErrExternalTool, "objstore", "download", fmt.Sprintf("download object %s", normalize(objectPath)), err)
	}
	return nil
}

// Remove deletes an object and its metadata sidecar if present.
func (b *Bucket) Remove(objectPath string) error {
	local, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrExternalTool, "objstore", "remove", "remove object", err)
	}
	os.Remove(b.metaPath(normalize(objectPath)))
	return nil
}

// contextReader aborts long copies when the context is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
