package objstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"loom/internal/services"
)

// TokenURL builds the public download URL for an object with the given
// token. The object path is escaped as a single URL segment.
func (b *Bucket) TokenURL(objectPath, token string) string {
	return fmt.Sprintf("%s/o/%s?alt=media&token=%s",
		b.baseURL, url.PathEscape(normalize(objectPath)), url.QueryEscape(token))
}

// PreviewURL mints a fresh download token for the object, records it in the
// object's metadata, and returns the tokenized URL. Each call adds a new
// token; previously issued URLs stay valid. The object must exist: a URL is
// never minted for content that was not stored.
func (b *Bucket) PreviewURL(objectPath string) (string, error) {
	if _, err := b.resolve(objectPath); err != nil {
		return "", err
	}
	if !b.Exists(objectPath) {
		return "", services.Wrap(services.ErrNotFound, "objstore", "preview_url",
			fmt.Sprintf("object %s not found", normalize(objectPath)), nil)
	}
	token := uuid.NewString()
	meta, err := b.Metadata(objectPath)
	if err != nil {
		return "", err
	}
	tokens := token
	if existing := strings.TrimSpace(meta[MetadataKeyDownloadTokens]); existing != "" {
		tokens = existing + "," + token
	}
	if err := b.SetMetadata(objectPath, map[string]string{MetadataKeyDownloadTokens: tokens}); err != nil {
		return "", err
	}
	return b.TokenURL(objectPath, token), nil
}

// ParseObjectURL extracts the object path and token from a URL produced by
// TokenURL. Used by the media endpoint to route download requests.
func ParseObjectURL(rawPath, rawQuery string) (objectPath, token string, err error) {
	const prefix = "/o/"
	idx := strings.Index(rawPath, prefix)
	if idx < 0 {
		return "", "", fmt.Errorf("not an object URL: %s", rawPath)
	}
	escaped := rawPath[idx+len(prefix):]
	objectPath, err = url.PathUnescape(escaped)
	if err != nil {
		return "", "", fmt.Errorf("unescape object path: %w", err)
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", "", fmt.Errorf("parse query: %w", err)
	}
	return objectPath, values.Get("token"), nil
}
