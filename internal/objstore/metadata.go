package objstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"loom/internal/services"
)

// MetadataKeyDownloadTokens names the metadata entry holding the
// comma-separated list of valid download tokens for an object.
const MetadataKeyDownloadTokens = "downloadTokens"

const metaDirName = ".meta"

// metaPath returns the sidecar location for a normalized object path.
// Sidecars live under a parallel tree so they never collide with objects.
func (b *Bucket) metaPath(normalized string) string {
	return filepath.Join(b.root, metaDirName, filepath.FromSlash(normalized)+".json")
}

// Metadata returns an object's metadata. Missing sidecars yield an empty map.
func (b *Bucket) Metadata(objectPath string) (map[string]string, error) {
	if _, err := b.resolve(objectPath); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(b.metaPath(normalize(objectPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, services.Wrap(services.ErrExternalTool, "objstore", "metadata", "read metadata sidecar", err)
	}
	meta := map[string]string{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "objstore", "metadata", "decode metadata sidecar", err)
	}
	return meta, nil
}

// SetMetadata merges entries into an object's metadata sidecar. Existing keys
// not named in entries are preserved.
func (b *Bucket) SetMetadata(objectPath string, entries map[string]string) error {
	meta, err := b.Metadata(objectPath)
	if err != nil {
		return err
	}
	for key, value := range entries {
		meta[key] = value
	}
	sidecar := b.metaPath(normalize(objectPath))
	if err := os.MkdirAll(filepath.Dir(sidecar), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "objstore", "set_metadata", "create metadata directory", err)
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "objstore", "set_metadata", "encode metadata", err)
	}
	if err := os.WriteFile(sidecar, encoded, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "objstore", "set_metadata", "write metadata sidecar", err)
	}
	return nil
}

// VerifyToken reports whether token is a valid download token for the object.
func (b *Bucket) VerifyToken(objectPath, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	meta, err := b.Metadata(objectPath)
	if err != nil {
		return false
	}
	for _, candidate := range strings.Split(meta[MetadataKeyDownloadTokens], ",") {
		if strings.TrimSpace(candidate) == token {
			return true
		}
	}
	return false
}
