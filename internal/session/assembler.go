package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"loom/internal/logging"
	"loom/internal/response"
	"loom/internal/services"
)

// ClipMerger concatenates clips into one video at the given output location.
type ClipMerger interface {
	Merge(ctx context.Context, outputURI, outputName string, clips []response.AnswerClip) error
}

// Store is the session persistence surface the assembler depends on.
type Store interface {
	FindSession(ctx context.Context, key Key) (*Session, error)
	CreateSession(ctx context.Context, sess *Session) (*Session, error)
	AppendSection(ctx context.Context, key Key, section Section) (*Session, bool, error)
}

// Thumbnailer produces and records a session poster image.
type Thumbnailer interface {
	Generate(ctx context.Context, key Key, videoObjectPath string) error
}

// SectionMetadata carries the descriptive fields for one inbound section.
type SectionMetadata struct {
	SectionID   string
	SectionName string
	Subtitle    string
	Patient     Patient
}

// AssemblerConfig fixes the storage layout the assembler writes into.
// Object paths are tenant scoped: merged videos land under
// {tenant}/{SessionsDir}/.
type AssemblerConfig struct {
	// PublicBaseURL is the media URL prefix the transcoding service can
	// reach the bucket under.
	PublicBaseURL string
	// SessionsDir is the per-tenant directory name merged videos land in.
	SessionsDir string
}

// Assembler runs one section of answers end to end: filter, chapter,
// merge, publish, upsert.
type Assembler struct {
	store   Store
	merger  ClipMerger
	prober  DurationProber
	objects ObjectStore
	thumbs  Thumbnailer
	cfg     AssemblerConfig
	logger  *slog.Logger
}

// NewAssembler wires the assembler's collaborators.
func NewAssembler(store Store, merger ClipMerger, prober DurationProber, objects ObjectStore, thumbs Thumbnailer, cfg AssemblerConfig, logger *slog.Logger) (*Assembler, error) {
	if store == nil || merger == nil || prober == nil || objects == nil || thumbs == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assembler", "new", "all collaborators are required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		store:   store,
		merger:  merger,
		prober:  prober,
		objects: objects,
		thumbs:  thumbs,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "assembler"),
	}, nil
}

// Assemble processes one section's clips under the given session key. The
// mapping rewrites each clip's provider reference into its bucket URL for
// this delivery's storage prefix. A section with no video answers is a
// no-op, not an error. Errors from the merge and persistence stages surface
// to the caller, which decides whether the triggering event is redelivered.
func (a *Assembler) Assemble(ctx context.Context, clips []response.AnswerClip, meta SectionMetadata, key Key, mapping response.URLMapping) error {
	logger := a.logger.With(
		slog.String(logging.FieldTenantID, key.TenantID),
		slog.String(logging.FieldSessionID, key.SeriesID),
		slog.String(logging.FieldSectionID, meta.SectionID),
	)

	videoClips, ok := response.VideoClipsWithURL(clips, mapping)
	if !ok {
		logger.InfoContext(ctx, "no video answers in section, nothing to assemble")
		return nil
	}

	chapters, err := GenerateChapters(ctx, a.prober, videoClips)
	if err != nil {
		return err
	}

	outputName := meta.SectionID + ".mp4"
	sessionsPrefix := key.TenantID + "/" + strings.Trim(a.cfg.SessionsDir, "/")
	objectPath := sessionsPrefix + "/" + outputName
	outputURI := strings.TrimRight(a.cfg.PublicBaseURL, "/") + "/o/" + url.PathEscape(sessionsPrefix+"/")
	if err := a.merger.Merge(ctx, outputURI, outputName, videoClips); err != nil {
		return err
	}

	mediaURL, err := a.objects.PreviewURL(objectPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "assembler", "publish",
			fmt.Sprintf("mint preview URL for %s", objectPath), err)
	}

	section := Section{
		SectionID:           meta.SectionID,
		SectionName:         meta.SectionName,
		Subtitle:            meta.Subtitle,
		Chapters:            chapters,
		MediaURL:            mediaURL,
		StorageMediaURLPath: objectPath,
	}

	created, err := a.upsert(ctx, key, meta, section)
	if err != nil {
		return err
	}

	if created {
		// Thumbnails are generated once, on session creation only.
		if err := a.thumbs.Generate(ctx, key, objectPath); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "section assembled",
		slog.Int("chapters", len(chapters)),
		slog.Bool("session_created", created))
	return nil
}

// upsert attaches the section to the session for key, creating the session
// when it does not exist yet. Returns whether a new session was created.
func (a *Assembler) upsert(ctx context.Context, key Key, meta SectionMetadata, section Section) (bool, error) {
	existing, err := a.store.FindSession(ctx, key)
	if err != nil {
		return false, err
	}
	if existing != nil {
		updated, appended, err := a.store.AppendSection(ctx, key, section)
		if err != nil {
			return false, err
		}
		if !appended {
			a.logger.InfoContext(ctx, "identical section already attached, skipping append",
				slog.String(logging.FieldSectionID, section.SectionID),
				slog.Int("sections", len(updated.Sections)))
		}
		return false, nil
	}

	_, err = a.store.CreateSession(ctx, &Session{
		TenantID:  key.TenantID,
		SeriesID:  key.SeriesID,
		Status:    StatusNew,
		Patient:   meta.Patient,
		Sections:  []Section{section},
		IsDeleted: false,
	})
	if err != nil {
		// A concurrent assembly may have created the session between the
		// find and the insert; the unique key rejects the duplicate, so
		// fall through to an append.
		raced, findErr := a.store.FindSession(ctx, key)
		if findErr != nil || raced == nil {
			return false, err
		}
		if _, _, appendErr := a.store.AppendSection(ctx, key, section); appendErr != nil {
			return false, appendErr
		}
		return false, nil
	}
	return true, nil
}
