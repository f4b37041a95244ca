package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"loom/internal/config"
	"loom/internal/session"
)

// Store manages session and event persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// FindSession returns the session for a tenant/series key, or nil when no
// session exists yet.
func (s *Store) FindSession(ctx context.Context, key session.Key) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE tenant_id = ? AND series_id = ?`,
		key.TenantID, key.SeriesID,
	)
	found, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return found, nil
}

// CreateSession inserts a new session. The unique tenant/series index makes
// a concurrent duplicate create fail rather than fork the session.
func (s *Store) CreateSession(ctx context.Context, sess *session.Session) (*session.Session, error) {
	if sess == nil {
		return nil, errors.New("session is nil")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	sectionsJSON, err := json.Marshal(sess.Sections)
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (
            tenant_id, series_id, status, patient_name, patient_email, patient_phone,
            sections_json, is_deleted, thumbnail_image, storage_thumbnail_image_path,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.TenantID,
		sess.SeriesID,
		sess.Status,
		nullableString(sess.Patient.Name),
		nullableString(sess.Patient.Email),
		nullableString(sess.Patient.Phone),
		string(sectionsJSON),
		boolToInt(sess.IsDeleted),
		nullableString(sess.ThumbnailImage),
		nullableString(sess.StorageThumbnailImagePath),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getSessionByID(ctx, id)
}

// AppendSection appends a section to an existing session inside a
// transaction and bumps the modification timestamp. A structurally identical
// section already present is not appended again; the bool reports whether
// the section was added.
func (s *Store) AppendSection(ctx context.Context, key session.Key, section session.Section) (*session.Session, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		id           int64
		sectionsJSON string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, sections_json FROM sessions WHERE tenant_id = ? AND series_id = ?`,
		key.TenantID, key.SeriesID,
	).Scan(&id, &sectionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("append section: no session for tenant %s series %s", key.TenantID, key.SeriesID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read sections: %w", err)
	}

	var sections []session.Section
	if err := json.Unmarshal([]byte(sectionsJSON), &sections); err != nil {
		return nil, false, fmt.Errorf("unmarshal sections: %w", err)
	}

	candidate, err := json.Marshal(section)
	if err != nil {
		return nil, false, fmt.Errorf("marshal section: %w", err)
	}
	appended := true
	for _, existing := range sections {
		encoded, err := json.Marshal(existing)
		if err != nil {
			return nil, false, fmt.Errorf("marshal existing section: %w", err)
		}
		if bytes.Equal(encoded, candidate) {
			appended = false
			break
		}
	}

	if appended {
		sections = append(sections, section)
		updated, err := json.Marshal(sections)
		if err != nil {
			return nil, false, fmt.Errorf("marshal updated sections: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE sessions SET sections_json = ?, updated_at = ? WHERE id = ?`,
			string(updated),
			time.Now().UTC().Format(time.RFC3339Nano),
			id,
		)
		if err != nil {
			return nil, false, fmt.Errorf("update sections: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit append: %w", err)
	}

	result, err := s.getSessionByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return result, appended, nil
}

// SaveThumbnail records the thumbnail URL and object path for a session.
func (s *Store) SaveThumbnail(ctx context.Context, key session.Key, thumbnailURL, storagePath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET thumbnail_image = ?, storage_thumbnail_image_path = ?, updated_at = ?
         WHERE tenant_id = ? AND series_id = ?`,
		thumbnailURL,
		storagePath,
		time.Now().UTC().Format(time.RFC3339Nano),
		key.TenantID,
		key.SeriesID,
	)
	if err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("save thumbnail: no session for tenant %s series %s", key.TenantID, key.SeriesID)
	}
	return nil
}

// ListSessions returns all sessions ordered by creation time.
func (s *Store) ListSessions(ctx context.Context) ([]*session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) getSessionByID(ctx context.Context, id int64) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

const sessionColumns = "id, tenant_id, series_id, status, patient_name, patient_email, patient_phone, sections_json, is_deleted, thumbnail_image, storage_thumbnail_image_path, created_at, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*session.Session, error) {
	var (
		id            int64
		tenantID      string
		seriesID      string
		status        string
		patientName   sql.NullString
		patientEmail  sql.NullString
		patientPhone  sql.NullString
		sectionsJSON  string
		isDeleted     sql.NullInt64
		thumbnail     sql.NullString
		thumbnailPath sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&tenantID,
		&seriesID,
		&status,
		&patientName,
		&patientEmail,
		&patientPhone,
		&sectionsJSON,
		&isDeleted,
		&thumbnail,
		&thumbnailPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	sess := &session.Session{
		ID:       id,
		TenantID: tenantID,
		SeriesID: seriesID,
		Status:   status,
		Patient: session.Patient{
			Name:  patientName.String,
			Email: patientEmail.String,
			Phone: patientPhone.String,
		},
		IsDeleted:                 isDeleted.Valid && isDeleted.Int64 != 0,
		ThumbnailImage:            thumbnail.String,
		StorageThumbnailImagePath: thumbnailPath.String,
	}
	if err := json.Unmarshal([]byte(sectionsJSON), &sess.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		sess.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		sess.UpdatedAt = updated
	}
	return sess, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
