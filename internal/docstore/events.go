package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an inbound webhook event.
type EventStatus string

const (
	EventPending    EventStatus = "pending"
	EventProcessing EventStatus = "processing"
	EventCompleted  EventStatus = "completed"
	EventFailed     EventStatus = "failed"
)

// Event is one queued webhook delivery awaiting assembly.
type Event struct {
	ID           int64
	TenantID     string
	PayloadJSON  string
	Status       EventStatus
	Attempts     int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EnqueueEvent stores a webhook payload for the processor loop.
func (s *Store) EnqueueEvent(ctx context.Context, tenantID, payloadJSON string) (*Event, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (tenant_id, payload_json, status, attempts, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)`,
		tenantID, payloadJSON, EventPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getEventByID(ctx, id)
}

// NextPendingEvent claims the oldest pending event, marking it processing.
// Events whose IDs appear in skipIDs are left alone, so a caller that just
// requeued an event can defer its redelivery to a later pass. Returns nil
// when no claimable event exists.
func (s *Store) NextPendingEvent(ctx context.Context, skipIDs ...int64) (*Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT id FROM events WHERE status = ?`
	args := []any{EventPending}
	if len(skipIDs) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(",?", len(skipIDs)-1) + `)`
		for _, skip := range skipIDs {
			args = append(args, skip)
		}
	}
	query += ` ORDER BY created_at LIMIT 1`

	var id int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending event: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE events SET status = ?, attempts = attempts + 1, updated_at = ? WHERE id = ?`,
		EventProcessing,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("claim event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return s.getEventByID(ctx, id)
}

// MarkEventCompleted finishes a processed event.
func (s *Store) MarkEventCompleted(ctx context.Context, id int64) error {
	return s.setEventStatus(ctx, id, EventCompleted, "")
}

// MarkEventFailed records an event's terminal failure with its cause.
func (s *Store) MarkEventFailed(ctx context.Context, id int64, cause string) error {
	return s.setEventStatus(ctx, id, EventFailed, cause)
}

// RequeueEvent returns a claimed event to pending for redelivery.
func (s *Store) RequeueEvent(ctx context.Context, id int64, cause string) error {
	return s.setEventStatus(ctx, id, EventPending, cause)
}

// ResetStuckEvents returns processing events back to pending, typically on
// daemon startup after a crash.
func (s *Store) ResetStuckEvents(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = ?, updated_at = ? WHERE status = ?`,
		EventPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		EventProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck events: %w", err)
	}
	return res.RowsAffected()
}

// EventStats returns a count of events grouped by status.
func (s *Store) EventStats(ctx context.Context) (map[EventStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM events GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[EventStatus]int)
	for rows.Next() {
		var status EventStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func (s *Store) setEventStatus(ctx context.Context, id int64, status EventStatus, cause string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(cause),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %d not found", id)
	}
	return nil
}

func (s *Store) getEventByID(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, payload_json, status, attempts, error_message, created_at, updated_at
         FROM events WHERE id = ?`, id)

	var (
		event      Event
		statusStr  string
		errMsg     sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := row.Scan(&event.ID, &event.TenantID, &event.PayloadJSON, &statusStr, &event.Attempts, &errMsg, &createdRaw, &updatedRaw); err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	event.Status = EventStatus(statusStr)
	event.ErrorMessage = errMsg.String
	if created, err := parseTimeString(createdRaw); err == nil {
		event.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		event.UpdatedAt = updated
	}
	return &event, nil
}
