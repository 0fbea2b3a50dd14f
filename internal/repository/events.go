package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Event is one persisted row of the append-only event log. Rows are
// immutable once inserted; the only mutation the log supports is an
// administrative delete by id.
type Event struct {
	ID        int64     `json:"id"`
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	EntityID  *int64    `json:"entityId"`
	Data      *string   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

const eventColumns = `id, event_type, source, entity_id, data, "timestamp", version`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.EventType, &e.Source, &e.EntityID, &e.Data, &e.Timestamp, &e.Version)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type CreateEventParams struct {
	EventType string
	Source    string
	EntityID  *int64
	Data      *string
	Version   string
}

// CreateEvent appends one event to the log. The id and timestamp are
// assigned by the database and never change afterwards.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO events (event_type, source, entity_id, data, version)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+eventColumns,
		arg.EventType, arg.Source, arg.EntityID, arg.Data, arg.Version,
	)
	return scanEvent(row)
}

// GetEvent returns the event with the given id, or pgx.ErrNoRows.
func (q *Queries) GetEvent(ctx context.Context, id int64) (Event, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY "timestamp" DESC`)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (q *Queries) ListEventsByType(ctx context.Context, eventType string) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_type = $1 ORDER BY "timestamp" DESC`,
		eventType)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (q *Queries) ListEventsBySource(ctx context.Context, source string) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE source = $1 ORDER BY "timestamp" DESC`,
		source)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (q *Queries) ListEventsByEntity(ctx context.Context, entityID int64) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE entity_id = $1 ORDER BY "timestamp" DESC`,
		entityID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListRecentEvents returns the most recent events, newest first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY "timestamp" DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListEventsSince returns events strictly after the given timestamp,
// newest first.
func (q *Queries) ListEventsSince(ctx context.Context, since time.Time) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE "timestamp" > $1 ORDER BY "timestamp" DESC`,
		since)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListEventsBetween returns events with a timestamp in the inclusive
// [start, end] window, newest first.
func (q *Queries) ListEventsBetween(ctx context.Context, start, end time.Time) ([]Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE "timestamp" BETWEEN $1 AND $2 ORDER BY "timestamp" DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (q *Queries) EventExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
