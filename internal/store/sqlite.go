package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iamnno/IES/internal/telemetry"
)

// sqliteTimeLayout stores UTC timestamps as fixed-width text so that
// lexicographic comparison in SQL matches chronological order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

// SQLite is the relational Store backend, kept schema-compatible with the
// table the hub originally wrote to.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database file and applies the schema
// migration.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("store: sqlite path is required")
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_fk=1", path))
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const stmt = `
CREATE TABLE IF NOT EXISTS processed_agent_data (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    road_state TEXT NOT NULL,
    user_id    INTEGER NOT NULL,
    x          REAL NOT NULL,
    y          REAL NOT NULL,
    z          REAL NOT NULL,
    latitude   REAL NOT NULL,
    longitude  REAL NOT NULL,
    timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pad_user ON processed_agent_data(user_id);
CREATE INDEX IF NOT EXISTS idx_pad_ts ON processed_agent_data(timestamp);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }

// Append implements Store.
func (s *SQLite) Append(ctx context.Context, rec telemetry.Record) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO processed_agent_data (road_state, user_id, x, y, z, latitude, longitude, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RoadState, rec.UserID, rec.X, rec.Y, rec.Z,
		rec.Latitude, rec.Longitude, rec.Timestamp.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("store: insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

func (s *SQLite) scanRecord(row *sql.Row) (telemetry.Record, error) {
	var rec telemetry.Record
	var ts string
	err := row.Scan(&rec.ID, &rec.RoadState, &rec.UserID,
		&rec.X, &rec.Y, &rec.Z, &rec.Latitude, &rec.Longitude, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return telemetry.Record{}, ErrNotFound
	}
	if err != nil {
		return telemetry.Record{}, err
	}
	rec.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
	if err != nil {
		return telemetry.Record{}, fmt.Errorf("store: parse stored timestamp %q: %w", ts, err)
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}

const selectColumns = `id, road_state, user_id, x, y, z, latitude, longitude, timestamp`

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id int64) (telemetry.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM processed_agent_data WHERE id = ?`, id)
	return s.scanRecord(row)
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]telemetry.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM processed_agent_data ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []telemetry.Record
	for rows.Next() {
		var rec telemetry.Record
		var ts string
		if err := rows.Scan(&rec.ID, &rec.RoadState, &rec.UserID,
			&rec.X, &rec.Y, &rec.Z, &rec.Latitude, &rec.Longitude, &ts); err != nil {
			return nil, err
		}
		rec.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("store: parse stored timestamp %q: %w", ts, err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update implements Store.
func (s *SQLite) Update(ctx context.Context, id int64, rec telemetry.Record) (telemetry.Record, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE processed_agent_data
SET road_state = ?, user_id = ?, x = ?, y = ?, z = ?, latitude = ?, longitude = ?, timestamp = ?
WHERE id = ?`,
		rec.RoadState, rec.UserID, rec.X, rec.Y, rec.Z,
		rec.Latitude, rec.Longitude, rec.Timestamp.UTC().Format(sqliteTimeLayout), id)
	if err != nil {
		return telemetry.Record{}, fmt.Errorf("store: update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return telemetry.Record{}, err
	}
	if n == 0 {
		return telemetry.Record{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, id int64) (telemetry.Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return telemetry.Record{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM processed_agent_data WHERE id = ?`, id); err != nil {
		return telemetry.Record{}, fmt.Errorf("store: delete record: %w", err)
	}
	return rec, nil
}

// PurgeOlderThan implements Store.
func (s *SQLite) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM processed_agent_data WHERE timestamp < ?`,
		cutoff.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("store: purge records: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
