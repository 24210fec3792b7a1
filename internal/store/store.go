// Package store persists the action journal and polling cursors in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		d.SetMaxOpenConns(1)
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  task_id TEXT NOT NULL,
	  ts INTEGER NOT NULL,
	  kind TEXT NOT NULL,
	  handle TEXT NOT NULL,
	  tweet_id TEXT,
	  ok INTEGER NOT NULL,
	  detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`)
	return err
}

// Action is one journaled dispatch outcome.
type Action struct {
	TaskID  string
	TS      time.Time
	Kind    string
	Handle  string
	TweetID string
	OK      bool
	Detail  string
}

// PutAction appends an action to the journal.
func (d *DB) PutAction(ctx context.Context, a Action) error {
	ok := 0
	if a.OK {
		ok = 1
	}
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(task_id, ts, kind, handle, tweet_id, ok, detail) VALUES(?,?,?,?,?,?,?)`,
		a.TaskID, a.TS.UnixNano(), a.Kind, a.Handle, a.TweetID, ok, a.Detail)
	return err
}

// CountActionsWithin counts successful actions of kind in [start,end).
// An empty kind counts every kind.
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, kind string) (int, error) {
	var row *sql.Row
	if kind == "" {
		row = d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE ok=1 AND ts>=? AND ts<?`, start.UnixNano(), end.UnixNano())
	} else {
		row = d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE ok=1 AND ts>=? AND ts<? AND kind=?`, start.UnixNano(), end.UnixNano(), kind)
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadActionsRange returns journaled actions in [start,end), oldest first.
func (d *DB) LoadActionsRange(ctx context.Context, start, end time.Time) ([]Action, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT task_id, ts, kind, handle, COALESCE(tweet_id, ''), ok, COALESCE(detail, '') FROM actions WHERE ts>=? AND ts<? ORDER BY ts, id`, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Action
	for rows.Next() {
		var a Action
		var ts int64
		var ok int
		if err := rows.Scan(&a.TaskID, &ts, &a.Kind, &a.Handle, &a.TweetID, &ok, &a.Detail); err != nil {
			return nil, err
		}
		a.TS = time.Unix(0, ts).UTC()
		a.OK = ok == 1
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveCursor stores a polling cursor.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// LoadCursor returns a stored cursor, or "" if none was saved yet.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}
