// Package synclog records dataset sync runs in a local sqlite database so
// `status` can show what happened on previous invocations.
package synclog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded sync run.
type Entry struct {
	ID          int64
	Dataset     string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	RowsSynced  int64
	Error       string
}

// Log provides read/write access to the sync_log table.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the sync log database at the given path and
// configures WAL mode.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "synclog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "synclog: exec %s", pragma)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS sync_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME,
	rows_synced  INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_log_dataset ON sync_log(dataset);
CREATE INDEX IF NOT EXISTS idx_sync_log_started_at ON sync_log(started_at);
`

func (l *Log) migrate() error {
	_, err := l.db.Exec(migration)
	return eris.Wrap(err, "synclog: migrate")
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a sync run and returns its id.
func (l *Log) Start(ctx context.Context, dataset string) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO sync_log (dataset, status, started_at) VALUES (?, 'running', ?)`,
		dataset, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "synclog: start sync for %s", dataset)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "synclog: last insert id")
	}
	return id, nil
}

// Complete marks a sync run as successfully completed.
func (l *Log) Complete(ctx context.Context, syncID int64, rowsSynced int64) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE sync_log SET status = 'complete', completed_at = ?, rows_synced = ? WHERE id = ?`,
		time.Now().UTC(), rowsSynced, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: complete sync %d", syncID)
	}
	return nil
}

// Fail marks a sync run as failed with an error message.
func (l *Log) Fail(ctx context.Context, syncID int64, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE sync_log SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), errMsg, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "synclog: fail sync %d", syncID)
	}
	return nil
}

// LastSuccess returns the started_at time of the most recent successful sync
// for a dataset, or nil if it has never synced successfully.
func (l *Log) LastSuccess(ctx context.Context, dataset string) (*time.Time, error) {
	var t time.Time
	err := l.db.QueryRowContext(ctx,
		`SELECT started_at FROM sync_log
		 WHERE dataset = ? AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		dataset,
	).Scan(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "synclog: last success for %s", dataset)
	}
	return &t, nil
}

// ListAll returns all sync log entries, most recent first.
func (l *Log) ListAll(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, dataset, status, started_at, completed_at, rows_synced, error
		 FROM sync_log ORDER BY started_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "synclog: list all")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		var completedAt sql.NullTime
		var errStr sql.NullString
		if err := rows.Scan(&e.ID, &e.Dataset, &e.Status, &e.StartedAt, &completedAt, &e.RowsSynced, &errStr); err != nil {
			return nil, eris.Wrap(err, "synclog: scan entry")
		}
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		if errStr.Valid {
			e.Error = errStr.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
