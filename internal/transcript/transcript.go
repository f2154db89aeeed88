// Package transcript persists decoded characters to SQLite so a session's
// text survives restarts and can be shown on the status page.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/morse-key/internal/logic"
	_ "modernc.org/sqlite"
)

// Entry kinds mirror the engine events that change the display.
const (
	KindChar    = "CHAR"
	KindInvalid = "INVALID"
	KindClear   = "CLEAR"
)

// Entry is one stored transcript row.
type Entry struct {
	ID      int64
	Session uuid.UUID
	Time    time.Time
	Kind    string
	Char    string
	Pattern string
}

// FromEvent converts an engine event. ok is false for events that do not
// change the display.
func FromEvent(session uuid.UUID, at time.Time, event logic.Event) (e Entry, ok bool) {
	e = Entry{Session: session, Time: at.UTC(), Pattern: event.Pattern}
	switch event.Type {
	case logic.EventChar:
		e.Kind = KindChar
	case logic.EventInvalid:
		e.Kind = KindInvalid
	case logic.EventClear:
		e.Kind = KindClear
		return e, true
	default:
		return Entry{}, false
	}
	e.Char = string(event.Char)
	return e, true
}

// Store is a SQLite-backed transcript.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create transcript directory: %w", err)
		}
		// modernc.org/sqlite uses _pragma=name(value) syntax
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	// Single connection: an in-memory database is per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect transcript: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate transcript: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS transcript (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	ts_unix_ms INTEGER NOT NULL,
	kind       TEXT    NOT NULL,
	char       TEXT    NOT NULL DEFAULT '',
	pattern    TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript(session_id, id);
`)
	return err
}

// Record appends an entry and returns its row ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transcript (session_id, ts_unix_ms, kind, char, pattern) VALUES (?, ?, ?, ?, ?)`,
		e.Session.String(), e.Time.UnixMilli(), e.Kind, e.Char, e.Pattern)
	if err != nil {
		return 0, fmt.Errorf("record %s: %w", e.Kind, err)
	}
	return res.LastInsertId()
}

// Recent returns the last n entries across all sessions, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, ts_unix_ms, kind, char, pattern FROM (
	SELECT * FROM transcript ORDER BY id DESC LIMIT ?
) ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scan(rows)
}

// Session returns every entry for one session, oldest first.
func (s *Store) Session(ctx context.Context, session uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, ts_unix_ms, kind, char, pattern FROM transcript
WHERE session_id = ? ORDER BY id ASC`, session.String())
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()
	return scan(rows)
}

func scan(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			sid string
			ms  int64
		)
		if err := rows.Scan(&e.ID, &sid, &ms, &e.Kind, &e.Char, &e.Pattern); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		id, err := uuid.Parse(sid)
		if err != nil {
			return nil, fmt.Errorf("parse session %q: %w", sid, err)
		}
		e.Session = id
		e.Time = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Text renders entries as the display would have shown them: characters
// accumulate and a clear discards everything before it.
func Text(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		switch e.Kind {
		case KindClear:
			sb.Reset()
		default:
			sb.WriteString(e.Char)
		}
	}
	return sb.String()
}

// Close closes the database. It is safe to call Close multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
