package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS refreshes (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	at      TEXT NOT NULL,
	mode    TEXT NOT NULL,
	ok      INTEGER NOT NULL,
	r       INTEGER,
	g       INTEGER,
	b       INTEGER,
	message TEXT,
	error   TEXT
);
CREATE INDEX IF NOT EXISTS idx_refreshes_mode ON refreshes(mode);
`

// Store is an append-only sqlite log of refresh outcomes. The hub only
// ever writes to it; reading is for the debug CLI and sqlite3 by hand.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one refresh outcome. Failed refreshes carry the error
// text and no color columns.
func (s *Store) Append(mode string, status *model.AmbientStatus, fetchErr error, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)

	var err error
	if fetchErr != nil {
		_, err = s.db.Exec(
			`INSERT INTO refreshes (at, mode, ok, error) VALUES (?, ?, 0, ?)`,
			ts, mode, fetchErr.Error(),
		)
	} else {
		_, err = s.db.Exec(
			`INSERT INTO refreshes (at, mode, ok, r, g, b, message) VALUES (?, ?, 1, ?, ?, ?, ?)`,
			ts, mode, status.Color.R, status.Color.G, status.Color.B, status.Message,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to append journal row: %w", err)
	}
	return nil
}

type Row struct {
	ID     int64
	At     time.Time
	Mode   string
	OK     bool
	Status *model.AmbientStatus
	Error  string
}

// Tail returns the newest n rows, newest first.
func (s *Store) Tail(n int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT id, at, mode, ok, r, g, b, message, error FROM refreshes ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row     Row
			ts      string
			r, g, b sql.NullInt64
			message sql.NullString
			errText sql.NullString
		)
		if err := rows.Scan(&row.ID, &ts, &row.Mode, &row.OK, &r, &g, &b, &message, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if row.At, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("failed to parse journal timestamp %q: %w", ts, err)
		}
		if row.OK {
			row.Status = &model.AmbientStatus{
				Color:   model.Color{R: uint8(r.Int64), G: uint8(g.Int64), B: uint8(b.Int64)},
				Message: message.String,
			}
		}
		row.Error = errText.String
		out = append(out, row)
	}
	return out, rows.Err()
}
