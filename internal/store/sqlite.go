package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/coachtui/woflo/internal/model"
)

// Kind names a record collection.
type Kind string

const (
	KindScheduleRun  Kind = "schedule_run"
	KindScheduleItem Kind = "schedule_item"
	KindWorkOrder    Kind = "work_order"
	KindTask         Kind = "task"
	KindJob          Kind = "job"
)

// Record is one stored entity. Body is the entity's JSON form; Status and
// ParentID are copied out of it so they can be filtered on.
type Record struct {
	Kind      Kind
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    string
	ParentID  string
	Body      json.RawMessage
}

type Filter struct {
	Status   *string
	ParentID *string
	Limit    int
}

type Patch struct {
	Status *string
	Body   json.RawMessage
}

type SQLite struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path. ":memory:" gives
// a private in-memory store.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS records (
  kind TEXT NOT NULL,
  id TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT '',
  parent_id TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS records_parent ON records (kind, parent_id);
`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (kind, id, created_at, updated_at, status, parent_id, body)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind),
		rec.ID,
		rec.CreatedAt.UnixMilli(),
		rec.UpdatedAt.UnixMilli(),
		rec.Status,
		rec.ParentID,
		string(rec.Body),
	)
	return errors.Wrapf(err, "insert %s %s", rec.Kind, rec.ID)
}

func (s *SQLite) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, id, created_at, updated_at, status, parent_id, body
       FROM records WHERE kind = ? AND id = ?`, string(kind), id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, model.ErrNotFound
	}
	return rec, err
}

// List returns records of one kind, newest first.
func (s *SQLite) List(ctx context.Context, kind Kind, f Filter) ([]Record, error) {
	query := `SELECT kind, id, created_at, updated_at, status, parent_id, body
       FROM records WHERE kind = ?`
	args := []any{string(kind)}
	if f.Status != nil {
		query += " AND status = ?"
		args = append(args, *f.Status)
	}
	if f.ParentID != nil {
		query += " AND parent_id = ?"
		args = append(args, *f.ParentID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Update(ctx context.Context, kind Kind, id string, patch Patch) error {
	var body any
	if patch.Body != nil {
		body = string(patch.Body)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records
         SET updated_at = ?,
             status = COALESCE(?, status),
             body = COALESCE(?, body)
         WHERE kind = ? AND id = ?`,
		time.Now().UnixMilli(),
		nullableString(patch.Status),
		body,
		string(kind),
		id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *SQLite) Count(ctx context.Context, kind Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE kind = ?`, string(kind)).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		kind, id, status, parent, body string
		createdMs, updatedMs           int64
	)
	if err := row.Scan(&kind, &id, &createdMs, &updatedMs, &status, &parent, &body); err != nil {
		return Record{}, err
	}
	return Record{
		Kind:      Kind(kind),
		ID:        id,
		CreatedAt: time.UnixMilli(createdMs).UTC(),
		UpdatedAt: time.UnixMilli(updatedMs).UTC(),
		Status:    status,
		ParentID:  parent,
		Body:      json.RawMessage(body),
	}, nil
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
