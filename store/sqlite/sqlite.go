// Package sqlite is a VoteStore backed by a local SQLite file. The UNIQUE
// constraint on email gives insert-if-absent semantics.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"school-vote/logger"
	"school-vote/models"
	"school-vote/store"
)

var _ store.VoteStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS votes (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    vote          TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open creates the parent directory, opens the database with the server
// PRAGMAs and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "./data/votes.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)
	return open(ctx, dsn)
}

func open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) InsertVote(ctx context.Context, rec models.VoteRecord) (string, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO votes(id, email, name, vote, created_at_ms) VALUES (?, ?, ?, ?, ?);
`, id, rec.Email, rec.Name, rec.Vote, rec.Timestamp.UTC().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrDuplicateVote
		}
		return "", fmt.Errorf("InsertVote: %w", err)
	}
	return id, nil
}

func (s *Store) QueryByEmail(ctx context.Context, email string) ([]models.VoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, email, name, vote, created_at_ms FROM votes WHERE email = ?;
`, email)
	if err != nil {
		return nil, fmt.Errorf("QueryByEmail: %w", err)
	}
	return scanRecords(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]models.VoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, email, name, vote, created_at_ms FROM votes;
`)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return scanRecords(rows)
}

func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM votes;`)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteAll rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("DeleteAll commit: %w", err)
	}
	return int(n), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]models.VoteRecord, error) {
	defer rows.Close()

	out := []models.VoteRecord{}
	for rows.Next() {
		var (
			rec       models.VoteRecord
			createdMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.Vote, &createdMs); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		rec.Timestamp = time.UnixMilli(createdMs).UTC()
		if !store.Valid(rec) {
			logger.Warn.Printf("sqlite: quarantined malformed vote row id=%s", rec.ID)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
