package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rset-labs/campus-assist/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS answer_cache (
	question   TEXT PRIMARY KEY,
	answer     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_cache_expires_at ON answer_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the cached answer for question, or nil when there is no
// live entry.
func (s *SQLiteStore) Get(ctx context.Context, question string) (*CachedAnswer, error) {
	key := NormalizeKey(question)

	var answerJSON string
	var createdAt, expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT answer, created_at, expires_at FROM answer_cache WHERE question = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&answerJSON, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached answer")
	}

	var answer model.ChatAnswer
	if err := json.Unmarshal([]byte(answerJSON), &answer); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached answer")
	}

	return &CachedAnswer{
		Question:  key,
		Answer:    answer,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Set stores an answer under the normalized question for ttl.
func (s *SQLiteStore) Set(ctx context.Context, question string, answer model.ChatAnswer, ttl time.Duration) error {
	key := NormalizeKey(question)

	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal answer")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO answer_cache (question, answer, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(question) DO UPDATE SET answer = excluded.answer, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, string(answerJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached answer")
}

// Purge deletes expired entries and reports how many were removed.
func (s *SQLiteStore) Purge(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM answer_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge rows affected")
	}
	return int(n), nil
}
