package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizmaster/internal/domain"
	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store persists records in a single SQLite file, one row per key.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the kv table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store, err := NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an already opened database.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := sqlBuilder.Select("value").From("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	query, args, err := sqlBuilder.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, value, s.now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := sqlBuilder.Delete("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
