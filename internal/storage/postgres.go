package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime.
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations.
	DefaultPingTimeout = 5 * time.Second
)

// PostgresConfig holds connection settings for the Postgres-backed store.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore implements Store over a single jsonb documents table. Each
// document is still written whole: the port keeps its load/mutate/save
// semantics regardless of backend.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to Postgres and ensures the documents table
// exists.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	return NewPostgresStoreDSN(dsn)
}

// NewPostgresStoreDSN connects using a raw connection string.
func NewPostgresStoreDSN(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	store := &PostgresStore{db: db}
	if migrateErr := store.ensureTable(ctx); migrateErr != nil {
		return nil, migrateErr
	}

	return store, nil
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS documents (
			key        TEXT PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

// Load reads the document for key into v.
func (s *PostgresStore) Load(ctx context.Context, key string, v any) error {
	var body []byte
	err := s.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load document %q: %w", key, err)
	}

	if unmarshalErr := json.Unmarshal(body, v); unmarshalErr != nil {
		return ErrNotFound
	}
	return nil
}

// Save replaces the document for key with v.
func (s *PostgresStore) Save(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}

	const query = `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`
	if _, execErr := s.db.ExecContext(ctx, query, key, body); execErr != nil {
		return fmt.Errorf("save document %q: %w", key, execErr)
	}
	return nil
}

// Delete removes the document for key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

// Keys lists all stored document keys.
func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, `SELECT key FROM documents ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list document keys: %w", err)
	}
	return keys, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
