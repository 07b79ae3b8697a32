package storage

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrEmailTaken  = errors.New("email already registered")
	ErrJobNotFound = errors.New("job not found")
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Tables lists the schema's table names, for the status endpoint.
func (s *Storage) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`

	var tables []string
	if err := s.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, err
	}
	return tables, nil
}

// EnsureSchema creates the tables on startup. The UNIQUE constraint on
// users.email is the single source of truth for duplicate registration;
// there is no check-then-insert.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'owner',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			organization TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			address TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			scheduled_at TEXT,
			technician TEXT,
			created_by TEXT NOT NULL,
			organization TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			unit_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			location TEXT,
			organization TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
