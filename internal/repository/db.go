package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS profiles (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	location        TEXT NOT NULL,
	method          TEXT NOT NULL,
	identifier_hmac TEXT NOT NULL UNIQUE,
	identifier_enc  TEXT NOT NULL,
	crop            TEXT NOT NULL,
	loan_status     TEXT NOT NULL,
	loan_amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
	email           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
)`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS profiles (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	location        TEXT NOT NULL,
	method          TEXT NOT NULL,
	identifier_hmac TEXT NOT NULL UNIQUE,
	identifier_enc  TEXT NOT NULL,
	crop            TEXT NOT NULL,
	loan_status     TEXT NOT NULL,
	loan_amount     REAL NOT NULL DEFAULT 0,
	email           TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
)`

// Open connects to the database and checks the connection
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer; also keeps a :memory: database alive across calls
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the tables if they are missing
func Migrate(ctx context.Context, db *sql.DB, driver string, logger *logrus.Logger) error {
	schema := schemaPostgres
	if driver == "sqlite" {
		schema = schemaSQLite
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.WithField("driver", driver).Info("Database schema is up to date")
	return nil
}

// isUniqueViolation understands both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
