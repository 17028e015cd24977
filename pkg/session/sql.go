// Copyright 2026 The AlpineAI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQL drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createSessionsSchemaSQL = `
CREATE TABLE IF NOT EXISTS agent_sessions (
    session_key VARCHAR(512) PRIMARY KEY,
    blob TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// SQLRepository implements Repository over database/sql. Concurrency is
// handled by database-level locking.
type SQLRepository struct {
	db      *sql.DB
	dialect string
}

// NewSQLRepository wraps an open database connection. Supported dialects:
// postgres, mysql, sqlite. The schema is created if missing.
func NewSQLRepository(db *sql.DB, dialect string) (*SQLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	switch dialect {
	case "postgres", "mysql", "sqlite", "sqlite3":
		if dialect == "sqlite3" {
			dialect = "sqlite"
		}
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (supported: postgres, mysql, sqlite)", dialect)
	}

	r := &SQLRepository{db: db, dialect: dialect}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

// Open opens a database connection for the dialect/DSN pair and wraps it.
func Open(dialect, dsn string) (*SQLRepository, error) {
	driver := dialect
	switch dialect {
	case "sqlite":
		driver = "sqlite3"
	case "postgres", "mysql", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (supported: postgres, mysql, sqlite)", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	return NewSQLRepository(db, dialect)
}

func (r *SQLRepository) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, createSessionsSchemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema statement: %w", err)
	}
	return nil
}

func (r *SQLRepository) Read(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT blob FROM agent_sessions WHERE session_key = ?`
	if r.dialect == "postgres" {
		query = convertToPostgresPlaceholders(query)
	}

	var blob string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}
	return []byte(blob), nil
}

func (r *SQLRepository) Write(ctx context.Context, key string, blob []byte) error {
	if _, err := r.db.ExecContext(ctx, r.upsertQuery(), key, string(blob), time.Now()); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (r *SQLRepository) upsertQuery() string {
	switch r.dialect {
	case "postgres":
		return `INSERT INTO agent_sessions (session_key, blob, updated_at)
                VALUES ($1, $2, $3)
                ON CONFLICT (session_key) DO UPDATE SET blob = $2, updated_at = $3`
	case "mysql":
		return `INSERT INTO agent_sessions (session_key, blob, updated_at)
                VALUES (?, ?, ?)
                ON DUPLICATE KEY UPDATE blob = VALUES(blob), updated_at = VALUES(updated_at)`
	default: // sqlite
		return `INSERT INTO agent_sessions (session_key, blob, updated_at)
                VALUES (?, ?, ?)
                ON CONFLICT (session_key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`
	}
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// convertToPostgresPlaceholders rewrites ? placeholders as $1, $2, ...
func convertToPostgresPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 20)
	paramNum := 1
	for _, c := range query {
		if c == '?' {
			b.WriteString(fmt.Sprintf("$%d", paramNum))
			paramNum++
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

var _ Repository = (*SQLRepository)(nil)
