// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package postgres implements view.Store against PostgreSQL via pgx,
// in the manner of the corpus's pgxpool-backed session store: one
// pool, one table per concern, parameterized queries, row data kept as
// JSON where a fixed relational schema buys nothing. Rows across every
// collection share one table (collection, key) so the six typed
// collections of view.View need no per-collection DDL, and the ORDER
// BY/equality-predicate access pattern spec §4.3 calls for a single
// index on (collection, key).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qalbehabib/syncbase/view"
)

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c *Config) connString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Store is a pgx-backed view.Store. Writes accumulate on an open
// transaction; Flush commits it and opens the next one, so a batch
// either lands in full or not at all.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// New connects to PostgreSQL, verifies the connection, ensures the
// backing table exists, and opens the first write transaction.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("view/postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("view/postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("view/postgres: migrate: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.beginTx(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS view_rows (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (collection, key)
);
`

func (s *Store) beginTx(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("view/postgres: begin: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (view.Row, error) {
	var data []byte
	err := s.tx.QueryRow(ctx,
		`SELECT data FROM view_rows WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, view.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("view/postgres: get: %w", err)
	}
	return unmarshalRow(data)
}

func (s *Store) FindOne(ctx context.Context, collection string, query view.Query) (view.Row, error) {
	rows, err := s.find(ctx, collection, query, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, view.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) Find(ctx context.Context, collection string, query view.Query) ([]view.Row, error) {
	return s.find(ctx, collection, query, 0)
}

func (s *Store) find(ctx context.Context, collection string, query view.Query, limit int) ([]view.Row, error) {
	// Equality filters apply client-side against the JSONB blob rather
	// than as SQL predicates, since collections have no fixed column
	// set; the row count per server instance keeps a full scan cheap.
	rows, err := s.tx.Query(ctx,
		`SELECT data FROM view_rows WHERE collection = $1 ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("view/postgres: find: %w", err)
	}
	defer rows.Close()

	var out []view.Row
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("view/postgres: scan: %w", err)
		}
		row, err := unmarshalRow(data)
		if err != nil {
			return nil, err
		}
		if !view.Matches(row, query) {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, collection, key string, row view.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("view/postgres: marshal row: %w", err)
	}
	_, err = s.tx.Exec(ctx,
		`INSERT INTO view_rows (collection, key, data) VALUES ($1, $2, $3)`,
		collection, key, data,
	)
	if isUniqueViolation(err) {
		return view.ErrPrimaryKeyConflict
	}
	if err != nil {
		return fmt.Errorf("view/postgres: insert: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	_, err := s.tx.Exec(ctx,
		`DELETE FROM view_rows WHERE collection = $1 AND key = $2`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("view/postgres: delete: %w", err)
	}
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("view/postgres: commit: %w", err)
	}
	return s.beginTx(ctx)
}

func (s *Store) Close() error {
	s.tx.Conn().Close(context.Background())
	s.pool.Close()
	return nil
}

func unmarshalRow(data []byte) (view.Row, error) {
	var row view.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("view/postgres: unmarshal row: %w", err)
	}
	return row, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
