// Package store implements PostgreSQL persistence for validation runs
// and their accepted customers, backed by pgx.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WalissonCM/Validacao-de-Dados/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store persists validation runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id          UUID PRIMARY KEY,
	file_name   TEXT NOT NULL,
	total_rows  INTEGER NOT NULL,
	valid_rows  INTEGER NOT NULL,
	error_rows  INTEGER NOT NULL,
	error_count INTEGER NOT NULL,
	report      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	run_id         UUID NOT NULL REFERENCES validation_runs(id) ON DELETE CASCADE,
	row_number     INTEGER NOT NULL,
	name           TEXT NOT NULL,
	national_id    TEXT NOT NULL,
	email          TEXT NOT NULL,
	contract_value NUMERIC(15,2) NOT NULL,
	age            INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_run_id ON customers(run_id);
CREATE INDEX IF NOT EXISTS idx_validation_runs_created_at ON validation_runs(created_at DESC);
`

// EnsureSchema creates the tables and indexes if they do not exist.
// Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertRun stores a run and its accepted customers in one transaction.
// Either everything is persisted or nothing is.
func (s *Store) InsertRun(ctx context.Context, run core.Run, valid []core.ValidRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO validation_runs (id, file_name, total_rows, valid_rows, error_rows, error_count, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		toPgUUID(run.ID), toPgText(run.FileName),
		run.TotalRows, run.ValidRows, run.ErrorRows, run.ErrorCount,
		run.Report, pgtype.Timestamptz{Time: run.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, rec := range valid {
		c := rec.Customer
		_, err = tx.Exec(ctx, `
			INSERT INTO customers (run_id, row_number, name, national_id, email, contract_value, age)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			toPgUUID(run.ID), rec.Row,
			toPgText(c.Name), toPgText(c.NationalID), toPgText(c.Email),
			c.ContractValue, c.Age,
		)
		if err != nil {
			return fmt.Errorf("insert customer (row %d): %w", rec.Row, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun returns one run by ID, including its stored report.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (core.Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, file_name, total_rows, valid_rows, error_rows, error_count, report, created_at
		FROM validation_runs
		WHERE id = $1`,
		toPgUUID(id),
	)

	run, err := scanRun(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.Run{}, fmt.Errorf("run %s not found", id)
		}
		return core.Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. The stored
// report text is not loaded here; use GetRun for the full artifact.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, file_name, total_rows, valid_rows, error_rows, error_count, '', created_at
		FROM validation_runs
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []core.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// CustomersByRun returns the accepted customers of a run, in input row order.
func (s *Store) CustomersByRun(ctx context.Context, id uuid.UUID) ([]core.Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, national_id, email, contract_value, age
		FROM customers
		WHERE run_id = $1
		ORDER BY row_number`,
		toPgUUID(id),
	)
	if err != nil {
		return nil, fmt.Errorf("customers by run: %w", err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.Name, &c.NationalID, &c.Email, &c.ContractValue, &c.Age); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customers by run: %w", err)
	}
	return customers, nil
}

// scanRun reads one validation_runs row.
func scanRun(row pgx.Row) (core.Run, error) {
	var (
		run core.Run
		id  pgtype.UUID
		ts  pgtype.Timestamptz
	)
	err := row.Scan(&id, &run.FileName, &run.TotalRows, &run.ValidRows,
		&run.ErrorRows, &run.ErrorCount, &run.Report, &ts)
	if err != nil {
		return core.Run{}, err
	}
	run.ID = uuid.UUID(id.Bytes)
	run.CreatedAt = ts.Time
	return run, nil
}

// toPgUUID converts a google/uuid UUID to pgtype.UUID.
func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// toPgText converts a string to pgtype.Text.
// Empty strings are stored as empty text, not NULL; the validator
// guarantees required fields are non-empty before they reach here.
func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}
