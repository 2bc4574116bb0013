// Package store persists a completed dispatch run to Postgres, grounded
// on the teacher's scheduler.saveMPCDecisions: a delete-then-insert
// transaction driven by a single prepared upsert statement.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ebp-rad/h2dispatch/result"
)

// Store wraps a Postgres connection for run persistence.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres using the given DSN.
func Open(connString string) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("store: open connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a result table and its objective value under runID,
// replacing any previously stored rows for that run.
func (s *Store) SaveRun(ctx context.Context, runID string, table *result.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dispatch_runs WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("store: delete existing run rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dispatch_run_summary (run_id, objective_value)
		VALUES ($1, $2)
		ON CONFLICT (run_id) DO UPDATE SET objective_value = EXCLUDED.objective_value
	`, runID, table.ObjectiveValue); err != nil {
		return fmt.Errorf("store: upsert run summary: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dispatch_runs (
			run_id, datetime, da_price, h2_price, g_ppa_avail, v,
			e_ely, g_ppa_used, b_grid, s_sell, h_prod, u
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id, datetime) DO UPDATE SET
			da_price = EXCLUDED.da_price,
			h2_price = EXCLUDED.h2_price,
			g_ppa_avail = EXCLUDED.g_ppa_avail,
			v = EXCLUDED.v,
			e_ely = EXCLUDED.e_ely,
			g_ppa_used = EXCLUDED.g_ppa_used,
			b_grid = EXCLUDED.b_grid,
			s_sell = EXCLUDED.s_sell,
			h_prod = EXCLUDED.h_prod,
			u = EXCLUDED.u
	`)
	if err != nil {
		return fmt.Errorf("store: prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range table.Datetime {
		_, err := stmt.ExecContext(ctx,
			runID,
			table.Datetime[i],
			table.DAPrice[i],
			table.H2Price[i],
			table.GPPAAvail[i],
			table.V[i],
			table.EEly[i],
			table.GPPAUsed[i],
			table.BGrid[i],
			table.SSell[i],
			table.HProd[i],
			table.U[i],
		)
		if err != nil {
			return fmt.Errorf("store: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

// LoadRun reads back a previously stored run's objective value.
func (s *Store) LoadRun(ctx context.Context, runID string) (objectiveValue float64, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT objective_value FROM dispatch_run_summary WHERE run_id = $1`, runID)
	if err := row.Scan(&objectiveValue); err != nil {
		return 0, fmt.Errorf("store: load run summary: %w", err)
	}
	return objectiveValue, nil
}
