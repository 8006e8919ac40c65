package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/qcanvas/internal/ir"
)

// CircuitSummary is a stored circuit without its gate list.
type CircuitSummary struct {
	ID        string
	NumQubits int
	GateCount int
	Name      string
	Seq       int64
}

// LoadCircuit reads the circuit stored under a fingerprint. opts are passed
// to ir.FromRecord, e.g. ir.WithCatalog for circuits using extended gates.
//
// Returns sql.ErrNoRows if not found.
func (s *Store) LoadCircuit(ctx context.Context, id string, opts ...ir.CircuitOption) (*ir.Circuit, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM circuits WHERE id = ?
	`, id).Scan(&record)
	if err != nil {
		return nil, err
	}
	return unmarshalRecord(record, opts...)
}

// ListCircuits returns all stored circuits ordered by seq.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListCircuits(ctx context.Context) ([]CircuitSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, num_qubits, gate_count, name, seq
		FROM circuits
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query circuits: %w", err)
	}
	defer rows.Close()

	circuits := []CircuitSummary{}
	for rows.Next() {
		var c CircuitSummary
		if err := rows.Scan(&c.ID, &c.NumQubits, &c.GateCount, &c.Name, &c.Seq); err != nil {
			return nil, fmt.Errorf("scan circuit: %w", err)
		}
		circuits = append(circuits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circuits: %w", err)
	}
	return circuits, nil
}

// ReadRun returns a single run by ID.
//
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// ListRuns returns all runs ordered by seq.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// RunsForCircuit returns the runs that took the circuit as input or
// produced it as output, ordered by seq.
func (s *Store) RunsForCircuit(ctx context.Context, circuitID string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_id = ? OR output_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, circuitID, circuitID)
}

const runColumns = `id, input_id, output_id, passes, gates_before, gates_after, depth_before, depth_after, seq`

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var passesJSON string
	err := row.Scan(
		&run.ID,
		&run.InputID,
		&run.OutputID,
		&passesJSON,
		&run.GatesBefore,
		&run.GatesAfter,
		&run.DepthBefore,
		&run.DepthAfter,
		&run.Seq,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Passes, err = unmarshalPasses(passesJSON)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}
