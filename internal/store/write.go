package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/qcanvas/internal/ir"
	"github.com/roach88/qcanvas/internal/stats"
)

// Run is one recorded optimization.
type Run struct {
	ID          string
	InputID     string
	OutputID    string
	Passes      []string
	GatesBefore int
	GatesAfter  int
	DepthBefore int
	DepthAfter  int
	Seq         int64
}

// SaveCircuit stores c under its fingerprint and returns the fingerprint.
// Uses ON CONFLICT(id) DO NOTHING: saving an identical circuit again keeps
// the first row and its seq.
func (s *Store) SaveCircuit(ctx context.Context, c *ir.Circuit) (string, error) {
	id, err := saveCircuit(ctx, s.db, s.clock, c)
	if err != nil {
		return "", fmt.Errorf("save circuit: %w", err)
	}
	return id, nil
}

// execer is the part of *sql.DB and *sql.Tx that saveCircuit needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveCircuit(ctx context.Context, db execer, clock Clock, c *ir.Circuit) (string, error) {
	id, err := c.Fingerprint()
	if err != nil {
		return "", err
	}
	record, err := marshalRecord(c)
	if err != nil {
		return "", err
	}
	var name string
	if m, ok := c.Metadata(); ok {
		name = m.Name
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO circuits
		(id, num_qubits, gate_count, name, record, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		c.NumQubits(),
		c.Len(),
		name,
		record,
		clock.Next(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordRun stores both circuits and a run linking them, in one
// transaction. Depths come from cached stats when present.
func (s *Store) RecordRun(ctx context.Context, input, output *ir.Circuit, passes []string) (Run, error) {
	passesJSON, err := marshalPasses(passes)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	inputID, err := saveCircuit(ctx, tx, s.clock, input)
	if err != nil {
		return Run{}, fmt.Errorf("record run: save input: %w", err)
	}
	outputID, err := saveCircuit(ctx, tx, s.clock, output)
	if err != nil {
		return Run{}, fmt.Errorf("record run: save output: %w", err)
	}

	run := Run{
		ID:          s.ids.Generate(),
		InputID:     inputID,
		OutputID:    outputID,
		Passes:      append([]string{}, passes...),
		GatesBefore: input.Len(),
		GatesAfter:  output.Len(),
		DepthBefore: depthOf(input),
		DepthAfter:  depthOf(output),
		Seq:         s.clock.Next(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, input_id, output_id, passes, gates_before, gates_after, depth_before, depth_after, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.InputID,
		run.OutputID,
		passesJSON,
		run.GatesBefore,
		run.GatesAfter,
		run.DepthBefore,
		run.DepthAfter,
		run.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	slog.Debug("recorded run", "id", run.ID, "input", inputID, "output", outputID, "seq", run.Seq)
	return run, nil
}

func depthOf(c *ir.Circuit) int {
	if s, ok := c.Stats(); ok {
		return s.Depth
	}
	return stats.Depth(c)
}
