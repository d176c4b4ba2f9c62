package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/scenario"
)

// WriteRun stores a harness result and the invocations it executed in a
// single transaction. Rows are idempotent: writing the same run twice is
// a no-op (ON CONFLICT DO NOTHING).
func (s *Store) WriteRun(ctx context.Context, suite string, res *harness.Result, invs []scenario.Invocation) error {
	if res == nil {
		return fmt.Errorf("write run: nil result")
	}
	if res.RunID == "" {
		return fmt.Errorf("write run: empty run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, pass, passed, failed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, res.RunID, suite, res.Pass, res.Passed, res.Failed); err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	if err := writeInvocations(ctx, tx, res.RunID, invs); err != nil {
		return err
	}
	if err := writeEvents(ctx, tx, res.RunID, res.Trace); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.RunID, err)
	}
	return nil
}

func writeInvocations(ctx context.Context, tx *sql.Tx, runID string, invs []scenario.Invocation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO invocations (run_id, id, ord, scenario, idx, title, params)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare invocation insert: %w", err)
	}
	defer stmt.Close()

	for ord, inv := range invs {
		params, err := marshalParams(inv.Params)
		if err != nil {
			return fmt.Errorf("invocation %s: %w", inv.ID, err)
		}
		name := ""
		if inv.Scenario != nil {
			name = inv.Scenario.Name()
		}
		if _, err := stmt.ExecContext(ctx, runID, inv.ID, ord, name, inv.Index, inv.Title, params); err != nil {
			return fmt.Errorf("insert invocation %s: %w", inv.ID, err)
		}
	}
	return nil
}

func writeEvents(ctx context.Context, tx *sql.Tx, runID string, trace []harness.TraceEvent) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, type, title, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range trace {
		if _, err := stmt.ExecContext(ctx, runID, ev.Seq, ev.Type, ev.Title, ev.Error); err != nil {
			return fmt.Errorf("insert event %d: %w", ev.Seq, err)
		}
	}
	return nil
}
