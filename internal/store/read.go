package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/casebook/internal/harness"
	"github.com/roach88/casebook/internal/ir"
)

// ErrNoRuns is returned by LatestRun when the store is empty.
var ErrNoRuns = errors.New("no runs recorded")

// Run is the summary row of one suite execution.
type Run struct {
	ID     string `json:"id"`
	Suite  string `json:"suite"`
	Pass   bool   `json:"pass"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

// InvocationRow is a stored invocation.
type InvocationRow struct {
	ID       string    `json:"id"`
	Scenario string    `json:"scenario"`
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Params   ir.Record `json:"params"`
}

// Report is everything stored for one run.
type Report struct {
	Run         Run                  `json:"run"`
	Invocations []InvocationRow      `json:"invocations"`
	Trace       []harness.TraceEvent `json:"trace"`
}

// LatestRun returns the ID of the most recently written run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return id, nil
}

// ReadReport loads a run with its invocations and trace.
//
// Returns empty slices (not nil) when the run has no rows.
func (s *Store) ReadReport(ctx context.Context, runID string) (*Report, error) {
	run, err := s.readRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	invs, err := s.QueryInvocations(ctx, runID, nil)
	if err != nil {
		return nil, err
	}
	trace, err := s.QueryEvents(ctx, runID, nil)
	if err != nil {
		return nil, err
	}
	return &Report{Run: run, Invocations: invs, Trace: trace}, nil
}

func (s *Store) readRun(ctx context.Context, runID string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, suite, pass, passed, failed FROM runs WHERE id = ?
	`, runID).Scan(&r.ID, &r.Suite, &r.Pass, &r.Passed, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run %s: %w", runID, err)
	}
	return r, nil
}

// QueryInvocations returns the invocations of a run matching filter, in
// materialization order.
func (s *Store) QueryInvocations(ctx context.Context, runID string, filter Predicate) ([]InvocationRow, error) {
	where, args, err := compileWhere(filter, invocationColumns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, idx, title, params
		FROM invocations
		WHERE run_id = ? AND `+where+`
		ORDER BY ord ASC
	`, append([]any{runID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	out := []InvocationRow{}
	for rows.Next() {
		var row InvocationRow
		var params string
		if err := rows.Scan(&row.ID, &row.Scenario, &row.Index, &row.Title, &params); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		if row.Params, err = unmarshalParams(params); err != nil {
			return nil, fmt.Errorf("invocation %s: %w", row.ID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return out, nil
}

// QueryEvents returns the trace events of a run matching filter, in seq
// order.
func (s *Store) QueryEvents(ctx context.Context, runID string, filter Predicate) ([]harness.TraceEvent, error) {
	where, args, err := compileWhere(filter, eventColumns)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, type, title, error
		FROM events
		WHERE run_id = ? AND `+where+`
		ORDER BY seq ASC
	`, append([]any{runID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []harness.TraceEvent{}
	for rows.Next() {
		var ev harness.TraceEvent
		if err := rows.Scan(&ev.Seq, &ev.Type, &ev.Title, &ev.Error); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
