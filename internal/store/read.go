package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// ErrRunNotFound is returned by ReadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, mode, wiring_hash, wiring, options, presses, target, answer,
	low, high, looped, loop_start, loop_length, engine_version, state_version`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run         Run
		mode        string
		optionsJSON string
		looped      int
	)
	err := row.Scan(
		&run.ID,
		&mode,
		&run.WiringHash,
		&run.Wiring,
		&optionsJSON,
		&run.Presses,
		&run.Target,
		&run.Answer,
		&run.Low,
		&run.High,
		&looped,
		&run.LoopStart,
		&run.LoopLength,
		&run.EngineVersion,
		&run.StateVersion,
	)
	if err != nil {
		return Run{}, err
	}

	run.Mode = Mode(mode)
	run.Looped = looped != 0
	run.Options, err = unmarshalOptions(optionsJSON)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}

// ReadRun returns the run with the given id.
// Returns ErrRunNotFound (wrapped) if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run ordered by id.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadTriggers returns the trigger records of a run ordered by press.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadTriggers(ctx context.Context, runID string) ([]TriggerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT press, low, high, state_digest
		FROM triggers
		WHERE run_id = ?
		ORDER BY press ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()

	recs := []TriggerRecord{}
	for rows.Next() {
		var rec TriggerRecord
		if err := rows.Scan(&rec.Press, &rec.Low, &rec.High, &rec.StateDigest); err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triggers: %w", err)
	}
	return recs, nil
}

// ReadPeriods returns the period records of a run ordered by edge.
//
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadPeriods(ctx context.Context, runID string) ([]PeriodRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, destination, period
		FROM periods
		WHERE run_id = ?
		ORDER BY source COLLATE BINARY ASC, destination COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	recs := []PeriodRecord{}
	for rows.Next() {
		var (
			rec  PeriodRecord
			edge ir.Edge
		)
		if err := rows.Scan(&edge.From, &edge.To, &rec.Period); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		rec.Edge = edge
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return recs, nil
}
