package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run record. Run ids are primary keys: writing the same
// id twice is an error, unlike trigger and period records which are
// idempotent.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: empty id")
	}
	optionsJSON, err := marshalOptions(run.Options)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, mode, wiring_hash, wiring, options, presses, target, answer,
		 low, high, looped, loop_start, loop_length, engine_version, state_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.Mode),
		run.WiringHash,
		run.Wiring,
		optionsJSON,
		run.Presses,
		run.Target,
		run.Answer,
		run.Low,
		run.High,
		boolToInt(run.Looped),
		run.LoopStart,
		run.LoopLength,
		run.EngineVersion,
		run.StateVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteTrigger inserts one trigger record for a run.
// Uses ON CONFLICT DO NOTHING for idempotency - a duplicate press is
// silently ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteTrigger(ctx context.Context, runID string, rec TriggerRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO triggers (run_id, press, low, high, state_digest)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, press) DO NOTHING
	`, runID, rec.Press, rec.Low, rec.High, rec.StateDigest)
	if err != nil {
		return fmt.Errorf("write trigger: %w", err)
	}
	return nil
}

// WriteTriggers inserts trigger records in one transaction. A loop can be
// thousands of presses long; one transaction per press would dominate the
// run time.
func (s *Store) WriteTriggers(ctx context.Context, runID string, recs []TriggerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write triggers: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triggers (run_id, press, low, high, state_digest)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, press) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write triggers: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, runID, rec.Press, rec.Low, rec.High, rec.StateDigest); err != nil {
			return fmt.Errorf("write triggers: press %d: %w", rec.Press, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write triggers: commit: %w", err)
	}
	return nil
}

// WritePeriods inserts the edge periods of a converge run in one
// transaction. Duplicate edges are silently ignored.
func (s *Store) WritePeriods(ctx context.Context, runID string, recs []PeriodRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write periods: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, rec := range recs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO periods (run_id, source, destination, period)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(run_id, source, destination) DO NOTHING
		`, runID, rec.Edge.From, rec.Edge.To, rec.Period)
		if err != nil {
			return fmt.Errorf("write periods: %s: %w", rec.Edge, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write periods: commit: %w", err)
	}
	return nil
}
