package store

import (
	"context"
	"fmt"
)

// RunLog is everything journaled for one run.
type RunLog struct {
	Run      Run
	Triggers []TriggerRecord
	Periods  []PeriodRecord
}

// LoadRunLog reads a run together with its trigger and period records.
func (s *Store) LoadRunLog(ctx context.Context, id string) (RunLog, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return RunLog{}, err
	}

	triggers, err := s.ReadTriggers(ctx, id)
	if err != nil {
		return RunLog{}, fmt.Errorf("load run log: %w", err)
	}

	periods, err := s.ReadPeriods(ctx, id)
	if err != nil {
		return RunLog{}, fmt.Errorf("load run log: %w", err)
	}

	return RunLog{Run: run, Triggers: triggers, Periods: periods}, nil
}
