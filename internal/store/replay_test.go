package store

import (
	"context"
	"errors"
	"testing"
)

func TestLoadRunLog(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1")); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	recs := []TriggerRecord{
		{Press: 1, Low: 2, High: 1, StateDigest: "d1"},
		{Press: 2, Low: 3, High: 1, StateDigest: "d2"},
	}
	if err := s.WriteTriggers(ctx, "run-1", recs); err != nil {
		t.Fatalf("WriteTriggers() failed: %v", err)
	}

	log, err := s.LoadRunLog(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRunLog() failed: %v", err)
	}
	if log.Run.ID != "run-1" {
		t.Errorf("Run.ID = %q, want run-1", log.Run.ID)
	}
	if len(log.Triggers) != 2 {
		t.Errorf("got %d triggers, want 2", len(log.Triggers))
	}
	if len(log.Periods) != 0 {
		t.Errorf("got %d periods, want 0", len(log.Periods))
	}
}

func TestLoadRunLog_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadRunLog(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadRunLog() error = %v, want ErrRunNotFound", err)
	}
}
