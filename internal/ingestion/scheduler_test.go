package ingestion

import (
	"context"
	"testing"
)

type countingRunner struct{ calls int }

func (r *countingRunner) Run(context.Context) (Summary, error) {
	r.calls++
	return Summary{}, nil
}

func TestNewSchedulerRejectsInvalidSpec(t *testing.T) {
	if _, err := NewScheduler(&countingRunner{}, "every tuesday-ish"); err == nil {
		t.Fatalf("expected invalid schedule to be rejected")
	}
}

func TestNewSchedulerRegistersJob(t *testing.T) {
	for _, spec := range []string{"@daily", "30 9 * * 1-5"} {
		s, err := NewScheduler(&countingRunner{}, spec)
		if err != nil {
			t.Fatalf("schedule %q rejected: %v", spec, err)
		}
		if s.Entries() != 1 {
			t.Fatalf("expected one job for %q, got %d", spec, s.Entries())
		}
		s.Start()
		<-s.Stop().Done()
	}
}
