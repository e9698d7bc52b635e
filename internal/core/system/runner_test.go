package system

import (
	"slices"
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"move", PhaseUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"move2", PhaseUpdate, &log})

	r.Tick(time.Millisecond)
	want := []string{"input", "move", "move2", "cleanup"}
	if !slices.Equal(log, want) {
		t.Errorf("Expected %v, got %v", want, log)
	}

	log = log[:0]
	r.TickPhase(PhaseUpdate, time.Millisecond)
	if !slices.Equal(log, []string{"move", "move2"}) {
		t.Errorf("Expected update phase only, got %v", log)
	}
	if r.Ticks() != 1 {
		t.Errorf("Expected 1 tick, got %d", r.Ticks())
	}
}
