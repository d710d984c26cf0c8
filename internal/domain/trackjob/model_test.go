package trackjob

import "testing"

func TestJobActive(t *testing.T) {
	for _, phase := range []Phase{PhasePending, PhaseLivePolling, PhasePostFinish} {
		if !(Job{Phase: phase}).Active() {
			t.Errorf("phase %s must be active", phase)
		}
	}
	if (Job{Phase: PhaseDone}).Active() {
		t.Error("DONE must not be active")
	}
	if (Job{}).Active() {
		t.Error("zero-value job must not be active")
	}
}
