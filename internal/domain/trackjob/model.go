package trackjob

import "time"

type Phase string

const (
	PhasePending     Phase = "PENDING"
	PhaseLivePolling Phase = "LIVE_POLLING"
	PhasePostFinish  Phase = "POST_FINISH_POLLING"
	PhaseDone        Phase = "DONE"
)

// Job is the runtime polling record for one tracked match. It lives in the
// scheduler's own job store, not in the match state store.
type Job struct {
	MatchID     string
	Phase       Phase
	KickoffAt   time.Time
	EnrolledAt  time.Time
	Firings     int
	LastFiredAt time.Time
	LastError   string
}

func (j Job) Active() bool {
	switch j.Phase {
	case PhasePending, PhaseLivePolling, PhasePostFinish:
		return true
	default:
		return false
	}
}
