package match

import (
	"strings"
	"time"
)

const (
	StatusNotStarted = "NS"
	StatusFirstHalf  = "1H"
	StatusHalfTime   = "HT"
	StatusSecondHalf = "2H"
	StatusExtraTime  = "ET"
	StatusPenalties  = "PEN_LIVE"
	StatusBreak      = "BREAK"
	StatusFullTime   = "FT"
	StatusAfterExtra = "AET"
	StatusAfterPens  = "PEN"
	StatusAbandoned  = "ABD"
	StatusPostponed  = "PST"
	StatusCancelled  = "CANC"
)

// LiveStatus is the mutable per-match status record. Exactly one row per
// match; overwritten in place on every successful poll.
type LiveStatus struct {
	MatchID    string
	StatusCode string
	StatusLong string
	Elapsed    int
	HomeScore  int
	AwayScore  int
	UpdatedAt  time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime, StatusPenalties, StatusBreak, "LIVE", "IN_PLAY":
		return true
	default:
		return false
	}
}

// IsFinishedStatus reports whether the feed considers the match over. The
// post-finish polling phase keys off this mapping.
func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFullTime, StatusAfterExtra, StatusAfterPens, StatusAbandoned, "FINISHED", "FT_PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusPostponed, StatusCancelled, "SUSP", "AWD", "WO":
		return true
	default:
		return false
	}
}

// StatusKind buckets a status code into "live", "finished", "cancelled" or
// "scheduled" for logging and filtering.
func StatusKind(status string) string {
	switch {
	case IsLiveStatus(status):
		return "live"
	case IsFinishedStatus(status):
		return "finished"
	case IsCancelledLikeStatus(status):
		return "cancelled"
	default:
		return "scheduled"
	}
}
