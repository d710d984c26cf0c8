package match

import "testing"

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus("  ft "); got != StatusFullTime {
		t.Fatalf("NormalizeStatus(\"  ft \") = %q, want %q", got, StatusFullTime)
	}
	if got := NormalizeStatus(""); got != StatusNotStarted {
		t.Fatalf("empty status must normalize to %q, got %q", StatusNotStarted, got)
	}
}

func TestStatusKind(t *testing.T) {
	cases := map[string]string{
		StatusFirstHalf:  "live",
		StatusHalfTime:   "live",
		StatusPenalties:  "live",
		StatusFullTime:   "finished",
		StatusAfterExtra: "finished",
		StatusAbandoned:  "finished",
		StatusPostponed:  "cancelled",
		StatusCancelled:  "cancelled",
		"susp":           "cancelled",
		StatusNotStarted: "scheduled",
		"TBD":            "scheduled",
	}
	for status, want := range cases {
		if got := StatusKind(status); got != want {
			t.Errorf("StatusKind(%q) = %q, want %q", status, got, want)
		}
	}
}
