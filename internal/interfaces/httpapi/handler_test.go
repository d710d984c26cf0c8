package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/trackside/livetracker/internal/domain/trackjob"
	"github.com/trackside/livetracker/internal/platform/logging"
)

type fakeTracker struct {
	enrolled   map[string]time.Time
	unenrolled []string
	jobs       []trackjob.Job
	err        error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{enrolled: make(map[string]time.Time)}
}

func (f *fakeTracker) Enroll(_ context.Context, matchID string, kickoffAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.enrolled[matchID] = kickoffAt
	return nil
}

func (f *fakeTracker) Unenroll(_ context.Context, matchID string) error {
	if f.err != nil {
		return f.err
	}
	f.unenrolled = append(f.unenrolled, matchID)
	return nil
}

func (f *fakeTracker) Jobs(context.Context) ([]trackjob.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

func newTestRouter(tracker TrackingService) http.Handler {
	handler := NewHandler(tracker, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"}, "test-token")
}

func TestEnrollMatch(t *testing.T) {
	tracker := newFakeTracker()
	router := newTestRouter(tracker)

	body := `{"match_id": "m-1", "kickoff_at": "2026-08-29T19:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/tracking/matches", strings.NewReader(body))
	req.Header.Set("X-Internal-Api-Token", "test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d body=%s", rec.Code, rec.Body.String())
	}
	kickoff, ok := tracker.enrolled["m-1"]
	if !ok {
		t.Fatal("expected match enrolled")
	}
	if !kickoff.Equal(time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff: %s", kickoff)
	}
}

func TestEnrollMatch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing match id", body: `{"kickoff_at": "2026-08-29T19:00:00Z"}`},
		{name: "missing kickoff", body: `{"match_id": "m-1"}`},
		{name: "bad kickoff format", body: `{"match_id": "m-1", "kickoff_at": "tomorrow"}`},
		{name: "unknown field", body: `{"match_id": "m-1", "kickoff_at": "2026-08-29T19:00:00Z", "extra": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newFakeTracker()
			router := newTestRouter(tracker)

			req := httptest.NewRequest(http.MethodPost, "/v1/tracking/matches", strings.NewReader(tt.body))
			req.Header.Set("X-Internal-Api-Token", "test-token")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			if len(tracker.enrolled) != 0 {
				t.Fatal("expected no enrollment")
			}
		})
	}
}

func TestTrackingRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(newFakeTracker())

	req := httptest.NewRequest(http.MethodGet, "/v1/tracking/jobs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/tracking/jobs", nil)
	req.Header.Set("X-Internal-Api-Token", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong token, got %d", rec.Code)
	}
}

func TestUnenrollMatch(t *testing.T) {
	tracker := newFakeTracker()
	router := newTestRouter(tracker)

	req := httptest.NewRequest(http.MethodDelete, "/v1/tracking/matches/m-1", nil)
	req.Header.Set("X-Internal-Api-Token", "test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(tracker.unenrolled) != 1 || tracker.unenrolled[0] != "m-1" {
		t.Fatalf("unexpected unenroll calls: %+v", tracker.unenrolled)
	}
}

func TestListTrackingJobs(t *testing.T) {
	tracker := newFakeTracker()
	tracker.jobs = []trackjob.Job{
		{
			MatchID:     "m-1",
			Phase:       trackjob.PhaseLivePolling,
			KickoffAt:   time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC),
			EnrolledAt:  time.Date(2026, 8, 29, 18, 55, 0, 0, time.UTC),
			Firings:     12,
			LastFiredAt: time.Date(2026, 8, 29, 19, 5, 48, 0, time.UTC),
		},
	}
	router := newTestRouter(tracker)

	req := httptest.NewRequest(http.MethodGet, "/v1/tracking/jobs", nil)
	req.Header.Set("X-Internal-Api-Token", "test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []trackingJobDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected one job, got %d", len(body.Data))
	}
	job := body.Data[0]
	if job.MatchID != "m-1" || job.Phase != "LIVE_POLLING" || job.Firings != 12 {
		t.Fatalf("unexpected job dto: %+v", job)
	}
	if job.LastFiredAt != "2026-08-29T19:05:48Z" {
		t.Fatalf("unexpected last_fired_at: %q", job.LastFiredAt)
	}
}

func TestHealthz_NoToken(t *testing.T) {
	router := newTestRouter(newFakeTracker())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
