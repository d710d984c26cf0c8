package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackside/livetracker/internal/platform/logging"
)

func newTestScheduler(t *testing.T) *InProcess {
	t.Helper()

	s, err := NewInProcess(8, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func waitForCount(t *testing.T, counter *atomic.Int32, want int32, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if counter.Load() >= want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("counter did not reach %d within %s, got %d", want, timeout, counter.Load())
}

func TestInProcess_FiringCapRemovesTrigger(t *testing.T) {
	s := newTestScheduler(t)

	var fired atomic.Int32
	var expired atomic.Int32

	err := s.Schedule(Trigger{
		Key:        "m-1:live",
		StartAt:    time.Now(),
		Period:     10 * time.Millisecond,
		MaxFirings: 3,
		OnFire: func(_ context.Context, _ string, _ int) {
			fired.Add(1)
		},
		OnExpire: func(_ string) {
			expired.Add(1)
		},
	})
	require.NoError(t, err)

	waitForCount(t, &expired, 1, time.Second)
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, int32(3), fired.Load(), "trigger must fire exactly MaxFirings times")
	require.False(t, s.Exists("m-1:live"), "expired trigger must be removed")
}

func TestInProcess_PastStartFiresOneCatchUp(t *testing.T) {
	s := newTestScheduler(t)

	var fired atomic.Int32
	firstFiring := make(chan int, 1)

	err := s.Schedule(Trigger{
		Key:        "m-2:live",
		StartAt:    time.Now().Add(-time.Second),
		Period:     40 * time.Millisecond,
		MaxFirings: 2,
		OnFire: func(_ context.Context, _ string, firing int) {
			if fired.Add(1) == 1 {
				firstFiring <- firing
			}
		},
	})
	require.NoError(t, err)

	select {
	case firing := <-firstFiring:
		require.Equal(t, 1, firing, "catch-up fire must consume exactly one firing")
	case <-time.After(200 * time.Millisecond):
		t.Fatal("missed start must fire immediately, not wait a full period")
	}

	// Only one catch-up for the whole missed window, then the normal period.
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load())

	waitForCount(t, &fired, 2, time.Second)
}

func TestInProcess_OverrunSkipsTickInsteadOfQueueing(t *testing.T) {
	s := newTestScheduler(t)

	var fired atomic.Int32
	var inFlight atomic.Int32
	var overlapped atomic.Bool

	err := s.Schedule(Trigger{
		Key:        "m-3:live",
		StartAt:    time.Now(),
		Period:     10 * time.Millisecond,
		MaxFirings: 3,
		OnFire: func(_ context.Context, _ string, _ int) {
			if inFlight.Add(1) > 1 {
				overlapped.Store(true)
			}
			time.Sleep(25 * time.Millisecond)
			inFlight.Add(-1)
			fired.Add(1)
		},
	})
	require.NoError(t, err)

	waitForCount(t, &fired, 3, 2*time.Second)
	require.False(t, overlapped.Load(), "firings for one key must never overlap")
}

func TestInProcess_CancelStopsFutureFirings(t *testing.T) {
	s := newTestScheduler(t)

	var fired atomic.Int32
	err := s.Schedule(Trigger{
		Key:        "m-4:live",
		StartAt:    time.Now().Add(30 * time.Millisecond),
		Period:     10 * time.Millisecond,
		MaxFirings: 100,
		OnFire: func(_ context.Context, _ string, _ int) {
			fired.Add(1)
		},
	})
	require.NoError(t, err)

	existed, err := s.Cancel("m-4:live")
	require.NoError(t, err)
	require.True(t, existed)
	require.False(t, s.Exists("m-4:live"))

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load(), "cancelled trigger must not fire")

	existed, err = s.Cancel("m-4:live")
	require.NoError(t, err)
	require.False(t, existed, "cancel of a missing key is a no-op")
}

func TestInProcess_DuplicateKeyRejected(t *testing.T) {
	s := newTestScheduler(t)

	trigger := Trigger{
		Key:        "m-5:live",
		StartAt:    time.Now().Add(time.Hour),
		Period:     time.Second,
		MaxFirings: 1,
		OnFire:     func(context.Context, string, int) {},
	}
	require.NoError(t, s.Schedule(trigger))

	err := s.Schedule(trigger)
	require.True(t, errors.Is(err, ErrAlreadyScheduled))
}

func TestInProcess_ScheduleValidation(t *testing.T) {
	s := newTestScheduler(t)

	cases := []Trigger{
		{Key: "", Period: time.Second, MaxFirings: 1, OnFire: func(context.Context, string, int) {}},
		{Key: "k", Period: 0, MaxFirings: 1, OnFire: func(context.Context, string, int) {}},
		{Key: "k", Period: time.Second, MaxFirings: 0, OnFire: func(context.Context, string, int) {}},
		{Key: "k", Period: time.Second, MaxFirings: 1, OnFire: nil},
	}
	for i, trigger := range cases {
		if err := s.Schedule(trigger); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
