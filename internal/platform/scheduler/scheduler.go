// Package scheduler provides the trigger substrate the tracking lifecycle
// runs on: recurring per-key triggers with a firing cap, at-most-one
// concurrent firing per key, and a single catch-up firing after a missed
// schedule. The lifecycle state machine in usecase only depends on the
// Substrate contract, so a durable external scheduler can replace the
// in-process implementation without touching it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/trackside/livetracker/internal/platform/logging"
)

var (
	ErrAlreadyScheduled = errors.New("trigger already scheduled for key")
	ErrClosed           = errors.New("scheduler is closed")
)

// Handler runs one firing of a trigger. firing is 1-based.
type Handler func(ctx context.Context, key string, firing int)

// Trigger describes one recurring schedule.
type Trigger struct {
	Key        string
	StartAt    time.Time
	Period     time.Duration
	MaxFirings int
	OnFire     Handler
	// OnExpire runs after the firing budget is exhausted and the trigger has
	// been removed. Optional.
	OnExpire func(key string)
}

// Substrate is the scheduling contract the lifecycle state machine uses.
type Substrate interface {
	Schedule(trigger Trigger) error
	// Cancel removes the trigger for key. It reports whether a trigger
	// existed; a missing key is not an error. An in-flight firing is not
	// interrupted, only future firings are prevented.
	Cancel(key string) (bool, error)
	Exists(key string) bool
}

// InProcess is a timer-wheel Substrate backed by a shared ants worker pool.
// Firings for different keys run concurrently on the pool; firings for the
// same key never overlap: a tick that arrives while the previous firing is
// still running is skipped, not queued, and does not consume budget.
type InProcess struct {
	mu     sync.Mutex
	jobs   map[string]*timerJob
	pool   *ants.Pool
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	now    func() time.Time
}

type timerJob struct {
	trigger Trigger
	timer   *time.Timer
	firings int
	running bool
	removed bool
}

func NewInProcess(poolSize int, logger *logging.Logger) (*InProcess, error) {
	if poolSize < 1 {
		poolSize = 16
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create scheduler pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &InProcess{
		jobs:   make(map[string]*timerJob),
		pool:   pool,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}, nil
}

func (s *InProcess) Schedule(trigger Trigger) error {
	if strings.TrimSpace(trigger.Key) == "" {
		return fmt.Errorf("trigger key is required")
	}
	if trigger.Period <= 0 {
		return fmt.Errorf("trigger period must be positive: key=%s", trigger.Key)
	}
	if trigger.MaxFirings < 1 {
		return fmt.Errorf("trigger max firings must be at least 1: key=%s", trigger.Key)
	}
	if trigger.OnFire == nil {
		return fmt.Errorf("trigger handler is required: key=%s", trigger.Key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, exists := s.jobs[trigger.Key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyScheduled, trigger.Key)
	}

	job := &timerJob{trigger: trigger}
	s.jobs[trigger.Key] = job

	// A start time in the past means the schedule was missed (enrollment
	// after an outage): fire once immediately and resume the normal period
	// from now, instead of replaying every missed tick.
	delay := time.Until(trigger.StartAt)
	if delay < 0 {
		delay = 0
	}
	job.timer = time.AfterFunc(delay, func() { s.tick(trigger.Key) })

	return nil
}

func (s *InProcess) Cancel(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[key]
	if !ok {
		return false, nil
	}
	job.removed = true
	if job.timer != nil {
		job.timer.Stop()
	}
	delete(s.jobs, key)
	return true, nil
}

func (s *InProcess) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// Close stops all triggers and releases the worker pool. In-flight firings
// are allowed to finish.
func (s *InProcess) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key, job := range s.jobs {
		job.removed = true
		if job.timer != nil {
			job.timer.Stop()
		}
		delete(s.jobs, key)
	}
	s.mu.Unlock()

	s.cancel()
	s.pool.Release()
}

func (s *InProcess) tick(key string) {
	s.mu.Lock()
	job, ok := s.jobs[key]
	if !ok || job.removed || s.closed {
		s.mu.Unlock()
		return
	}

	if job.running {
		// Previous firing overran its period: skip this tick without
		// consuming budget.
		job.timer.Reset(job.trigger.Period)
		s.mu.Unlock()
		return
	}

	job.running = true
	job.firings++
	firing := job.firings
	last := firing >= job.trigger.MaxFirings
	if !last {
		job.timer.Reset(job.trigger.Period)
	}
	trigger := job.trigger
	s.mu.Unlock()

	err := s.pool.Submit(func() {
		defer s.finishFiring(key, last)
		trigger.OnFire(s.ctx, key, firing)
	})
	if err != nil {
		// Pool saturated: give the tick back. The budget charge is reverted
		// so a starved trigger does not burn down without doing work.
		s.mu.Lock()
		if current, ok := s.jobs[key]; ok && current == job {
			job.running = false
			job.firings--
			if last {
				job.timer.Reset(job.trigger.Period)
			}
		}
		s.mu.Unlock()
		s.logger.Warn("scheduler pool rejected firing", "key", key, "error", err)
	}
}

func (s *InProcess) finishFiring(key string, last bool) {
	s.mu.Lock()
	job, ok := s.jobs[key]
	if ok {
		job.running = false
		if last {
			job.removed = true
			if job.timer != nil {
				job.timer.Stop()
			}
			delete(s.jobs, key)
		}
	}
	s.mu.Unlock()

	if ok && last && job.trigger.OnExpire != nil {
		job.trigger.OnExpire(key)
	}
}
