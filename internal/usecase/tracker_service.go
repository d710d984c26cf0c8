package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trackside/livetracker/internal/domain/trackjob"
	"github.com/trackside/livetracker/internal/platform/logging"
	"github.com/trackside/livetracker/internal/platform/scheduler"
)

// Poller runs one poll cycle and reports whether the match is finished.
type Poller interface {
	Poll(ctx context.Context, matchID string) (bool, error)
}

type TrackerConfig struct {
	// LiveInterval is the live-phase polling period.
	LiveInterval time.Duration
	// LiveMaxFirings caps live-phase firings; with the default interval the
	// live phase is bounded to roughly five hours.
	LiveMaxFirings int
	// PostFinishInterval is the verification-phase period after the match is
	// first seen finished.
	PostFinishInterval time.Duration
	// PostFinishMaxFirings caps the verification phase to roughly one hour.
	PostFinishMaxFirings int
	// PostFinishCutoff is the duration since kickoff past which a finished
	// match stops being verified.
	PostFinishCutoff time.Duration
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.LiveInterval <= 0 {
		c.LiveInterval = 29 * time.Second
	}
	if c.LiveMaxFirings <= 0 {
		c.LiveMaxFirings = 620
	}
	if c.PostFinishInterval <= 0 {
		c.PostFinishInterval = time.Minute
	}
	if c.PostFinishMaxFirings <= 0 {
		c.PostFinishMaxFirings = 60
	}
	if c.PostFinishCutoff <= 0 {
		c.PostFinishCutoff = 6 * time.Hour
	}
	return c
}

// TrackerService owns the per-match polling lifecycle: enroll at kickoff,
// poll on the live period until the worker reports finished, hand off to a
// shorter post-finish verification schedule, and remove the job once the
// verification budget or the kickoff cutoff is reached. The actual polling
// work is delegated to the Poller.
type TrackerService struct {
	substrate scheduler.Substrate
	jobs      trackjob.Store
	poller    Poller
	cfg       TrackerConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewTrackerService(
	substrate scheduler.Substrate,
	jobs trackjob.Store,
	poller Poller,
	cfg TrackerConfig,
	logger *logging.Logger,
) *TrackerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackerService{
		substrate: substrate,
		jobs:      jobs,
		poller:    poller,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		now:       time.Now,
	}
}

func liveKey(matchID string) string { return matchID + ":live" }
func postKey(matchID string) string { return matchID + ":post" }

func matchIDFromKey(key string) string {
	if idx := strings.LastIndexByte(key, ':'); idx >= 0 {
		return key[:idx]
	}
	return key
}

// Enroll registers the live polling trigger for a match starting at its
// kickoff time. Enrolling an already-tracked match is a no-op; it never
// creates a duplicate trigger. The job record is visible in the store
// immediately, before the first firing.
func (s *TrackerService) Enroll(ctx context.Context, matchID string, kickoffAt time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.Enroll")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if kickoffAt.IsZero() {
		return fmt.Errorf("%w: kickoff time is required for match=%s", ErrInvalidInput, matchID)
	}

	if s.substrate.Exists(liveKey(matchID)) || s.substrate.Exists(postKey(matchID)) {
		s.logger.InfoContext(ctx, "match already enrolled, skipping", "match_id", matchID)
		return nil
	}

	job := trackjob.Job{
		MatchID:    matchID,
		Phase:      trackjob.PhasePending,
		KickoffAt:  kickoffAt.UTC(),
		EnrolledAt: s.now().UTC(),
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save polling job match=%s: %w", matchID, err)
	}

	err := s.substrate.Schedule(scheduler.Trigger{
		Key:        liveKey(matchID),
		StartAt:    kickoffAt,
		Period:     s.cfg.LiveInterval,
		MaxFirings: s.cfg.LiveMaxFirings,
		OnFire:     s.fireLive,
		OnExpire:   s.expire,
	})
	if errors.Is(err, scheduler.ErrAlreadyScheduled) {
		// A concurrent Enroll won the Schedule call between our Exists check
		// and here. Its trigger and job record are in place; deleting the
		// record now would erase the winner's state, so treat this exactly
		// like the early no-op.
		s.logger.InfoContext(ctx, "match already enrolled, skipping", "match_id", matchID)
		return nil
	}
	if err != nil {
		if deleteErr := s.jobs.Delete(ctx, matchID); deleteErr != nil {
			s.logger.ErrorContext(ctx, "rollback of polling job record failed",
				"match_id", matchID,
				"error", deleteErr,
			)
		}
		return fmt.Errorf("schedule live polling match=%s: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "match enrolled for live polling",
		"match_id", matchID,
		"kickoff_at", kickoffAt.UTC(),
		"interval", s.cfg.LiveInterval,
	)
	return nil
}

// Unenroll removes any trigger for the match, live or post-finish,
// immediately. Calling it for an untracked match is a no-op. An in-progress
// firing may still complete and commit its writes; that is acceptable since
// all writes are idempotent.
func (s *TrackerService) Unenroll(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.Unenroll")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	liveExisted, err := s.substrate.Cancel(liveKey(matchID))
	if err != nil {
		return fmt.Errorf("cancel live polling match=%s: %w", matchID, err)
	}
	postExisted, err := s.substrate.Cancel(postKey(matchID))
	if err != nil {
		return fmt.Errorf("cancel post-finish polling match=%s: %w", matchID, err)
	}

	if err := s.jobs.Delete(ctx, matchID); err != nil {
		return fmt.Errorf("delete polling job match=%s: %w", matchID, err)
	}

	if liveExisted || postExisted {
		s.logger.InfoContext(ctx, "match unenrolled", "match_id", matchID)
	}
	return nil
}

// Jobs lists the current polling job records.
func (s *TrackerService) Jobs(ctx context.Context) ([]trackjob.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.Jobs")
	defer span.End()

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list polling jobs: %w", err)
	}
	return jobs, nil
}

// fireLive runs one live-phase firing. A failing poll is treated as "not
// finished" and retried next period; only the firing budget or an explicit
// Unenroll ends the live phase without a finish handoff.
func (s *TrackerService) fireLive(ctx context.Context, key string, firing int) {
	matchID := matchIDFromKey(key)

	finished, err := s.poller.Poll(ctx, matchID)
	s.recordFiring(ctx, matchID, trackjob.PhaseLivePolling, err)
	if err != nil {
		s.logger.WarnContext(ctx, "live poll cycle failed, retrying next period",
			"match_id", matchID,
			"firing", firing,
			"error", err,
		)
		return
	}
	if !finished {
		return
	}

	// Finish handoff. Deleting the live trigger and creating the post-finish
	// trigger must not leave a window with neither: the live trigger is
	// cancelled first, and if that fails we keep polling (fail closed).
	if _, err := s.substrate.Cancel(key); err != nil {
		s.logger.ErrorContext(ctx, "live trigger removal failed, keeping live polling",
			"match_id", matchID,
			"error", err,
		)
		return
	}

	err = s.substrate.Schedule(scheduler.Trigger{
		Key:        postKey(matchID),
		StartAt:    s.now(),
		Period:     s.cfg.PostFinishInterval,
		MaxFirings: s.cfg.PostFinishMaxFirings,
		OnFire:     s.firePost,
		OnExpire:   s.expire,
	})
	if err != nil {
		// Loud by design: losing the trigger here means the match silently
		// stops being tracked, so operators need to re-enroll manually.
		s.logger.ErrorContext(ctx, "post-finish trigger creation failed, match no longer polled",
			"match_id", matchID,
			"error", err,
		)
		s.recordFiring(ctx, matchID, trackjob.PhaseLivePolling, err)
		return
	}

	s.updatePhase(ctx, matchID, trackjob.PhasePostFinish)
	s.logger.InfoContext(ctx, "match finished, switched to post-finish polling",
		"match_id", matchID,
		"interval", s.cfg.PostFinishInterval,
	)
}

// firePost runs one post-finish verification firing. The trigger ends when
// the match is still finished past the kickoff cutoff, or when the firing
// budget runs out, whichever comes first.
func (s *TrackerService) firePost(ctx context.Context, key string, firing int) {
	matchID := matchIDFromKey(key)

	finished, err := s.poller.Poll(ctx, matchID)
	s.recordFiring(ctx, matchID, trackjob.PhasePostFinish, err)
	if err != nil {
		s.logger.WarnContext(ctx, "post-finish poll cycle failed, retrying next period",
			"match_id", matchID,
			"firing", firing,
			"error", err,
		)
		return
	}
	if !finished {
		return
	}

	job, ok, err := s.jobs.Get(ctx, matchID)
	if err != nil || !ok {
		return
	}
	if s.now().Sub(job.KickoffAt) < s.cfg.PostFinishCutoff {
		return
	}

	if _, err := s.substrate.Cancel(key); err != nil {
		s.logger.ErrorContext(ctx, "post-finish trigger removal failed",
			"match_id", matchID,
			"error", err,
		)
		return
	}
	s.closeJob(ctx, matchID)
	s.logger.InfoContext(ctx, "match tracking completed", "match_id", matchID)
}

// expire runs when a trigger's firing budget is exhausted; the budget is the
// hard backstop against runaway jobs, so the record is closed out regardless
// of finished-state.
func (s *TrackerService) expire(key string) {
	ctx := context.Background()
	matchID := matchIDFromKey(key)

	if s.substrate.Exists(liveKey(matchID)) || s.substrate.Exists(postKey(matchID)) {
		// The other phase still has a trigger; nothing to close out.
		return
	}
	s.closeJob(ctx, matchID)
	s.logger.Info("polling budget exhausted, match tracking ended", "match_id", matchID, "key", key)
}

// closeJob marks the job done and removes its record. Marking before the
// delete means a record that survives a failed delete reads as DONE rather
// than as a phase that implies an active trigger.
func (s *TrackerService) closeJob(ctx context.Context, matchID string) {
	if job, ok, err := s.jobs.Get(ctx, matchID); err == nil && ok && job.Active() {
		job.Phase = trackjob.PhaseDone
		if err := s.jobs.Save(ctx, job); err != nil {
			s.logger.WarnContext(ctx, "polling job close failed", "match_id", matchID, "error", err)
		}
	}
	if err := s.jobs.Delete(ctx, matchID); err != nil {
		s.logger.WarnContext(ctx, "polling job cleanup failed", "match_id", matchID, "error", err)
	}
}

func (s *TrackerService) recordFiring(ctx context.Context, matchID string, phase trackjob.Phase, pollErr error) {
	job, ok, err := s.jobs.Get(ctx, matchID)
	if err != nil {
		s.logger.WarnContext(ctx, "polling job lookup failed", "match_id", matchID, "error", err)
		return
	}
	if !ok || !job.Active() {
		// Unenroll raced this firing and already removed the record. The
		// firing's data writes stand, but recreating the record here would
		// keep a removed match listed forever.
		return
	}

	job.Phase = phase
	job.Firings++
	job.LastFiredAt = s.now().UTC()
	job.LastError = ""
	if pollErr != nil {
		job.LastError = pollErr.Error()
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "polling job update failed", "match_id", matchID, "error", err)
	}
}

func (s *TrackerService) updatePhase(ctx context.Context, matchID string, phase trackjob.Phase) {
	job, ok, err := s.jobs.Get(ctx, matchID)
	if err != nil || !ok {
		return
	}
	job.Phase = phase
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "polling job phase update failed", "match_id", matchID, "error", err)
	}
}
