package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/trackside/livetracker/internal/domain/trackjob"
	"github.com/trackside/livetracker/internal/platform/logging"
	"github.com/trackside/livetracker/internal/usecase"
)

// TrackingService is the tracker surface the operator API drives.
type TrackingService interface {
	Enroll(ctx context.Context, matchID string, kickoffAt time.Time) error
	Unenroll(ctx context.Context, matchID string) error
	Jobs(ctx context.Context) ([]trackjob.Job, error)
}

type Handler struct {
	tracker   TrackingService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(tracker TrackingService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		tracker:   tracker,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) EnrollMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnrollMatch")
	defer span.End()

	var req enrollMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kickoffAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.KickoffAt))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoff_at must be RFC3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.tracker.Enroll(ctx, req.MatchID, kickoffAt); err != nil {
		h.logger.WarnContext(ctx, "enroll match failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, enrollMatchResponse{
		MatchID:   strings.TrimSpace(req.MatchID),
		KickoffAt: kickoffAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) UnenrollMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnenrollMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.tracker.Unenroll(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "unenroll match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"match_id": matchID})
}

func (h *Handler) ListTrackingJobs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTrackingJobs")
	defer span.End()

	jobs, err := h.tracker.Jobs(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tracking jobs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]trackingJobDTO, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, trackingJobToDTO(job))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type enrollMatchRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	KickoffAt string `json:"kickoff_at" validate:"required"`
}

type enrollMatchResponse struct {
	MatchID   string `json:"match_id"`
	KickoffAt string `json:"kickoff_at"`
}

type trackingJobDTO struct {
	MatchID     string `json:"match_id"`
	Phase       string `json:"phase"`
	KickoffAt   string `json:"kickoff_at"`
	EnrolledAt  string `json:"enrolled_at"`
	Firings     int    `json:"firings"`
	LastFiredAt string `json:"last_fired_at,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

func trackingJobToDTO(job trackjob.Job) trackingJobDTO {
	out := trackingJobDTO{
		MatchID:    job.MatchID,
		Phase:      string(job.Phase),
		KickoffAt:  job.KickoffAt.UTC().Format(time.RFC3339),
		EnrolledAt: job.EnrolledAt.UTC().Format(time.RFC3339),
		Firings:    job.Firings,
		LastError:  job.LastError,
	}
	if !job.LastFiredAt.IsZero() {
		out.LastFiredAt = job.LastFiredAt.UTC().Format(time.RFC3339)
	}
	return out
}
