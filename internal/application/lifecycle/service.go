// Package lifecycle owns the end of a session: explicit deletion and the
// TTL sweep that evicts abandoned workspaces.
package lifecycle

import (
	"context"
	"time"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/workspace"
	"github.com/turtacn/cdforge/pkg/errors"
)

// Eviction reasons.
const (
	ReasonExpired = "expired"
	ReasonDeleted = "deleted"
)

// Service manages session records and their workspaces.
type Service interface {
	// Get returns the session record.
	Get(ctx context.Context, id string) (*structure.Session, error)
	// Delete removes the workspace and the record.
	Delete(ctx context.Context, id string) error
	// Sweep removes every workspace older than the TTL.
	Sweep(ctx context.Context) (*SweepReport, error)
}

// SweepReport summarises one sweep.
type SweepReport struct {
	Scanned int      `json:"scanned"`
	Removed []string `json:"removed"`
	Failed  int      `json:"failed"`
}

// ArtifactRemover deletes archived copies of a session's files.
type ArtifactRemover interface {
	Remove(ctx context.Context, sessionID string) error
}

// EventPublisher emits structure lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, sessionID string, payload interface{}) error
}

// Dependencies are the collaborators of the service.  Archive and
// Publisher are optional.
type Dependencies struct {
	Workspaces *workspace.Manager
	Sessions   structure.SessionRepository
	Archive    ArtifactRemover
	Publisher  EventPublisher
	Metrics    *prometheus.AppMetrics
	Logger     logging.Logger
	Now        func() time.Time
}

type serviceImpl struct {
	deps Dependencies
	ttl  time.Duration
}

// NewService returns the lifecycle service.  Workspaces whose directory was
// last modified more than ttl ago are evicted by Sweep.
func NewService(deps Dependencies, ttl time.Duration) (Service, error) {
	if deps.Workspaces == nil {
		return nil, errors.InvalidParam("workspace manager is required")
	}
	if deps.Sessions == nil {
		return nil, errors.InvalidParam("session repository is required")
	}
	if ttl <= 0 {
		return nil, errors.InvalidParam("workspace ttl must be positive")
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNoopAppMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	deps.Logger = deps.Logger.Named("lifecycle")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &serviceImpl{deps: deps, ttl: ttl}, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (*structure.Session, error) {
	return s.deps.Sessions.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	logger := s.deps.Logger.WithContext(ctx).With(logging.String(logging.FieldSessionID, id))

	dirErr := s.deps.Workspaces.Remove(id)
	if dirErr != nil && !errors.IsNotFound(dirErr) {
		return dirErr
	}
	recErr := s.deps.Sessions.Delete(ctx, id)
	if recErr != nil && !errors.IsNotFound(recErr) {
		logger.Warn("session record not deleted", logging.Err(recErr))
	}
	if dirErr != nil && recErr != nil {
		return errors.New(errors.CodeSessionNotFound, "session not found")
	}
	if dirErr == nil {
		s.deps.Metrics.WorkspacesActive.WithLabelValues().Dec()
	}

	if s.deps.Archive != nil {
		if err := s.deps.Archive.Remove(ctx, id); err != nil {
			logger.Warn("archived artifacts not removed", logging.Err(err))
		}
	}
	s.evicted(ctx, logger, id, ReasonDeleted, time.Time{})
	return nil
}

func (s *serviceImpl) Sweep(ctx context.Context) (*SweepReport, error) {
	expired, err := s.deps.Workspaces.Expired(s.ttl, s.deps.Now())
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(expired), Removed: []string{}}
	for _, info := range expired {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger := s.deps.Logger.With(logging.String(logging.FieldSessionID, info.ID))
		if err := s.deps.Workspaces.Remove(info.ID); err != nil {
			report.Failed++
			logger.Warn("expired workspace not removed", logging.Err(err))
			continue
		}
		if err := s.deps.Sessions.Delete(ctx, info.ID); err != nil && !errors.IsNotFound(err) {
			logger.Warn("session record not deleted", logging.Err(err))
		}
		report.Removed = append(report.Removed, info.ID)
		s.evicted(ctx, logger, info.ID, ReasonExpired, info.ModTime)
	}

	if all, err := s.deps.Workspaces.List(); err == nil {
		s.deps.Metrics.WorkspacesActive.WithLabelValues().Set(float64(len(all)))
	}
	if len(report.Removed) > 0 || report.Failed > 0 {
		s.deps.Logger.Info("workspace sweep finished",
			logging.Int("removed", len(report.Removed)),
			logging.Int("failed", report.Failed))
	}
	return report, nil
}

func (s *serviceImpl) evicted(ctx context.Context, logger logging.Logger, id, reason string, modTime time.Time) {
	prometheus.RecordEviction(s.deps.Metrics, reason)
	if s.deps.Publisher == nil {
		return
	}
	status := prometheus.OutcomeSuccess
	err := s.deps.Publisher.Publish(context.WithoutCancel(ctx), kafka.EventWorkspaceEvicted, id,
		kafka.WorkspaceEvictedPayload{Reason: reason, ModTime: modTime})
	if err != nil {
		status = "error"
		logger.Warn("event not published", logging.Err(err))
	}
	s.deps.Metrics.EventsPublishedTotal.WithLabelValues(kafka.EventWorkspaceEvicted, status).Inc()
}

//Personal.AI order the ending
