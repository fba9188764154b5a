// Package minimization adds hydrogens to a caller-supplied PDB and minimizes
// its geometry inside an existing session workspace.
package minimization

import (
	"context"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/workspace"
	"github.com/turtacn/cdforge/pkg/errors"
)

// Service defines the minimization use case.
type Service interface {
	Minimize(ctx context.Context, input *MinimizeInput) (*MinimizeResult, error)
}

// MinimizeInput carries the PDB text and the workspace reference.  Ref is
// the user_dir returned by a generation or a bare session id.
type MinimizeInput struct {
	PDB string
	Ref string
}

// MinimizeResult holds the minimized structure.
type MinimizeResult struct {
	SessionID string
	PDB       string
	Duration  time.Duration
}

// EventPublisher emits structure lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, sessionID string, payload interface{}) error
}

// Dependencies are the collaborators of the service.  Sessions and
// Publisher are optional.
type Dependencies struct {
	Workspaces *workspace.Manager
	Minimizer  structure.Minimizer
	Sessions   structure.SessionRepository
	Publisher  EventPublisher
	Metrics    *prometheus.AppMetrics
	Logger     logging.Logger
}

type serviceImpl struct {
	deps Dependencies
	sem  *semaphore.Weighted
}

// NewService returns the minimization service.  maxConcurrent bounds the
// number of minimizer processes running at once.
func NewService(deps Dependencies, maxConcurrent int64) (Service, error) {
	if deps.Workspaces == nil {
		return nil, errors.InvalidParam("workspace manager is required")
	}
	if deps.Minimizer == nil {
		return nil, errors.InvalidParam("minimizer is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNoopAppMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	deps.Logger = deps.Logger.Named("minimization")
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &serviceImpl{deps: deps, sem: semaphore.NewWeighted(maxConcurrent)}, nil
}

func (s *serviceImpl) Minimize(ctx context.Context, input *MinimizeInput) (*MinimizeResult, error) {
	if input == nil || input.PDB == "" || strings.TrimSpace(input.Ref) == "" {
		return nil, errors.New(errors.CodeMissingInput, errors.MsgMissingInput)
	}

	ws, err := s.deps.Workspaces.Resolve(input.Ref)
	if err != nil {
		return nil, err
	}
	logger := s.deps.Logger.WithContext(ctx).With(logging.String(logging.FieldSessionID, ws.ID))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, errors.CodeServiceUnavailable, "request cancelled while queued")
	}
	defer s.sem.Release(1)

	start := time.Now()
	pdb, err := s.minimize(ctx, ws, input.PDB)
	elapsed := time.Since(start)
	if err != nil {
		code := errors.GetCode(err)
		prometheus.RecordMinimization(s.deps.Metrics, code.String(), elapsed)
		logger.Warn("minimization failed", logging.String(logging.FieldErrorCode, code.String()), logging.Err(err))
		return nil, err
	}
	prometheus.RecordMinimization(s.deps.Metrics, prometheus.OutcomeSuccess, elapsed)
	logger.Info("structure minimized", logging.Int64(logging.FieldDuration, elapsed.Milliseconds()))

	s.markMinimized(ctx, logger, ws.ID)
	s.publish(ctx, logger, ws.ID, kafka.StructureMinimizedPayload{DurationMs: elapsed.Milliseconds(), Bytes: len(pdb)})

	return &MinimizeResult{SessionID: ws.ID, PDB: pdb, Duration: elapsed}, nil
}

func (s *serviceImpl) minimize(ctx context.Context, ws *workspace.Workspace, pdb string) (string, error) {
	input := ws.Path(workspace.MinimizationInputFile)
	output := ws.Path(workspace.MinimizedFile)

	if err := os.WriteFile(input, []byte(pdb), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to write minimization input")
	}
	defer os.Remove(input)

	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to clear previous minimization output")
	}
	if err := s.deps.Minimizer.Minimize(ctx, structure.MinimizeRequest{Input: input, Output: output}); err != nil {
		return "", err
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return "", errors.New(errors.CodeMinimizationFailed, errors.MsgMinimizationFailed).
			WithDetail("minimizer produced no output").WithCause(err)
	}
	return string(data), nil
}

func (s *serviceImpl) markMinimized(ctx context.Context, logger logging.Logger, id string) {
	if s.deps.Sessions == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	sess, err := s.deps.Sessions.Get(ctx, id)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.Warn("session record not loaded", logging.Err(err))
		}
		return
	}
	sess.Transition(structure.StatusMinimized, time.Now())
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		logger.Warn("session record not saved", logging.Err(err))
	}
}

func (s *serviceImpl) publish(ctx context.Context, logger logging.Logger, sessionID string, payload kafka.StructureMinimizedPayload) {
	if s.deps.Publisher == nil {
		return
	}
	status := prometheus.OutcomeSuccess
	if err := s.deps.Publisher.Publish(context.WithoutCancel(ctx), kafka.EventStructureMinimized, sessionID, payload); err != nil {
		status = "error"
		logger.Warn("event not published", logging.Err(err))
	}
	s.deps.Metrics.EventsPublishedTotal.WithLabelValues(kafka.EventStructureMinimized, status).Inc()
}

//Personal.AI order the ending
