// Package generation runs the cyclodextrin build pipeline: interpret the
// canonical string, build every unit, assemble them, wait for the assembled
// PDB and export it as SMILES plus a 2-D depiction.
package generation

import (
	"context"
	"encoding/base64"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/minio"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/workspace"
	"github.com/turtacn/cdforge/pkg/errors"
)

// SuccessMessage is the mensaje field of a successful generation.
const SuccessMessage = "Estructura generada exitosamente"

// Service defines the generation use case.
type Service interface {
	Generate(ctx context.Context, input *GenerateInput) (*GenerateResult, error)
}

// GenerateInput carries the caller's request.
type GenerateInput struct {
	Descriptor string
}

// GenerateResult is everything a successful generation produced.
type GenerateResult struct {
	SessionID  string
	UserDir    string
	SMILES     string
	UnitSMILES []string
	// Image is the PNG written to estructura.png.
	Image []byte
	// PDB is the assembled, unminimized structure.
	PDB       string
	Artifacts []minio.Artifact
	Duration  time.Duration
}

// ImageBase64 returns Image in standard base64.
func (r *GenerateResult) ImageBase64() string {
	return base64.StdEncoding.EncodeToString(r.Image)
}

// Archiver copies finished artifacts to object storage.
type Archiver interface {
	Archive(ctx context.Context, sessionID string, paths []string) ([]minio.Artifact, error)
}

// EventPublisher emits structure lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, sessionID string, payload interface{}) error
}

// Config tunes the pipeline.
type Config struct {
	WaitTimeout     time.Duration
	PollInterval    time.Duration
	MaxConcurrent   int64
	RemoveOnFailure bool
	Render          structure.RenderOptions
}

// Dependencies are the collaborators of the pipeline.  Archiver and
// Publisher are optional.
type Dependencies struct {
	Workspaces  *workspace.Manager
	Interpreter structure.Interpreter
	Builder     structure.UnitBuilder
	Engine      structure.AssemblyEngine
	Toolkit     structure.Toolkit
	Sessions    structure.SessionRepository
	Archiver    Archiver
	Publisher   EventPublisher
	Metrics     *prometheus.AppMetrics
	Logger      logging.Logger
	Now         func() time.Time
}

type serviceImpl struct {
	deps Dependencies
	cfg  Config
	sem  *semaphore.Weighted
}

// NewService validates deps and returns the generation service.
func NewService(deps Dependencies, cfg Config) (Service, error) {
	switch {
	case deps.Workspaces == nil:
		return nil, errors.InvalidParam("workspace manager is required")
	case deps.Interpreter == nil, deps.Builder == nil, deps.Engine == nil:
		return nil, errors.InvalidParam("chemistry collaborators are required")
	case deps.Toolkit == nil:
		return nil, errors.InvalidParam("molecule toolkit is required")
	case deps.Sessions == nil:
		return nil, errors.InvalidParam("session repository is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNoopAppMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	deps.Logger = deps.Logger.Named("generation")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 180 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Render.Width == 0 {
		cfg.Render = structure.DefaultRenderOptions()
	}
	return &serviceImpl{deps: deps, cfg: cfg, sem: semaphore.NewWeighted(cfg.MaxConcurrent)}, nil
}

func (s *serviceImpl) Generate(ctx context.Context, input *GenerateInput) (*GenerateResult, error) {
	start := s.deps.Now()
	logger := s.deps.Logger.WithContext(ctx)

	if input == nil || strings.TrimSpace(input.Descriptor) == "" {
		err := errors.New(errors.CodeDescriptorInvalid, "string_canonico es requerido")
		prometheus.RecordGeneration(s.deps.Metrics, string(err.Code), time.Since(start))
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, errors.CodeServiceUnavailable, "request cancelled while queued")
	}
	defer s.sem.Release(1)

	ws, err := s.deps.Workspaces.Allocate(ctx)
	if err != nil {
		prometheus.RecordGeneration(s.deps.Metrics, string(errors.GetCode(err)), time.Since(start))
		return nil, err
	}
	s.deps.Metrics.WorkspacesActive.WithLabelValues().Inc()
	logger = logger.With(logging.String(logging.FieldSessionID, ws.ID))

	sess := structure.NewSession(ws.ID, ws.Dir, input.Descriptor, s.deps.Now())
	s.saveSession(ctx, logger, sess)

	res, err := s.run(ctx, logger, ws, sess, input.Descriptor)
	elapsed := s.deps.Now().Sub(start)
	if err != nil {
		s.fail(ctx, logger, ws, sess, err)
		prometheus.RecordGeneration(s.deps.Metrics, string(errors.GetCode(err)), elapsed)
		return nil, err
	}
	res.Duration = elapsed

	sess.SMILES = res.SMILES
	for _, a := range res.Artifacts {
		sess.Artifacts = append(sess.Artifacts, a.Key)
	}
	sess.Transition(structure.StatusGenerated, s.deps.Now())
	s.saveSession(ctx, logger, sess)
	s.publish(ctx, logger, kafka.EventStructureGenerated, ws.ID, kafka.StructureGeneratedPayload{
		Units:      sess.Units,
		SMILES:     res.SMILES,
		DurationMs: elapsed.Milliseconds(),
		Artifacts:  sess.Artifacts,
	})
	prometheus.RecordGeneration(s.deps.Metrics, prometheus.OutcomeSuccess, elapsed)
	logger.Info("structure generated",
		logging.Int("units", sess.Units),
		logging.Int64(logging.FieldDuration, elapsed.Milliseconds()))
	return res, nil
}

func (s *serviceImpl) run(ctx context.Context, logger logging.Logger, ws *workspace.Workspace, sess *structure.Session, descriptor string) (*GenerateResult, error) {
	units, err := s.deps.Interpreter.Interpret(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.New(errors.CodeDescriptorInvalid, "el string canónico no contiene unidades")
	}
	structure.Renumber(units)
	sess.Units = len(units)

	unitSMILES := make([]string, 0, len(units))
	for _, u := range units {
		logger.Debug("building unit", logging.Int("index", u.Index), logging.Int("total", len(units)))
		built, err := s.deps.Builder.Build(ctx, structure.BuildRequest{
			Index:        u.Index,
			Stereo:       u.EffectiveStereo(),
			Substitution: u.Substitution,
			OutputPath:   ws.Path(workspace.UnitFile(u.Index)),
		})
		if err != nil {
			return nil, err
		}
		s.deps.Metrics.UnitsBuiltTotal.WithLabelValues().Inc()
		unitSMILES = append(unitSMILES, built.SMILES)
	}

	assembly, err := s.deps.Engine.Assemble(ctx, len(units), ws.Dir)
	if err != nil {
		var ae *errors.AppError
		if errors.As(err, &ae) && ae.Code == errors.CodeAssemblyFailed {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CodeAssemblyFailed, errors.MsgAssemblyFailed).WithDetail(err.Error())
	}
	if assembly == nil {
		assembly = &structure.Assembly{}
	}

	outPath := ws.Path(workspace.AssemblyOutputFile)
	if err := s.waitForAssembly(ctx, logger, outPath, assembly.Done); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAssemblyFailed, errors.MsgAssemblyFailed).WithDetail("cannot read assembled structure")
	}

	mol := assembly.Molecule
	if !mol.Valid() {
		logger.Debug("engine returned no molecule, parsing output file")
		parsed, perr := structure.ParsePDB(outPath, data)
		if perr != nil || !parsed.Valid() {
			return nil, errors.New(errors.CodeInvalidMolecule, errors.MsgInvalidMolecule)
		}
		mol = parsed
	}

	png, err := s.deps.Toolkit.Render(ctx, mol, ws.Path(workspace.ImageFile), s.cfg.Render)
	if err != nil {
		return nil, err
	}
	smiles, err := s.deps.Toolkit.SMILES(ctx, mol)
	if err != nil {
		return nil, err
	}

	res := &GenerateResult{
		SessionID:  ws.ID,
		UserDir:    ws.Dir,
		SMILES:     smiles,
		UnitSMILES: unitSMILES,
		Image:      png,
		PDB:        string(data),
	}
	res.Artifacts = s.archive(ctx, logger, ws, len(units))
	return res, nil
}

func (s *serviceImpl) waitForAssembly(ctx context.Context, logger logging.Logger, path string, done <-chan error) error {
	start := time.Now()
	err := workspace.WaitForFile(ctx, path, workspace.WaitOptions{
		Timeout:      s.cfg.WaitTimeout,
		PollInterval: s.cfg.PollInterval,
		Done:         done,
		Logger:       logger,
	})
	switch {
	case err == nil:
		prometheus.RecordAssemblyWait(s.deps.Metrics, "ready", time.Since(start))
		return nil
	case errors.Is(err, workspace.ErrWaitTimeout), errors.Is(err, context.DeadlineExceeded):
		prometheus.RecordAssemblyWait(s.deps.Metrics, "timeout", time.Since(start))
		return errors.Wrap(err, errors.CodeAssemblyTimeout, errors.MsgAssemblyTimeout)
	case errors.Is(err, context.Canceled):
		prometheus.RecordAssemblyWait(s.deps.Metrics, "cancelled", time.Since(start))
		return errors.Wrap(err, errors.CodeInternal, "request cancelled")
	default:
		prometheus.RecordAssemblyWait(s.deps.Metrics, "failed", time.Since(start))
		var ae *errors.AppError
		if errors.As(err, &ae) {
			return err
		}
		return errors.Wrap(err, errors.CodeAssemblyFailed, errors.MsgAssemblyFailed).WithDetail(err.Error())
	}
}

func (s *serviceImpl) archive(ctx context.Context, logger logging.Logger, ws *workspace.Workspace, units int) []minio.Artifact {
	if s.deps.Archiver == nil {
		return nil
	}
	paths := make([]string, 0, units+2)
	for i := 1; i <= units; i++ {
		paths = append(paths, ws.Path(workspace.UnitFile(i)))
	}
	paths = append(paths, ws.Path(workspace.AssemblyOutputFile), ws.Path(workspace.ImageFile))

	artifacts, err := s.deps.Archiver.Archive(ctx, ws.ID, paths)
	if err != nil {
		s.deps.Metrics.ArchiveUploadsTotal.WithLabelValues("error").Inc()
		logger.Warn("artifact archive failed", logging.Err(err))
		return artifacts
	}
	s.deps.Metrics.ArchiveUploadsTotal.WithLabelValues(prometheus.OutcomeSuccess).Add(float64(len(artifacts)))
	return artifacts
}

func (s *serviceImpl) fail(ctx context.Context, logger logging.Logger, ws *workspace.Workspace, sess *structure.Session, cause error) {
	code := errors.GetCode(cause)
	logger.Warn("structure generation failed", logging.String(logging.FieldErrorCode, code.String()), logging.Err(cause))

	sess.Fail(cause, s.deps.Now())
	s.saveSession(ctx, logger, sess)
	s.publish(ctx, logger, kafka.EventStructureFailed, ws.ID, kafka.StructureFailedPayload{
		Code:    code.String(),
		Message: PublicMessage(cause),
	})

	if s.cfg.RemoveOnFailure {
		if err := s.deps.Workspaces.Remove(ws.ID); err != nil {
			logger.Warn("failed workspace not removed", logging.Err(err))
			return
		}
		s.deps.Metrics.WorkspacesActive.WithLabelValues().Dec()
	}
}

// Session bookkeeping never fails a request.  A detached context keeps the
// final status write alive after a client disconnect.
func (s *serviceImpl) saveSession(ctx context.Context, logger logging.Logger, sess *structure.Session) {
	if err := s.deps.Sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
		logger.Warn("session record not saved", logging.String("status", string(sess.Status)), logging.Err(err))
	}
}

func (s *serviceImpl) publish(ctx context.Context, logger logging.Logger, eventType, sessionID string, payload interface{}) {
	if s.deps.Publisher == nil {
		return
	}
	status := prometheus.OutcomeSuccess
	if err := s.deps.Publisher.Publish(context.WithoutCancel(ctx), eventType, sessionID, payload); err != nil {
		status = "error"
		logger.Warn("event not published", logging.String("event_type", eventType), logging.Err(err))
	}
	s.deps.Metrics.EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

// PublicMessage is the caller-facing text of err: the AppError message with
// its detail, or the plain error text.
func PublicMessage(err error) string {
	var ae *errors.AppError
	if errors.As(err, &ae) {
		return ae.PublicMessage()
	}
	return err.Error()
}

//Personal.AI order the ending
