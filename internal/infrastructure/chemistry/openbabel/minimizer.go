package openbabel

import (
	"context"
	"errors"
	"time"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/process"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

// DefaultMinimizeTimeout bounds one minimization.
const DefaultMinimizeTimeout = 180 * time.Second

// MinimizerConfig configures the minimizer.
type MinimizerConfig struct {
	Binary  string
	Timeout time.Duration
}

// Minimizer runs `<binary> <in> -h -O <out> --minimize`.
type Minimizer struct {
	runner process.Runner
	cfg    MinimizerConfig
	logger logging.Logger
}

var _ structure.Minimizer = (*Minimizer)(nil)

// NewMinimizer returns a Minimizer with defaults filled in.
func NewMinimizer(runner process.Runner, cfg MinimizerConfig, logger logging.Logger) *Minimizer {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultMinimizeTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Minimizer{runner: runner, cfg: cfg, logger: logger.Named("minimizer")}
}

// Args returns the command line for req.
func (m *Minimizer) Args(req structure.MinimizeRequest) []string {
	return []string{req.Input, "-h", "-O", req.Output, "--minimize"}
}

// Minimize adds hydrogens to req.Input, minimizes it and writes req.Output.
// Timeouts map to MinimizationTimeout and non-zero exits to
// MinimizationFailed carrying the tool's error output.
func (m *Minimizer) Minimize(ctx context.Context, req structure.MinimizeRequest) error {
	log := m.logger.WithContext(ctx)
	res, err := m.runner.Run(ctx, process.Command{
		Name:    m.cfg.Binary,
		Args:    m.Args(req),
		Timeout: m.cfg.Timeout,
	})
	if err == nil {
		log.Info("minimization finished", logging.Duration("elapsed", res.Duration))
		return nil
	}

	var exitErr *process.ExitError
	switch {
	case errors.Is(err, process.ErrTimeout):
		log.Warn("minimization timed out", logging.Duration("timeout", m.cfg.Timeout))
		return apperrors.Wrap(err, apperrors.CodeMinimizationTimeout, apperrors.MsgMinimizationTimeout)
	case errors.As(err, &exitErr):
		log.Warn("minimization failed", logging.Int("exit_code", exitErr.ExitCode))
		return apperrors.Wrap(err, apperrors.CodeMinimizationFailed, apperrors.MsgMinimizationFailed).
			WithDetail(exitErr.Error())
	case errors.Is(err, process.ErrNotFound):
		return apperrors.Wrap(err, apperrors.CodeToolUnavailable, "obabel is not installed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeMinimizationFailed, apperrors.MsgMinimizationFailed).
		WithDetail(err.Error())
}

//Personal.AI order the ending
