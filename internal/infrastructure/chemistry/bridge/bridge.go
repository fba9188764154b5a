// Package bridge drives the external chemistry collaborators (canonical
// string interpreter, unit builder, assembler) through one command-line
// entry point.  Each call runs
//
//	<command...> <verb>
//
// with a JSON request on stdin and reads a JSON reply from stdout.  A reply
// carrying a non-empty "error" field, or a non-zero exit, is a failure.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/process"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/workspace"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

// Verbs understood by the collaborator command.
const (
	VerbInterpret = "interpret"
	VerbBuildUnit = "build-unit"
	VerbAssemble  = "assemble"
)

// Config describes how to launch the collaborator.
type Config struct {
	Command []string
	Timeout time.Duration
	Dir     string
	Env     []string
}

// Client implements structure.Interpreter, structure.UnitBuilder and
// structure.AssemblyEngine.
type Client struct {
	runner process.Runner
	cfg    Config
	logger logging.Logger
}

var (
	_ structure.Interpreter    = (*Client)(nil)
	_ structure.UnitBuilder    = (*Client)(nil)
	_ structure.AssemblyEngine = (*Client)(nil)
)

// NewClient validates cfg and returns a Client.
func NewClient(runner process.Runner, cfg Config, logger logging.Logger) (*Client, error) {
	if runner == nil {
		return nil, apperrors.InvalidParam("bridge: runner is required")
	}
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, apperrors.InvalidParam("bridge: command is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{runner: runner, cfg: cfg, logger: logger.Named("bridge")}, nil
}

type reply struct {
	Error string `json:"error,omitempty"`
}

type interpretRequest struct {
	Descriptor string `json:"descriptor"`
}

type interpretReply struct {
	reply
	Units []structure.UnitSpec `json:"units"`
}

type buildReply struct {
	reply
	structure.BuildResult
}

type assembleRequest struct {
	Units  int    `json:"units"`
	Dir    string `json:"dir"`
	Output string `json:"output"`
}

// Interpret parses the canonical string.  Collaborator messages are
// returned verbatim with code DescriptorInvalid.
func (c *Client) Interpret(ctx context.Context, descriptor string) ([]structure.UnitSpec, error) {
	if strings.TrimSpace(descriptor) == "" {
		return nil, apperrors.New(apperrors.CodeDescriptorInvalid, "empty canonical string")
	}
	var out interpretReply
	if err := c.call(ctx, VerbInterpret, interpretRequest{Descriptor: descriptor}, &out, c.cfg.Timeout); err != nil {
		return nil, classify(err, apperrors.CodeDescriptorInvalid)
	}
	if out.Error != "" {
		return nil, apperrors.New(apperrors.CodeDescriptorInvalid, out.Error)
	}
	if len(out.Units) == 0 {
		return nil, apperrors.New(apperrors.CodeDescriptorInvalid, "canonical string describes no units")
	}
	structure.Renumber(out.Units)
	for _, u := range out.Units {
		if err := u.Stereo.Validate(); err != nil {
			return nil, apperrors.Newf(apperrors.CodeDescriptorInvalid, "unit %d: %v", u.Index, err)
		}
	}
	return out.Units, nil
}

// Build writes one unit PDB to req.OutputPath.
func (c *Client) Build(ctx context.Context, req structure.BuildRequest) (*structure.BuildResult, error) {
	var out buildReply
	if err := c.call(ctx, VerbBuildUnit, req, &out, c.cfg.Timeout); err != nil {
		return nil, classify(err, apperrors.CodeUnitBuildFailed)
	}
	if out.Error != "" {
		return nil, apperrors.Newf(apperrors.CodeUnitBuildFailed, "unit %d: %s", req.Index, out.Error)
	}
	return &out.BuildResult, nil
}

// Assemble starts the assembler in the background and returns immediately.
// The returned Assembly carries no molecule: the assembler only writes
// non_minimized.pdb.  Done receives the process outcome.  Cancelling ctx
// kills the assembler.
func (c *Client) Assemble(ctx context.Context, units int, dir string) (*structure.Assembly, error) {
	if units < 1 {
		return nil, apperrors.New(apperrors.CodeAssemblyFailed, apperrors.MsgAssemblyFailed).
			WithDetail("no units to assemble")
	}
	req := assembleRequest{Units: units, Dir: dir, Output: workspace.AssemblyOutputFile}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "bridge: encode assemble request")
	}

	done := make(chan error, 1)
	go func() {
		var out reply
		err := c.run(ctx, VerbAssemble, payload, &out, c.cfg.Timeout)
		switch {
		case err != nil:
			done <- assemblyError(classify(err, apperrors.CodeAssemblyFailed))
		case out.Error != "":
			done <- apperrors.New(apperrors.CodeAssemblyFailed, apperrors.MsgAssemblyFailed).WithDetail(out.Error)
		default:
			done <- nil
		}
		close(done)
	}()

	c.logger.Debug("assembly started", logging.Int("units", units), logging.String("dir", dir))
	return &structure.Assembly{Done: done}, nil
}

func (c *Client) call(ctx context.Context, verb string, in, out any, timeout time.Duration) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "bridge: encode "+verb+" request")
	}
	return c.run(ctx, verb, payload, out, timeout)
}

func (c *Client) run(ctx context.Context, verb string, payload []byte, out any, timeout time.Duration) error {
	args := append(append([]string{}, c.cfg.Command[1:]...), verb)
	res, err := c.runner.Run(ctx, process.Command{
		Name:    c.cfg.Command[0],
		Args:    args,
		Dir:     c.cfg.Dir,
		Env:     c.cfg.Env,
		Stdin:   payload,
		Timeout: timeout,
	})
	if err != nil {
		c.logger.WithContext(ctx).Warn("collaborator call failed", logging.String("verb", verb), logging.Err(err))
		return err
	}
	if len(strings.TrimSpace(string(res.Stdout))) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Stdout, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "bridge: malformed "+verb+" reply")
	}
	return nil
}

// classify maps runner failures onto AppErrors.  Collaborator exits keep
// their stderr as the message.
func classify(err error, code apperrors.ErrorCode) error {
	var exitErr *process.ExitError
	switch {
	case errors.As(err, &exitErr):
		msg := strings.TrimSpace(exitErr.Stderr)
		if msg == "" {
			msg = exitErr.Error()
		}
		return apperrors.Wrap(err, code, lastLine(msg))
	case errors.Is(err, process.ErrNotFound):
		return apperrors.Wrap(err, apperrors.CodeToolUnavailable, "chemistry collaborator is not installed")
	case errors.Is(err, process.ErrTimeout):
		return apperrors.Wrap(err, apperrors.CodeTimeout, "chemistry collaborator timed out")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return err
	}
	return apperrors.Wrap(err, code, err.Error())
}

func assemblyError(err error) error {
	var ae *apperrors.AppError
	if errors.As(err, &ae) && ae.Code == apperrors.CodeAssemblyFailed {
		return apperrors.New(apperrors.CodeAssemblyFailed, apperrors.MsgAssemblyFailed).
			WithDetail(ae.Message).WithCause(err)
	}
	return err
}

// lastLine keeps the final line of a multi-line traceback.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

//Personal.AI order the ending
