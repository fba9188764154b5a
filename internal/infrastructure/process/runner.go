// Package process runs external command-line tools with bounded time and
// captured output.  Every child runs in its own process group and the whole
// group is killed on timeout or cancellation, so tools that fork helpers do
// not leave orphans behind.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

// DefaultMaxOutput caps the bytes retained per stream.
const DefaultMaxOutput = 8 << 20

// waitDelay bounds how long Wait blocks on inherited pipes after a kill.
const waitDelay = 5 * time.Second

var (
	// ErrTimeout reports that the command exceeded Command.Timeout.
	ErrTimeout = errors.New("process: command timed out")
	// ErrNotFound reports that the executable could not be located.
	ErrNotFound = errors.New("process: executable not found")
)

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.ExitCode, msg)
}

// Command describes one invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string // appended to the parent environment when non-empty
	Stdin   []byte
	Timeout time.Duration
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	logger    logging.Logger
	maxOutput int
}

// NewExecRunner returns an ExecRunner.  maxOutput <= 0 selects DefaultMaxOutput.
func NewExecRunner(logger logging.Logger, maxOutput int) *ExecRunner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	return &ExecRunner{logger: logger.Named("process"), maxOutput: maxOutput}
}

// Run starts cmd and waits for it.  The returned error is nil, ErrTimeout,
// ErrNotFound, *ExitError, the parent context's error, or a start failure.
// The Result is non-nil whenever the process was started.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	setProcessGroup(c)
	c.WaitDelay = waitDelay

	stdout := &cappedBuffer{limit: r.maxOutput}
	stderr := &cappedBuffer{limit: r.maxOutput}
	c.Stdout = stdout
	c.Stderr = stderr

	log := r.logger.WithContext(ctx).With(logging.String("command", cmd.Name))
	start := time.Now()
	if err := c.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cmd.Name)
		}
		return nil, fmt.Errorf("process: start %s: %w", cmd.Name, err)
	}

	waitErr := c.Wait()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if waitErr == nil {
		log.Debug("command finished", logging.Duration("elapsed", res.Duration))
		return res, nil
	}

	var exitErr *exec.ExitError
	realExit := errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0
	if !realExit && runCtx.Err() != nil {
		res.ExitCode = -1
		if ctx.Err() != nil {
			log.Info("command cancelled", logging.Duration("elapsed", res.Duration))
			return res, ctx.Err()
		}
		log.Warn("command timed out", logging.Duration("timeout", cmd.Timeout))
		return res, ErrTimeout
	}
	if realExit {
		res.ExitCode = exitErr.ExitCode()
		log.Info("command failed", logging.Int("exit_code", res.ExitCode))
		return res, &ExitError{Name: cmd.Name, ExitCode: res.ExitCode, Stderr: string(res.Stderr)}
	}
	res.ExitCode = -1
	return res, fmt.Errorf("process: wait %s: %w", cmd.Name, waitErr)
}

// cappedBuffer keeps the first limit bytes written and discards the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

//Personal.AI order the ending
