//go:build unix

package process

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

func newRunner() *ExecRunner {
	return NewExecRunner(logging.NewNopLogger(), 0)
}

func TestRun_Success(t *testing.T) {
	res, err := newRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
}

func TestRun_StdinDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	res, err := newRunner().Run(context.Background(), Command{
		Name:  "sh",
		Args:  []string{"-c", `cat; pwd; echo "$CDFORGE_TEST_VAR"`},
		Dir:   dir,
		Env:   []string{"CDFORGE_TEST_VAR=hello"},
		Stdin: []byte("payload\n"),
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(res.Stdout)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "payload", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], filepath.Base(dir)), lines[1])
	assert.Equal(t, "hello", lines[2])
}

func TestRun_NonZeroExit(t *testing.T) {
	res, err := newRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'bad input' >&2; exit 3"},
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Contains(t, exitErr.Error(), "bad input")
	assert.Equal(t, 3, res.ExitCode)
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	res, err := newRunner().Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: 100 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRun_TimeoutKillsProcessGroup(t *testing.T) {
	// The grandchild holds stdout open; without a group kill Wait would
	// block until WaitDelay or the sleep ends.
	start := time.Now()
	_, err := newRunner().Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30 & wait"},
		Timeout: 100 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := newRunner().Run(ctx, Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: time.Minute,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestRun_ExecutableNotFound(t *testing.T) {
	res, err := newRunner().Run(context.Background(), Command{Name: "cdforge-definitely-missing-tool"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, res)
}

func TestRun_OutputIsCapped(t *testing.T) {
	r := NewExecRunner(nil, 16)
	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf '%0100d' 0"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Stdout, 16)
}

func TestCommand_String(t *testing.T) {
	c := Command{Name: "obabel", Args: []string{"in.pdb", "-h"}}
	assert.Equal(t, "obabel in.pdb -h", c.String())
}

//Personal.AI order the ending
