//go:build unix

package openbabel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/process"
	"github.com/turtacn/cdforge/internal/testutil"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	args := m.Called(ctx, cmd)
	res, _ := args.Get(0).(*process.Result)
	return res, args.Error(1)
}

func sampleMolecule(t *testing.T) *structure.Molecule {
	t.Helper()
	path := filepath.Join(t.TempDir(), "non_minimized.pdb")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SamplePDB), 0o644))
	mol, err := structure.LoadPDB(path)
	require.NoError(t, err)
	return mol
}

func TestMinimizer_CommandLine(t *testing.T) {
	r := &mockRunner{}
	m := NewMinimizer(r, MinimizerConfig{Binary: "obabel", Timeout: time.Minute}, nil)
	req := structure.MinimizeRequest{Input: "ws/temp_for_min.pdb", Output: "ws/minimized.pdb"}

	r.On("Run", mock.Anything, process.Command{
		Name:    "obabel",
		Args:    []string{"ws/temp_for_min.pdb", "-h", "-O", "ws/minimized.pdb", "--minimize"},
		Timeout: time.Minute,
	}).Return(&process.Result{}, nil).Once()

	require.NoError(t, m.Minimize(context.Background(), req))
	r.AssertExpectations(t)
}

func TestMinimizer_Defaults(t *testing.T) {
	m := NewMinimizer(&mockRunner{}, MinimizerConfig{}, nil)
	assert.Equal(t, DefaultBinary, m.cfg.Binary)
	assert.Equal(t, 180*time.Second, m.cfg.Timeout)
}

func TestMinimizer_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    apperrors.ErrorCode
		message string
	}{
		{"timeout", process.ErrTimeout, apperrors.CodeMinimizationTimeout, "Minimization timeout"},
		{"exit", &process.ExitError{Name: "obabel", ExitCode: 1, Stderr: "0 molecules converted"}, apperrors.CodeMinimizationFailed,
			"Minimization error: obabel exited with status 1: 0 molecules converted"},
		{"missing", process.ErrNotFound, apperrors.CodeToolUnavailable, "obabel is not installed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &mockRunner{}
			r.On("Run", mock.Anything, mock.Anything).Return(nil, tc.err)
			err := NewMinimizer(r, MinimizerConfig{}, nil).Minimize(context.Background(), structure.MinimizeRequest{Input: "a", Output: "b"})

			var ae *apperrors.AppError
			require.True(t, apperrors.As(err, &ae))
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.PublicMessage())
		})
	}
}

func TestMinimizer_ContextCancelPassesThrough(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	err := NewMinimizer(r, MinimizerConfig{}, nil).Minimize(context.Background(), structure.MinimizeRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinimizer_RealProcessTimeout(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", "sleep 30")
	m := NewMinimizer(process.NewExecRunner(logging.NewNopLogger(), 0), MinimizerConfig{Binary: bin, Timeout: 100 * time.Millisecond}, nil)

	start := time.Now()
	err := m.Minimize(context.Background(), structure.MinimizeRequest{Input: "a", Output: "b"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMinimizationTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestToolkit_SMILES(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", `printf 'OC[C@H]1OC\tnon_minimized\n'; echo "1 molecule converted" >&2`)
	tk := NewToolkit(process.NewExecRunner(nil, 0), ToolkitConfig{Binary: bin, Timeout: 10 * time.Second}, nil)

	smiles, err := tk.SMILES(context.Background(), sampleMolecule(t))
	require.NoError(t, err)
	assert.Equal(t, "OC[C@H]1OC", smiles)
}

func TestToolkit_SMILESEmptyOutput(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", `echo "0 molecules converted" >&2`)
	tk := NewToolkit(process.NewExecRunner(nil, 0), ToolkitConfig{Binary: bin}, nil)

	_, err := tk.SMILES(context.Background(), sampleMolecule(t))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidMolecule))
}

func TestToolkit_RejectsInvalidMolecule(t *testing.T) {
	tk := NewToolkit(&mockRunner{}, ToolkitConfig{}, nil)
	_, err := tk.SMILES(context.Background(), &structure.Molecule{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidMolecule))
	_, err = tk.Render(context.Background(), nil, "x.png", structure.DefaultRenderOptions())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidMolecule))
}

func TestToolkit_Render(t *testing.T) {
	// The fake writes its arguments into the file named after -O.
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-O" ]; then out="$a"; fi
  prev="$a"
done
echo "$@" > "$out"`)
	tk := NewToolkit(process.NewExecRunner(nil, 0), ToolkitConfig{Binary: bin}, nil)
	mol := sampleMolecule(t)
	out := filepath.Join(filepath.Dir(mol.Path), "estructura.png")

	png, err := tk.Render(context.Background(), mol, out, structure.DefaultRenderOptions())
	require.NoError(t, err)
	assert.Contains(t, string(png), "--gen2D")
	assert.Contains(t, string(png), "-xp 1000")
	assert.FileExists(t, out)
}

func TestToolkit_RenderFailure(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", `echo "cairo missing" >&2; exit 1`)
	tk := NewToolkit(process.NewExecRunner(nil, 0), ToolkitConfig{Binary: bin}, nil)

	_, err := tk.Render(context.Background(), sampleMolecule(t), filepath.Join(t.TempDir(), "x.png"), structure.DefaultRenderOptions())
	var ae *apperrors.AppError
	require.True(t, apperrors.As(err, &ae))
	assert.Equal(t, apperrors.CodeRenderFailed, ae.Code)
	assert.Equal(t, "Error al generar coordenadas 2D", ae.Message)
}

func TestRenderArgs(t *testing.T) {
	args := renderArgs("in.pdb", "out.png", structure.RenderOptions{Width: 800, Height: 600, ShowAtomIndices: true})
	assert.Equal(t, []string{"-ipdb", "in.pdb", "-O", "out.png", "--gen2D", "-xd", "-xw", "800", "-xh", "600", "-xi"}, args)
}

func TestRenderArgs_DefaultStyle(t *testing.T) {
	args := renderArgs("in.pdb", "out.png", structure.DefaultRenderOptions())
	assert.Equal(t, []string{"-ipdb", "in.pdb", "-O", "out.png", "--gen2D", "-xd", "-xp", "1000", "-xt"}, args)
}

func TestToolkit_Version(t *testing.T) {
	bin := testutil.WriteScript(t, t.TempDir(), "obabel", `echo "Open Babel 3.1.0 -- Oct  9 2023"`)
	v, err := NewToolkit(process.NewExecRunner(nil, 0), ToolkitConfig{Binary: bin}, nil).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Open Babel 3.1.0 -- Oct  9 2023", v)
}

//Personal.AI order the ending
