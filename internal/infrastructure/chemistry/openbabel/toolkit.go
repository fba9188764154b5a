// Package openbabel adapts the Open Babel command-line tool to the structure
// ports: SMILES export, 2-D depiction and geometry minimization.
package openbabel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/process"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

// DefaultBinary is looked up on PATH.
const DefaultBinary = "obabel"

// ToolkitConfig configures conversions.
type ToolkitConfig struct {
	Binary  string
	Timeout time.Duration
}

// Toolkit implements structure.Toolkit.
type Toolkit struct {
	runner process.Runner
	cfg    ToolkitConfig
	logger logging.Logger
}

var _ structure.Toolkit = (*Toolkit)(nil)

// NewToolkit returns a Toolkit.  An empty Binary selects DefaultBinary.
func NewToolkit(runner process.Runner, cfg ToolkitConfig, logger logging.Logger) *Toolkit {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Toolkit{runner: runner, cfg: cfg, logger: logger.Named("toolkit")}
}

// SMILES converts the molecule to canonical isomeric SMILES.  Open Babel
// canonical output keeps stereo unless told otherwise.
func (t *Toolkit) SMILES(ctx context.Context, mol *structure.Molecule) (string, error) {
	if !mol.Valid() {
		return "", apperrors.New(apperrors.CodeInvalidMolecule, apperrors.MsgInvalidMolecule)
	}
	res, err := t.runner.Run(ctx, process.Command{
		Name:    t.cfg.Binary,
		Args:    []string{"-ipdb", mol.Path, "-ocan"},
		Timeout: t.cfg.Timeout,
	})
	if err != nil {
		return "", toolError(err, apperrors.ErrCodeExternalService, "SMILES conversion failed")
	}
	smiles := firstField(res.Stdout)
	if smiles == "" {
		return "", apperrors.New(apperrors.CodeInvalidMolecule, apperrors.MsgInvalidMolecule).
			WithDetail(strings.TrimSpace(string(res.Stderr)))
	}
	return smiles, nil
}

// Render lays the molecule out in 2-D and writes a PNG to out without the
// molecule title (-xd).  Size, atom indices and bond widths above 1 (-xt,
// thicker lines) map onto the PNG writer's options; label font size,
// kekulization and wedge bonds are accepted and ignored.
func (t *Toolkit) Render(ctx context.Context, mol *structure.Molecule, out string, opts structure.RenderOptions) ([]byte, error) {
	if !mol.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidMolecule, apperrors.MsgInvalidMolecule)
	}
	_, err := t.runner.Run(ctx, process.Command{
		Name:    t.cfg.Binary,
		Args:    renderArgs(mol.Path, out, opts),
		Timeout: t.cfg.Timeout,
	})
	if err != nil {
		return nil, toolError(err, apperrors.CodeRenderFailed, apperrors.MsgRenderFailed)
	}
	png, err := os.ReadFile(out)
	if err != nil || len(png) == 0 {
		return nil, apperrors.New(apperrors.CodeRenderFailed, apperrors.MsgRenderFailed).
			WithDetail("no image produced")
	}
	return png, nil
}

func renderArgs(in, out string, opts structure.RenderOptions) []string {
	args := []string{"-ipdb", in, "-O", out, "--gen2D", "-xd"}
	switch {
	case opts.Width > 0 && opts.Width == opts.Height:
		args = append(args, "-xp", strconv.Itoa(opts.Width))
	default:
		if opts.Width > 0 {
			args = append(args, "-xw", strconv.Itoa(opts.Width))
		}
		if opts.Height > 0 {
			args = append(args, "-xh", strconv.Itoa(opts.Height))
		}
	}
	if opts.BondLineWidth > 1 {
		args = append(args, "-xt")
	}
	if opts.ShowAtomIndices {
		args = append(args, "-xi")
	}
	return args
}

// Version returns the first line of `obabel -V`.
func (t *Toolkit) Version(ctx context.Context) (string, error) {
	res, err := t.runner.Run(ctx, process.Command{Name: t.cfg.Binary, Args: []string{"-V"}, Timeout: 10 * time.Second})
	if err != nil {
		return "", toolError(err, apperrors.ErrCodeExternalService, "obabel version check failed")
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	return line, nil
}

func firstField(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if f := strings.Fields(sc.Text()); len(f) > 0 {
			return f[0]
		}
	}
	return ""
}

func toolError(err error, code apperrors.ErrorCode, msg string) error {
	var exitErr *process.ExitError
	switch {
	case errors.Is(err, process.ErrNotFound):
		return apperrors.Wrap(err, apperrors.CodeToolUnavailable, "obabel is not installed")
	case errors.Is(err, process.ErrTimeout):
		return apperrors.Wrap(err, code, msg).WithDetail("timed out")
	case errors.As(err, &exitErr):
		return apperrors.Wrap(err, code, msg).WithDetail(exitErr.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperrors.Wrap(err, code, msg)
}

//Personal.AI order the ending
