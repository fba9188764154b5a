package structure

import (
	"context"
	"encoding/json"
)

// Interpreter turns a canonical string into ordered unit specifications.
type Interpreter interface {
	Interpret(ctx context.Context, descriptor string) ([]UnitSpec, error)
}

// BuildRequest is one unit builder invocation.
type BuildRequest struct {
	Index        int             `json:"index"`
	Stereo       StereoMap       `json:"stereo"`
	Substitution json.RawMessage `json:"substitution,omitempty"`
	OutputPath   string          `json:"output_path"`
}

// BuildResult is what the unit builder reports back.
type BuildResult struct {
	// SMILES is the isomeric SMILES of the unit.
	SMILES string `json:"smiles"`
}

// UnitBuilder writes one unit PDB file.
type UnitBuilder interface {
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// Assembly is the outcome of starting the assembly engine.
type Assembly struct {
	// Molecule is nil when the engine did not return a usable handle.
	Molecule *Molecule
	// Done, when non-nil, receives exactly one value once the engine has
	// finished writing its output: nil on success or the failure cause.
	Done <-chan error
}

// AssemblyEngine combines n units found in dir and eventually writes
// non_minimized.pdb there.
type AssemblyEngine interface {
	Assemble(ctx context.Context, units int, dir string) (*Assembly, error)
}

// RenderOptions controls the 2-D depiction.
type RenderOptions struct {
	Width             int
	Height            int
	BondLineWidth     int
	AtomLabelFontSize int
	ShowAtomIndices   bool
	Kekulize          bool
	WedgeBonds        bool
}

// DefaultRenderOptions is the 1000x1000 depiction style.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:             1000,
		Height:            1000,
		BondLineWidth:     3,
		AtomLabelFontSize: 16,
		Kekulize:          true,
		WedgeBonds:        true,
	}
}

// Toolkit exports a molecule.
type Toolkit interface {
	// SMILES returns the canonical isomeric SMILES.
	SMILES(ctx context.Context, mol *Molecule) (string, error)
	// Render computes 2-D coordinates, writes a PNG to out and returns its bytes.
	Render(ctx context.Context, mol *Molecule, out string, opts RenderOptions) ([]byte, error)
}

// MinimizeRequest names the input and output PDB files.
type MinimizeRequest struct {
	Input  string
	Output string
}

// Minimizer adds hydrogens and minimizes geometry.
type Minimizer interface {
	Minimize(ctx context.Context, req MinimizeRequest) error
}

//Personal.AI order the ending
