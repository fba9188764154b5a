package structure

import (
	"bufio"
	"bytes"
	"errors"
	"os"
)

// ErrNoAtoms reports PDB text without a single ATOM or HETATM record.
var ErrNoAtoms = errors.New("structure: PDB contains no atom records")

// Molecule is the handle passed between the assembly engine and the
// toolkit.  It is backed by PDB text on disk.
type Molecule struct {
	// Path is the PDB file the toolkit reads.
	Path string
	// PDB is the file content at parse time.
	PDB []byte
	// Atoms is the number of ATOM/HETATM records.
	Atoms int
}

// Valid reports whether m can be exported.
func (m *Molecule) Valid() bool {
	return m != nil && m.Path != "" && m.Atoms > 0
}

// ParsePDB scans data for atom records and returns a Molecule bound to path.
func ParsePDB(path string, data []byte) (*Molecule, error) {
	n := countAtoms(data)
	if n == 0 {
		return nil, ErrNoAtoms
	}
	return &Molecule{Path: path, PDB: data, Atoms: n}, nil
}

// LoadPDB reads path and parses it.
func LoadPDB(path string) (*Molecule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePDB(path, data)
}

func countAtoms(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if bytes.HasPrefix(line, []byte("ATOM  ")) || bytes.HasPrefix(line, []byte("HETATM")) {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
