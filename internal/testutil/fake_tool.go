package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// FixedTime is a stable clock value for tests.
var FixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.  Tests use it to stand in for external chemistry tools.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("testutil: write script %s: %v", path, err)
	}
	return path
}

// SamplePDB is a minimal two-atom PDB document.
const SamplePDB = `HETATM    1  C1  GLC A   1       0.000   0.000   0.000  1.00  0.00           C
HETATM    2  O1  GLC A   1       1.430   0.000   0.000  1.00  0.00           O
CONECT    1    2
END
`

//Personal.AI order the ending
