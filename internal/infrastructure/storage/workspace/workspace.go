// Package workspace manages the per-session scratch directories that hold
// every artifact of one generation or minimization request.
//
// Layout under the configured root:
//
//	<root>/<session-id>/unidad_<n>.pdb
//	<root>/<session-id>/non_minimized.pdb
//	<root>/<session-id>/estructura.png
//	<root>/<session-id>/temp_for_min.pdb
//	<root>/<session-id>/minimized.pdb
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

// Well-known artifact names.
const (
	AssemblyOutputFile    = "non_minimized.pdb"
	ImageFile             = "estructura.png"
	MinimizationInputFile = "temp_for_min.pdb"
	MinimizedFile         = "minimized.pdb"
)

// UnitFile returns the file name of the 1-based unit index.
func UnitFile(index int) string {
	return fmt.Sprintf("unidad_%d.pdb", index)
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Workspace is one allocated session directory.
type Workspace struct {
	// ID is the opaque session identifier.
	ID string
	// Dir is the directory as seen by clients: the configured root joined with ID.
	Dir string
}

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Info describes an existing workspace directory.
type Info struct {
	ID      string
	Dir     string
	ModTime time.Time
}

// Manager allocates and resolves workspaces confined to one root directory.
// It holds no per-request state and is safe for concurrent use.
type Manager struct {
	root    string
	absRoot string
	newID   func() string
	logger  logging.Logger
}

// Option customises a Manager.
type Option func(*Manager)

// WithIDGenerator replaces the UUIDv4 session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewManager creates the root directory if needed and returns a Manager for it.
func NewManager(root string, logger logging.Logger, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(root) == "" {
		return nil, apperrors.InvalidParam("workspace root must not be empty")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create workspace root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to resolve workspace root")
	}
	// Resolve symlinks on the root itself so confinement checks compare real paths.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	m := &Manager{
		root:    root,
		absRoot: abs,
		newID:   func() string { return uuid.New().String() },
		logger:  logger.Named("workspace"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Root returns the root directory as configured.
func (m *Manager) Root() string { return m.root }

// Allocate creates a fresh, uniquely named workspace directory.
func (m *Manager) Allocate(ctx context.Context) (*Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Re-create the root in case an operator removed it while running.
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create workspace root")
	}

	const attempts = 3
	var lastErr error
	for i := 0; i < attempts; i++ {
		id := m.newID()
		if !idPattern.MatchString(id) {
			return nil, apperrors.Newf(apperrors.CodeInternal, "generated workspace id %q is not a valid directory name", id)
		}
		ws := &Workspace{ID: id, Dir: filepath.Join(m.root, id)}
		// Mkdir (not MkdirAll) fails on an existing directory, so two
		// requests can never share one.
		err := os.Mkdir(ws.Dir, 0o755)
		if err == nil {
			m.logger.Debug("workspace allocated", logging.String(logging.FieldSessionID, id))
			return ws, nil
		}
		if !os.IsExist(err) {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create workspace directory")
		}
		lastErr = err
	}
	return nil, apperrors.Wrap(lastErr, apperrors.CodeInternal, "failed to allocate a unique workspace")
}

// Resolve maps a client-supplied reference to a workspace.  ref is either the
// user_dir returned by a previous generation or a bare session id.  The
// reference must name a directory that is a direct child of the root.
func (m *Manager) Resolve(ref string) (*Workspace, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.New(apperrors.CodeWorkspaceInvalid, apperrors.MsgInvalidDirectory)
	}

	var candidate string
	switch {
	case !strings.ContainsAny(ref, `/\`):
		candidate = filepath.Join(m.absRoot, ref)
	case filepath.IsAbs(ref):
		candidate = filepath.Clean(ref)
	default:
		abs, err := filepath.Abs(ref)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeWorkspaceInvalid, apperrors.MsgInvalidDirectory)
		}
		candidate = abs
	}
	if real, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(real, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(m.absRoot, candidate)
	if err != nil || strings.ContainsRune(rel, filepath.Separator) || !idPattern.MatchString(rel) {
		m.logger.Warn("workspace reference rejected", logging.String("ref", ref))
		return nil, apperrors.New(apperrors.CodeWorkspaceInvalid, apperrors.MsgInvalidDirectory).
			WithDetail("reference is outside the workspace root")
	}

	return m.Lookup(rel)
}

// Lookup returns the workspace with the given id.
func (m *Manager) Lookup(id string) (*Workspace, error) {
	if !idPattern.MatchString(id) {
		return nil, apperrors.New(apperrors.CodeWorkspaceInvalid, apperrors.MsgInvalidDirectory)
	}
	fi, err := os.Lstat(filepath.Join(m.absRoot, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.CodeWorkspaceNotFound, apperrors.MsgInvalidDirectory)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat workspace")
	}
	if fi.Mode()&os.ModeSymlink != 0 || !fi.IsDir() {
		return nil, apperrors.New(apperrors.CodeWorkspaceInvalid, apperrors.MsgInvalidDirectory)
	}
	return &Workspace{ID: id, Dir: filepath.Join(m.root, id)}, nil
}

// Remove deletes the workspace directory and everything in it.
func (m *Manager) Remove(id string) error {
	ws, err := m.Lookup(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to remove workspace")
	}
	m.logger.Info("workspace removed", logging.String(logging.FieldSessionID, id))
	return nil
}

// List returns every workspace directory under the root, oldest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list workspaces")
	}
	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !idPattern.MatchString(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{ID: e.Name(), Dir: filepath.Join(m.root, e.Name()), ModTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.Before(out[j].ModTime) })
	return out, nil
}

// Expired returns the workspaces last modified before now minus ttl.
func (m *Manager) Expired(ttl time.Duration, now time.Time) ([]Info, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-ttl)
	var out []Info
	for _, info := range all {
		if info.ModTime.Before(cutoff) {
			out = append(out, info)
		}
	}
	return out, nil
}

//Personal.AI order the ending
