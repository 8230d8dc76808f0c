package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// Manager handles the scratch working directory of a run
type Manager struct {
	baseDir string
	dir     string
	runID   string
	keep    bool // If true, Cleanup leaves the directory in place
}

// NewManager creates a workspace manager rooted at baseDir (system temp dir when empty)
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Keep makes Cleanup a no-op so the scratch copy can be inspected.
func (m *Manager) Keep(keep bool) *Manager {
	m.keep = keep
	return m
}

// Create creates a uniquely named scratch directory
func (m *Manager) Create() error {
	if m.dir != "" {
		return fmt.Errorf("workspace already created: %s", m.dir)
	}

	runID := uuid.NewString()
	dir := filepath.Join(m.baseDir, "texsubmit-"+runID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.dir = dir
	m.runID = runID
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path to the workspace directory
func (m *Manager) GetPath() string {
	return m.dir
}

// RunID returns the identifier embedded in the workspace name
func (m *Manager) RunID() string {
	return m.runID
}

// Join returns a path inside the workspace without creating it.
func (m *Manager) Join(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	return filepath.Join(m.dir, name), nil
}

// Cleanup removes the workspace directory. Safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}

	if m.keep {
		slog.Info("Keeping workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}

	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
