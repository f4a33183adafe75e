package tintbar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StartupManager is the auto-launch registration subsystem, consumed as an
// external collaborator.
type StartupManager interface {
	// AcquireTask starts resolving the startup registration task. The
	// returned result is single-use: it must be awaited exactly once per
	// Application lifetime, and its boolean reports whether registration
	// is available. A second acquisition fails with
	// ErrStartupTaskConsumed.
	AcquireTask() (*AsyncResult[bool], error)

	// Enable turns auto-launch on.
	Enable(ctx context.Context) error

	// Disable turns auto-launch off. Failures are logged by the
	// implementation, not surfaced.
	Disable()
}

// MarkerStartup is a StartupManager that records auto-launch as a marker
// file in a directory, standing in for the platform startup-task store.
type MarkerStartup struct {
	dir    string
	logger Logger

	mu       sync.Mutex
	acquired bool
}

// NewMarkerStartup creates a marker-file startup manager rooted at dir.
func NewMarkerStartup(dir string, logger Logger) *MarkerStartup {
	return &MarkerStartup{dir: dir, logger: logger}
}

func (s *MarkerStartup) markerPath() string {
	return filepath.Join(s.dir, "autostart")
}

// AcquireTask resolves the registration task exactly once.
func (s *MarkerStartup) AcquireTask() (*AsyncResult[bool], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acquired {
		return nil, ErrStartupTaskConsumed
	}
	s.acquired = true

	result := NewAsyncResult[bool]()
	go func() {
		err := os.MkdirAll(s.dir, 0o755)
		if err != nil {
			s.logger.Warn("Startup registration unavailable", "error", err)
		}
		result.Complete(err == nil)
	}()
	return result, nil
}

// Enable writes the auto-launch marker.
func (s *MarkerStartup) Enable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(s.markerPath(), []byte("enabled\n"), 0o644); err != nil {
		return fmt.Errorf("enabling startup registration: %w", err)
	}
	return nil
}

// Disable removes the auto-launch marker. A missing marker is fine.
func (s *MarkerStartup) Disable() {
	if err := os.Remove(s.markerPath()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to disable startup registration", "error", err)
	}
}

// Enabled reports whether the marker currently exists.
func (s *MarkerStartup) Enabled() bool {
	_, err := os.Stat(s.markerPath())
	return err == nil
}
