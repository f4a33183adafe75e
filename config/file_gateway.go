// Package config persists the application configuration to a single file and
// watches it for external edits. The serialization format follows the file
// extension, and environment variables prefixed with TINTBAR_ override
// individual fields on every load.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/browser"

	"github.com/tintbar/tintbar"
)

// FileGateway implements tintbar.ConfigGateway over one configuration file.
type FileGateway struct {
	path   string
	codec  codec
	logger tintbar.Logger

	mu        sync.Mutex
	cfg       *tintbar.Config
	onChanged func(*tintbar.Config)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a gateway for the file at path. The file may not exist yet;
// the gateway then starts from defaults and SaveConfig creates it.
func New(path string, logger tintbar.Logger) (*FileGateway, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	g := &FileGateway{
		path:   path,
		codec:  c,
		logger: logger,
		cfg:    tintbar.DefaultConfig(),
	}

	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

// Exists reports whether the configuration file is present on disk.
func (g *FileGateway) Exists() bool {
	_, err := os.Stat(g.path)
	return err == nil
}

// load refreshes the in-memory snapshot from disk and the environment. A
// missing file is not an error; defaults apply.
func (g *FileGateway) load() error {
	cfg := tintbar.DefaultConfig()

	data, err := os.ReadFile(g.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run; nothing to read yet.
	case err != nil:
		return fmt.Errorf("failed to read configuration file: %w", err)
	default:
		if err := g.codec.decode(data, cfg); err != nil {
			return err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return err
	}

	g.mu.Lock()
	g.cfg = cfg
	g.mu.Unlock()
	return nil
}

// Config returns a copy of the current snapshot.
func (g *FileGateway) Config() *tintbar.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	cfg := *g.cfg
	return &cfg
}

// SaveConfig writes the current snapshot to disk, creating the file and its
// directory as needed.
func (g *FileGateway) SaveConfig() error {
	g.mu.Lock()
	cfg := *g.cfg
	g.mu.Unlock()

	data, err := g.codec.encode(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := os.WriteFile(g.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	g.logger.Debug("Configuration saved", "path", g.path)
	return nil
}

// EditConfigFile opens the configuration file with the user's associated
// editor, creating it first if it does not exist.
func (g *FileGateway) EditConfigFile() error {
	if !g.Exists() {
		if err := g.SaveConfig(); err != nil {
			return err
		}
	}
	if err := browser.OpenFile(g.path); err != nil {
		return fmt.Errorf("failed to open configuration file: %w", err)
	}
	return nil
}

// DeleteConfigFile removes the configuration file. Idempotent.
func (g *FileGateway) DeleteConfigFile() error {
	err := os.Remove(g.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete configuration file: %w", err)
	}
	return nil
}

// OnConfigurationChanged registers the callback invoked with a fresh
// snapshot after every external file change. The callback runs on the
// watcher goroutine.
func (g *FileGateway) OnConfigurationChanged(fn func(*tintbar.Config)) {
	g.mu.Lock()
	g.onChanged = fn
	g.mu.Unlock()
}

// Watch starts monitoring the file's directory for changes to the file.
// Watching the directory instead of the file keeps the watch alive across
// editors that replace the file on save.
func (g *FileGateway) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch configuration directory: %w", err)
	}

	g.watcher = watcher
	g.done = make(chan struct{})
	go g.watchLoop()

	g.logger.Debug("Watching configuration file", "path", g.path)
	return nil
}

func (g *FileGateway) watchLoop() {
	defer close(g.done)

	for {
		select {
		case event, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if event.Name != g.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if err := g.load(); err != nil {
				g.logger.Warn("Ignoring unreadable configuration change", "path", g.path, "error", err)
				continue
			}

			g.mu.Lock()
			fn := g.onChanged
			g.mu.Unlock()
			if fn != nil {
				fn(g.Config())
			}

		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			g.logger.Warn("Configuration watcher error", "error", err)
		}
	}
}

// Close stops the watcher, if one was started.
func (g *FileGateway) Close() error {
	if g.watcher == nil {
		return nil
	}
	err := g.watcher.Close()
	<-g.done
	return err
}
