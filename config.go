package tintbar

import (
	"sync"
)

// Config is an immutable configuration snapshot. It is handed to dependents
// at construction and refreshed through the gateway's change notification;
// mutation always goes through the gateway, never in place.
type Config struct {
	Theme        string `toml:"theme" yaml:"theme" env:"THEME"`
	Language     string `toml:"language" yaml:"language" env:"LANGUAGE"`
	HideTrayIcon bool   `toml:"hide_tray_icon" yaml:"hide_tray_icon" env:"HIDE_TRAY_ICON"`
	LogVerbosity string `toml:"log_verbosity" yaml:"log_verbosity" env:"LOG_VERBOSITY"`
}

// DefaultConfig returns the configuration used before any file exists.
func DefaultConfig() *Config {
	return &Config{
		Theme:        "auto",
		Language:     "en-US",
		LogVerbosity: "info",
	}
}

// ConfigGateway is the configuration persistence subsystem, consumed as an
// external collaborator. The core never touches the file itself.
type ConfigGateway interface {
	// Config returns the current immutable snapshot.
	Config() *Config

	// SaveConfig persists the current snapshot, creating the file if it
	// does not exist yet.
	SaveConfig() error

	// EditConfigFile opens the config file in the user's editor.
	EditConfigFile() error

	// DeleteConfigFile removes the config file if present.
	DeleteConfigFile() error

	// OnConfigurationChanged registers the callback invoked whenever the
	// on-disk configuration changes externally. The callback receives the
	// fresh snapshot and may be invoked from an arbitrary thread; the core
	// marshals to the main thread itself.
	OnConfigurationChanged(fn func(*Config))
}

// MemoryGateway is a ConfigGateway with no backing file. It is the default
// gateway and the test double: Replace simulates an external edit.
type MemoryGateway struct {
	mu        sync.Mutex
	cfg       *Config
	exists    bool
	onChanged func(*Config)
}

// NewMemoryGateway creates a gateway holding the given snapshot.
func NewMemoryGateway(cfg *Config) *MemoryGateway {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &MemoryGateway{cfg: cfg}
}

// Config returns a copy of the current snapshot.
func (g *MemoryGateway) Config() *Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	cfg := *g.cfg
	return &cfg
}

// SaveConfig marks the virtual file as existing.
func (g *MemoryGateway) SaveConfig() error {
	g.mu.Lock()
	g.exists = true
	g.mu.Unlock()
	return nil
}

// EditConfigFile is a no-op; there is no file to open.
func (g *MemoryGateway) EditConfigFile() error {
	return nil
}

// DeleteConfigFile discards the virtual file. Idempotent.
func (g *MemoryGateway) DeleteConfigFile() error {
	g.mu.Lock()
	g.exists = false
	g.mu.Unlock()
	return nil
}

// OnConfigurationChanged registers the external-change callback.
func (g *MemoryGateway) OnConfigurationChanged(fn func(*Config)) {
	g.mu.Lock()
	g.onChanged = fn
	g.mu.Unlock()
}

// Exists reports whether the virtual file currently exists.
func (g *MemoryGateway) Exists() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exists
}

// Replace swaps in a new snapshot and fires the change callback, the way an
// external file edit would.
func (g *MemoryGateway) Replace(cfg *Config) {
	g.mu.Lock()
	g.cfg = cfg
	g.exists = true
	fn := g.onChanged
	g.mu.Unlock()

	if fn != nil {
		snapshot := *cfg
		fn(&snapshot)
	}
}
