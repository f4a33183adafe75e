package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintbar/tintbar"
)

func TestNewRejectsUnknownExtension(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "config.ini"), tintbar.NopLogger{})
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestMissingFileStartsFromDefaults(t *testing.T) {
	g, err := New(filepath.Join(t.TempDir(), "config.toml"), tintbar.NopLogger{})
	require.NoError(t, err)

	assert.False(t, g.Exists())
	assert.Equal(t, tintbar.DefaultConfig(), g.Config())
}

func TestSaveAndReloadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, g.SaveConfig())
	require.True(t, g.Exists())

	// A second gateway reads back what the first wrote.
	g2, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, g.Config(), g2.Config())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\nhide_tray_icon: true\n"), 0o644))

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)

	cfg := g.Config()
	assert.Equal(t, "dark", cfg.Theme)
	assert.True(t, cfg.HideTrayIcon)
	// Unset fields keep their defaults.
	assert.Equal(t, "en-US", cfg.Language)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"light\"\n"), 0o644))

	t.Setenv("TINTBAR_THEME", "dark")
	t.Setenv("TINTBAR_HIDE_TRAY_ICON", "true")

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)

	cfg := g.Config()
	assert.Equal(t, "dark", cfg.Theme)
	assert.True(t, cfg.HideTrayIcon)
}

func TestDeleteConfigFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, g.SaveConfig())

	require.NoError(t, g.DeleteConfigFile())
	assert.False(t, g.Exists())
	assert.NoError(t, g.DeleteConfigFile())
}

func TestWatchPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)

	changes := make(chan *tintbar.Config, 4)
	g.OnConfigurationChanged(func(cfg *tintbar.Config) { changes <- cfg })

	require.NoError(t, g.Watch())
	defer g.Close()

	require.NoError(t, os.WriteFile(path, []byte("theme = \"dark\"\n"), 0o644))

	require.Eventually(t, func() bool {
		select {
		case cfg := <-changes:
			return cfg.Theme == "dark"
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "dark", g.Config().Theme)
}

func TestWatchIgnoresUnreadableEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"light\"\n"), 0o644))

	g, err := New(path, tintbar.NopLogger{})
	require.NoError(t, err)

	changes := make(chan *tintbar.Config, 4)
	g.OnConfigurationChanged(func(cfg *tintbar.Config) { changes <- cfg })

	require.NoError(t, g.Watch())
	defer g.Close()

	// Garbage on disk keeps the previous snapshot and fires no callback.
	require.NoError(t, os.WriteFile(path, []byte("= not toml"), 0o644))

	assert.Never(t, func() bool {
		select {
		case <-changes:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, "light", g.Config().Theme)
}
