package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// DirectoryRegistry is a Registry backed by a directory of TOML package
// manifests, one file per installation. It stands in for the platform
// package store on systems that keep package metadata on disk.
type DirectoryRegistry struct {
	dir string
	mu  sync.Mutex
}

// NewDirectoryRegistry creates a registry rooted at dir, creating the
// directory if needed.
func NewDirectoryRegistry(dir string) (*DirectoryRegistry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}
	return &DirectoryRegistry{dir: dir}, nil
}

// Installed returns every manifest whose package name matches.
func (r *DirectoryRegistry) Installed(ctx context.Context, name string) ([]InstalledPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading registry directory: %w", err)
	}

	var found []InstalledPackage
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		var pkg InstalledPackage
		path := filepath.Join(r.dir, entry.Name())
		if _, err := toml.DecodeFile(path, &pkg); err != nil {
			return nil, fmt.Errorf("decoding manifest %s: %w", entry.Name(), err)
		}
		if pkg.Name == name {
			found = append(found, pkg)
		}
	}
	return found, nil
}

// Install writes a manifest recording the installation.
func (r *DirectoryRegistry) Install(ctx context.Context, desc Descriptor, scope Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pkg := InstalledPackage{
		Name:    desc.Name,
		Version: desc.MinVersion,
		Scope:   scope,
	}

	name := fmt.Sprintf("%s_%s_%s.toml", desc.Name, desc.MinVersion, scope)
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(pkg); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}
