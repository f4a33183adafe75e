package provision

import (
	"context"
	"fmt"
)

// Scope identifies where a package installation lives.
type Scope string

const (
	// ScopeMachine is a machine-wide installation visible to every user.
	ScopeMachine Scope = "machine"

	// ScopeUser is an installation private to the current user. Used for
	// sandboxed deployments that cannot write machine-wide locations.
	ScopeUser Scope = "user"
)

// Descriptor identifies a required runtime dependency: its package name,
// the minimum version that satisfies it, and whether a per-user install
// scope is acceptable.
type Descriptor struct {
	// Name is the package identity the registry resolves.
	Name string

	// MinVersion is the lowest version that satisfies the dependency.
	MinVersion Version

	// PerUser widens the install scope to the current user. It is only
	// honored when the caller also allows user scope; machine scope is
	// always searched.
	PerUser bool
}

// InstalledPackage describes one installation known to a Registry.
type InstalledPackage struct {
	Name    string  `toml:"name"`
	Version Version `toml:"version"`
	Scope   Scope   `toml:"scope"`
}

// Registry abstracts the platform package store. Implementations enumerate
// installed packages by name and perform installations.
type Registry interface {
	// Installed returns every installation of the named package, across
	// all scopes.
	Installed(ctx context.Context, name string) ([]InstalledPackage, error)

	// Install installs the package described by desc into the given scope.
	Install(ctx context.Context, desc Descriptor, scope Scope) error
}

// Logger is the logging surface the provisioner needs. It matches the
// application's structured logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Provisioner performs idempotent ensure-installed operations against a
// Registry.
type Provisioner struct {
	registry Registry
	logger   Logger
}

// NewProvisioner creates a provisioner backed by the given registry.
func NewProvisioner(registry Registry, logger Logger) (*Provisioner, error) {
	if registry == nil {
		return nil, ErrRegistryNil
	}
	return &Provisioner{registry: registry, logger: logger}, nil
}

// EnsureDependency makes sure a dependency satisfying desc is installed.
// It is idempotent: if an installed version >= desc.MinVersion already
// exists in an acceptable scope, nothing happens. allowUserScope widens the
// install scope to the user only when the descriptor also permits it.
//
// Any failure wraps ErrProvisioning; callers treat it as fatal to startup.
func (p *Provisioner) EnsureDependency(ctx context.Context, desc Descriptor, allowUserScope bool) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: %w", ErrProvisioning, ErrEmptyPackageName)
	}

	installed, err := p.registry.Installed(ctx, desc.Name)
	if err != nil {
		return fmt.Errorf("%w: locating %s: %w", ErrProvisioning, desc.Name, err)
	}

	userScopeOK := allowUserScope && desc.PerUser
	for _, pkg := range installed {
		if pkg.Scope == ScopeUser && !userScopeOK {
			continue
		}
		if pkg.Version.AtLeast(desc.MinVersion) {
			p.logger.Debug("Dependency already satisfied",
				"package", desc.Name,
				"required", desc.MinVersion.String(),
				"installed", pkg.Version.String(),
				"scope", pkg.Scope)
			return nil
		}
	}

	scope := ScopeMachine
	if userScopeOK {
		scope = ScopeUser
	}

	p.logger.Info("Installing dependency",
		"package", desc.Name,
		"version", desc.MinVersion.String(),
		"scope", scope)

	if err := p.registry.Install(ctx, desc, scope); err != nil {
		return fmt.Errorf("%w: installing %s %s: %w",
			ErrProvisioning, desc.Name, desc.MinVersion.String(), err)
	}
	return nil
}
