package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}

type fakeRegistry struct {
	installed  []InstalledPackage
	installs   []Scope
	installErr error
	listErr    error
}

func (f *fakeRegistry) Installed(_ context.Context, name string) ([]InstalledPackage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []InstalledPackage
	for _, pkg := range f.installed {
		if pkg.Name == name {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (f *fakeRegistry) Install(_ context.Context, desc Descriptor, scope Scope) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installs = append(f.installs, scope)
	f.installed = append(f.installed, InstalledPackage{Name: desc.Name, Version: desc.MinVersion, Scope: scope})
	return nil
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	required := Version{Major: 14, Minor: 0, Build: 30704, Revision: 0}

	assert.True(t, Version{Major: 14, Minor: 0, Build: 30704, Revision: 1}.AtLeast(required))
	assert.True(t, Version{Major: 14, Minor: 0, Build: 30704, Revision: 0}.AtLeast(required))
	assert.False(t, Version{Major: 13, Minor: 9, Build: 99999, Revision: 99}.AtLeast(required))
	assert.False(t, Version{Major: 13, Minor: 9, Build: 60000, Revision: 99}.AtLeast(required))

	assert.Equal(t, 0, required.Compare(required))
	assert.Equal(t, -1, Version{Major: 13}.Compare(required))
	assert.Equal(t, 1, Version{Major: 15}.Compare(required))
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	v, err := ParseVersion("7.2207.21001.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 7, Minor: 2207, Build: 21001, Revision: 0}, v)
	assert.Equal(t, "7.2207.21001.0", v.String())

	_, err = ParseVersion("7.2207.21001")
	assert.ErrorIs(t, err, ErrMalformedVersion)
	_, err = ParseVersion("a.b.c.d")
	assert.ErrorIs(t, err, ErrMalformedVersion)
}

func TestEnsureDependencySatisfied(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{installed: []InstalledPackage{
		{Name: "core-runtime", Version: Version{Major: 14, Minor: 0, Build: 30704, Revision: 1}, Scope: ScopeMachine},
	}}
	p, err := NewProvisioner(reg, nopLogger{})
	require.NoError(t, err)

	desc := Descriptor{
		Name:       "core-runtime",
		MinVersion: Version{Major: 14, Minor: 0, Build: 30704, Revision: 0},
	}
	require.NoError(t, p.EnsureDependency(context.Background(), desc, false))
	assert.Empty(t, reg.installs, "satisfied dependency must not trigger an install")
}

func TestEnsureDependencyInstallsWhenMissing(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{installed: []InstalledPackage{
		{Name: "core-runtime", Version: Version{Major: 13, Minor: 9, Build: 9999, Revision: 99}, Scope: ScopeMachine},
	}}
	p, err := NewProvisioner(reg, nopLogger{})
	require.NoError(t, err)

	desc := Descriptor{
		Name:       "core-runtime",
		MinVersion: Version{Major: 14, Minor: 0, Build: 30704, Revision: 0},
	}
	require.NoError(t, p.EnsureDependency(context.Background(), desc, false))
	require.Len(t, reg.installs, 1)
	assert.Equal(t, ScopeMachine, reg.installs[0])

	// Second ensure is a no-op.
	require.NoError(t, p.EnsureDependency(context.Background(), desc, false))
	assert.Len(t, reg.installs, 1)
}

func TestEnsureDependencyUserScope(t *testing.T) {
	t.Parallel()

	// A user-scope installation only satisfies the dependency when user
	// scope is both permitted by the descriptor and allowed by the caller.
	userInstall := InstalledPackage{
		Name:    "ui-toolkit",
		Version: Version{Major: 7, Minor: 2207, Build: 21001, Revision: 0},
		Scope:   ScopeUser,
	}
	desc := Descriptor{
		Name:       "ui-toolkit",
		MinVersion: Version{Major: 7, Minor: 2207, Build: 21001, Revision: 0},
		PerUser:    true,
	}

	reg := &fakeRegistry{installed: []InstalledPackage{userInstall}}
	p, err := NewProvisioner(reg, nopLogger{})
	require.NoError(t, err)

	require.NoError(t, p.EnsureDependency(context.Background(), desc, true))
	assert.Empty(t, reg.installs)

	// Without user scope allowed, the user install is ignored and a
	// machine-wide install happens.
	reg2 := &fakeRegistry{installed: []InstalledPackage{userInstall}}
	p2, err := NewProvisioner(reg2, nopLogger{})
	require.NoError(t, err)

	require.NoError(t, p2.EnsureDependency(context.Background(), desc, false))
	require.Len(t, reg2.installs, 1)
	assert.Equal(t, ScopeMachine, reg2.installs[0])
}

func TestEnsureDependencyFailures(t *testing.T) {
	t.Parallel()

	p, err := NewProvisioner(&fakeRegistry{listErr: errors.New("store unavailable")}, nopLogger{})
	require.NoError(t, err)

	desc := Descriptor{Name: "core-runtime", MinVersion: Version{Major: 1}}
	assert.ErrorIs(t, p.EnsureDependency(context.Background(), desc, false), ErrProvisioning)

	p2, err := NewProvisioner(&fakeRegistry{installErr: errors.New("access denied")}, nopLogger{})
	require.NoError(t, err)
	assert.ErrorIs(t, p2.EnsureDependency(context.Background(), desc, false), ErrProvisioning)

	assert.ErrorIs(t, p2.EnsureDependency(context.Background(), Descriptor{}, false), ErrEmptyPackageName)

	_, err = NewProvisioner(nil, nopLogger{})
	assert.ErrorIs(t, err, ErrRegistryNil)
}

func TestDirectoryRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	reg, err := NewDirectoryRegistry(t.TempDir())
	require.NoError(t, err)

	desc := Descriptor{
		Name:       "core-runtime",
		MinVersion: Version{Major: 14, Minor: 0, Build: 30704, Revision: 0},
	}
	require.NoError(t, reg.Install(context.Background(), desc, ScopeMachine))

	installed, err := reg.Installed(context.Background(), "core-runtime")
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, desc.MinVersion, installed[0].Version)
	assert.Equal(t, ScopeMachine, installed[0].Scope)

	none, err := reg.Installed(context.Background(), "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
