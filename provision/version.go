// Package provision ensures versioned runtime dependencies are installed
// before the application initializes. A dependency is keyed by name, minimum
// version and install scope; provisioning is an idempotent ensure-installed
// operation whose failure is fatal to startup.
package provision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Static errors for the provision package
var (
	ErrProvisioning     = errors.New("dependency provisioning failed")
	ErrMalformedVersion = errors.New("malformed package version")
	ErrRegistryNil      = errors.New("package registry cannot be nil")
	ErrEmptyPackageName = errors.New("package name cannot be empty")
)

// Version is a 4-component package version. Comparison is lexicographic on
// (Major, Minor, Build, Revision).
type Version struct {
	Major    uint32 `toml:"major"`
	Minor    uint32 `toml:"minor"`
	Build    uint32 `toml:"build"`
	Revision uint32 `toml:"revision"`
}

// Compare returns -1, 0 or 1 depending on whether v is ordered before,
// equal to, or after other.
func (v Version) Compare(other Version) int {
	pairs := [4][2]uint32{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Build, other.Build},
		{v.Revision, other.Revision},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v satisfies min.
func (v Version) AtLeast(min Version) bool {
	return v.Compare(min) >= 0
}

// String renders the version in dotted form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// ParseVersion parses a dotted 4-component version string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	var components [4]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %w", ErrMalformedVersion, s, err)
		}
		components[i] = uint32(n)
	}

	return Version{
		Major:    components[0],
		Minor:    components[1],
		Build:    components[2],
		Revision: components[3],
	}, nil
}
