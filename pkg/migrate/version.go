package migrate

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// canonical normalizes a schema version ("1.1.0") into the "v"-prefixed form
// the semver package expects.
func canonical(version string) (string, error) {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid schema version %q", version)
	}
	return v, nil
}

// Compare orders two schema versions. It returns -1, 0 or +1 like
// semver.Compare, and an error when either version does not parse.
func Compare(a, b string) (int, error) {
	va, err := canonical(a)
	if err != nil {
		return 0, err
	}
	vb, err := canonical(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(va, vb), nil
}

// IsCompatible reports whether two schema versions share a major version,
// meaning a state written under one can be read under the other without
// migrating.
func IsCompatible(a, b string) bool {
	va, err := canonical(a)
	if err != nil {
		return false
	}
	vb, err := canonical(b)
	if err != nil {
		return false
	}
	return semver.Major(va) == semver.Major(vb)
}
