package migrate

import "fmt"

// VersionError reports that a migration path cannot be resolved: no
// registered step covers the requested hop, or one of the version strings is
// unparsable. Only direct hops are supported; a chain of versions must be
// registered as explicit steps and requested one hop at a time.
type VersionError struct {
	From string
	To   string
	Err  error // non-nil when a version string failed to parse
}

func (e *VersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot migrate from %s to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("no migration registered from %s to %s", e.From, e.To)
}

func (e *VersionError) Unwrap() error { return e.Err }

// MigrationError reports that a registered migration ran but failed, either
// in its transform or in post-migration validation. The original state is
// untouched when this is returned.
type MigrationError struct {
	From string
	To   string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s -> %s failed: %v", e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
