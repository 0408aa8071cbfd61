// Package migrate moves states between schema versions.
//
// Migrations are registered on a Builder and frozen into a Migrator, so the
// available steps are decided by whoever wires the application, not by
// package import order. Each step covers exactly one version hop and the
// result is strictly validated before it replaces the caller's state.
package migrate
