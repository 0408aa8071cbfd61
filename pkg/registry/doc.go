// Package registry holds the field-configuration table that binds every
// state field to its value type, merge strategy, conflict strategy,
// validation rules and retention policy.
//
// The registry is the single source of truth for the merge engine: a field's
// descriptor decides which reducer reconciles concurrent updates, how big its
// stored history may grow, and what strict validation accepts. Fields absent
// from the table fall back to last-write-wins.
//
// A registry is built either from the built-in Default table or from an
// external declarative YAML document via Load. Descriptors are immutable
// after load; feature flags (per group and per field) are the only mutable
// aspect and only change which descriptors ActiveFields reports, never the
// stored data.
package registry
