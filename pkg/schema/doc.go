// Package schema provides the type system used to validate state field values.
//
// It defines built-in types (string, int, float, bool, any) plus composable
// slice and string-keyed map types. Type expressions can be parsed from the
// field configuration document:
//
//	t, err := schema.ParseType("{[string]}") // map of string slices
//
// Validation failures are collected, never short-circuited: a failed check
// returns an AggregateError holding one ValidationError per violation.
//
// This package has zero dependencies beyond the Go standard library so it can
// stay the leaf of the import graph; the field registry builds on top of it.
package schema
