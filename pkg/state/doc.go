// Package state defines the shared workflow state object and its checkpoint
// serialization.
//
// A State is an ordinary string-keyed map so partial updates stay sparse and
// reducers stay generic, but it is handled by value: Clone produces a deep
// copy and every merge operates on a fresh clone, which is what makes
// lock-free concurrent writers safe. Rich message objects cross the JSON
// boundary through the {type, content, metadata} envelope.
package state
