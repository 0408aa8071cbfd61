// Package observability provides the Prometheus metric set used by the
// merge engine and the migration engine. All recording methods are safe
// on a nil receiver.
package observability
