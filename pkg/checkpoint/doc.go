/*
Package checkpoint implements checkpoint management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to shared
state checkpoints across multiple replicas, integrating local lock tables
with distributed locking and long-term storage adapters.
*/
package checkpoint
