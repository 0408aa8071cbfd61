/*
Package ports defines the driven ports (interfaces) for swarm state
persistence and coordination.

These interfaces decouple the merge and migration engines from external
implementations, allowing checkpoints to live in memory, on disk, or in
Redis without the engines knowing which.

# Key Interfaces

  - CheckpointStore: persists and loads state checkpoints by ID.
  - DistributedLocker: coordinates concurrent access to a shared checkpoint
    across replicas.
*/
package ports
