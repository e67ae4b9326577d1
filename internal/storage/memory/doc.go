// Package memory provides the in-memory fork registry for ForkMesh.
//
// Store maps fork ids to *service.Fork on a sharded concurrent map. Shards
// are selected by murmur3 hash of the id, and each shard has its own
// RWMutex: lookups take a shard read lock, inserts, revocations and
// eviction take a shard write lock. The registry never touches a fork's
// own lock.
//
// Nothing is persisted; all forks are lost on restart.
package memory
