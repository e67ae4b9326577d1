// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash. Each shard carries its own RWMutex, so lookups on different shards
// never contend and a structural change only blocks its own shard.
//
// Usage:
//
//	m := cmap.New[*Fork]()
//	m.Set(id, fork)
//	f, ok := m.Get(id)
//
// Thread Safety:
//
// All operations are thread-safe. Get, Has, Count and Range take shard read
// locks; Set, Delete, Pop and RemoveIf take shard write locks. Callbacks run
// under a shard lock and must not call back into the map.
package cmap
