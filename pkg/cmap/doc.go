// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread across a power-of-two number of shards using a seeded
// murmur3 hash. Each shard owns a sync.RWMutex, so operations on keys in
// different shards never contend. Every exported method is atomic with
// respect to a single key; there are no multi-key transactions.
//
// Usage:
//
//	m := cmap.New[*Session]()
//	if !m.SetIfAbsent(hash, sess) {
//		// key already present
//	}
//	sess, ok := m.Get(hash)
package cmap
