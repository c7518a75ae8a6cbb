package cmap

// Range calls fn for every entry. Each shard is read-locked while it is
// visited, so fn must not call back into the map. Iteration stops when fn
// returns false.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns a snapshot of all keys.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Sweep removes every entry for which pred returns true and returns the
// removed entries. Shards are write-locked one at a time.
func (m *Map[V]) Sweep(pred func(key string, value V) bool) map[string]V {
	removed := make(map[string]V)
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if pred(k, v) {
				removed[k] = v
				delete(s.items, k)
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// ShardStats describes the population of a single shard.
type ShardStats struct {
	Index int
	Count int
}

// Stats returns per-shard item counts.
func (m *Map[V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, s := range m.shards {
		s.mu.RLock()
		stats[i] = ShardStats{Index: i, Count: len(s.items)}
		s.mu.RUnlock()
	}
	return stats
}
