package storage

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// MemoryEngine implements KVEngine over an in-process map. Update
// transactions are serialized; View transactions run concurrently.
//
// Data is lost when the process exits.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed atomic.Bool
}

// NewMemoryEngine creates an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

// Get retrieves a value by key.
func (e *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := e.View(ctx, func(txn KVTxn) error {
		var err error
		value, err = txn.Get(key)
		return err
	})
	return value, err
}

// Set stores a key-value pair.
func (e *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	return e.Update(ctx, func(txn KVTxn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a key.
func (e *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	return e.Update(ctx, func(txn KVTxn) error {
		return txn.Delete(key)
	})
}

// Scan iterates over keys with a given prefix in key order.
func (e *MemoryEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return e.View(ctx, func(txn KVTxn) error {
		return txn.Scan(prefix, fn)
	})
}

// View runs fn under a read lock.
func (e *MemoryEngine) View(ctx context.Context, fn func(txn KVTxn) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(&memTxn{base: e.data})
}

// Update runs fn under the write lock. Writes are staged and applied
// only if fn returns nil.
func (e *MemoryEngine) Update(ctx context.Context, fn func(txn KVTxn) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	txn := &memTxn{base: e.data, writable: true, pending: make(map[string][]byte)}
	if err := fn(txn); err != nil {
		return err
	}
	for k, v := range txn.pending {
		if v == nil {
			delete(e.data, k)
			continue
		}
		e.data[k] = v
	}
	return nil
}

// GC is a no-op.
func (e *MemoryEngine) GC(ctx context.Context) (uint64, error) {
	return 0, nil
}

// Stats returns the key count and the summed key and value sizes.
func (e *MemoryEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	var size uint64
	for k, v := range e.data {
		size += uint64(len(k) + len(v))
	}
	return &KVStats{
		TotalKeys: uint64(len(e.data)),
		TotalSize: size,
	}, nil
}

// Close marks the engine closed and drops its data.
func (e *MemoryEngine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.mu.Lock()
	e.data = make(map[string][]byte)
	e.mu.Unlock()
	return nil
}

// memTxn reads through pending writes to the base map. A nil pending
// value marks a deletion.
type memTxn struct {
	base     map[string][]byte
	pending  map[string][]byte
	writable bool
}

func (t *memTxn) Get(key []byte) ([]byte, error) {
	k := string(key)
	if v, ok := t.pending[k]; ok {
		if v == nil {
			return nil, ErrKeyNotFound
		}
		return bytes.Clone(v), nil
	}
	v, ok := t.base[k]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (t *memTxn) Set(key, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	t.pending[string(key)] = v
	return nil
}

func (t *memTxn) Delete(key []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.pending[string(key)] = nil
	return nil
}

func (t *memTxn) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	p := string(prefix)
	keys := make([]string, 0)
	for k := range t.base {
		if _, shadowed := t.pending[k]; !shadowed && strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	for k, v := range t.pending {
		if v != nil && strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		v, ok := t.pending[k]
		if !ok {
			v = t.base[k]
		}
		if !fn([]byte(k), bytes.Clone(v)) {
			break
		}
	}
	return nil
}
