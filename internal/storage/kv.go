package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
	ErrConflict    = errors.New("transaction conflict")
	ErrReadOnly    = errors.New("write in read-only transaction")
)

// Supported engine names.
const (
	EngineBadger = "badger"
	EngineMemory = "memory"
)

// KVEngine defines the interface for embedded key-value storage.
//
// Implementations must be safe for concurrent use. Update runs fn in a
// read-write transaction that either commits as a whole or not at all.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with a given prefix in key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(txn KVTxn) error) error

	// Update runs fn in a read-write transaction. Conflicting commits are
	// retried a bounded number of times before ErrConflict is returned.
	Update(ctx context.Context, fn func(txn KVTxn) error) error

	// GC triggers garbage collection (for LSM-based engines like Badger).
	// Returns bytes reclaimed.
	GC(ctx context.Context) (uint64, error)

	// Stats returns storage statistics (size, keys count, etc.).
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the KV engine.
	Close() error
}

// KVTxn is a transaction handle passed to View and Update. Values
// returned by Get and Scan are owned by the caller.
type KVTxn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Scan(prefix []byte, fn func(key, value []byte) bool) error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalKeys is the number of keys, when the engine can count them
	// cheaply. Badger reports 0.
	TotalKeys uint64

	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size (for Badger).
	LSMSize uint64

	// ValueLogSize is the value log size (for Badger).
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCBytesReclaimed is the total bytes reclaimed by GC.
	GCBytesReclaimed uint64
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Engine specifies the KV engine type ("badger", "memory").
	// Default: "badger"
	Engine string

	// Dir is the storage directory. Ignored by the memory engine.
	Dir string

	// Badger-specific configuration
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5 (run GC when 50% of data is stale)
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// NumLevelZeroTables is the number of Level 0 tables before compaction.
	// Default: 5
	NumLevelZeroTables int

	// NumLevelZeroTablesStall is the number of Level 0 tables that triggers write stall.
	// Default: 10
	NumLevelZeroTablesStall int

	// SyncWrites enables sync writes (fsync after each write).
	// Default: true
	SyncWrites bool

	// InMemory runs Badger without touching disk. Dir is ignored.
	InMemory bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:              "10m",
		GCThreshold:             0.5,
		CacheSize:               64 << 20,  // 64MB
		ValueLogFileSize:        256 << 20, // 256MB
		NumMemtables:            2,
		NumLevelZeroTables:      5,
		NumLevelZeroTablesStall: 10,
		SyncWrites:              true,
	}
}

// Open creates the engine selected by cfg.Engine.
func Open(cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", EngineBadger:
		return NewBadgerEngine(cfg, logger)
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("unknown kv engine %q", cfg.Engine)
	}
}

// maxUpdateRetries bounds Update retries on ErrConflict.
const maxUpdateRetries = 5
