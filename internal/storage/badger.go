package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerEngine implements KVEngine using Badger v3.
type BadgerEngine struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	// Metrics (internal counters)
	lastGCTime       atomic.Int64  // Unix milliseconds
	gcBytesReclaimed atomic.Uint64 // Total bytes reclaimed by GC
	gcRuns           atomic.Uint64

	// Prometheus metrics
	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsTotalSize    prometheus.Gauge
	metricsLastGCTime   prometheus.Gauge
	metricsGCRuns       prometheus.CounterFunc

	// Shutdown
	closed    atomic.Bool
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBadgerEngine creates a new Badger-based KV engine.
func NewBadgerEngine(cfg KVConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.Badger.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	badgerCfg := cfg.Badger
	opts := badger.DefaultOptions(cfg.Dir)
	if badgerCfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}

	if badgerCfg.CacheSize > 0 {
		opts.BlockCacheSize = badgerCfg.CacheSize
	}
	if badgerCfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = badgerCfg.ValueLogFileSize
	}
	if badgerCfg.NumMemtables > 0 {
		opts.NumMemtables = badgerCfg.NumMemtables
	}
	if badgerCfg.NumLevelZeroTables > 0 {
		opts.NumLevelZeroTables = badgerCfg.NumLevelZeroTables
	}
	if badgerCfg.NumLevelZeroTablesStall > 0 {
		opts.NumLevelZeroTablesStall = badgerCfg.NumLevelZeroTablesStall
	}
	opts.SyncWrites = badgerCfg.SyncWrites
	// Update relies on optimistic conflict detection.
	opts.DetectConflicts = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	engine := &BadgerEngine{
		db:     db,
		cfg:    badgerCfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go engine.gcLoop()

	logger.Info("badger engine started",
		"dir", cfg.Dir,
		"in_memory", badgerCfg.InMemory,
		"cache_size", badgerCfg.CacheSize,
		"gc_interval", badgerCfg.GCInterval)

	return engine, nil
}

// Get retrieves a value by key.
func (e *BadgerEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := e.View(ctx, func(txn KVTxn) error {
		var err error
		value, err = txn.Get(key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (e *BadgerEngine) Set(ctx context.Context, key, value []byte) error {
	return e.Update(ctx, func(txn KVTxn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a key.
func (e *BadgerEngine) Delete(ctx context.Context, key []byte) error {
	return e.Update(ctx, func(txn KVTxn) error {
		return txn.Delete(key)
	})
}

// Scan iterates over keys with a given prefix.
func (e *BadgerEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return e.View(ctx, func(txn KVTxn) error {
		return txn.Scan(prefix, fn)
	})
}

// View runs fn in a read-only Badger transaction.
func (e *BadgerEngine) View(ctx context.Context, fn func(txn KVTxn) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
}

// Update runs fn in a read-write Badger transaction and retries it when
// the commit conflicts with a concurrent one.
func (e *BadgerEngine) Update(ctx context.Context, fn func(txn KVTxn) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTxn{txn: txn})
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
	return ErrConflict
}

// GC triggers garbage collection.
//
// Badger uses a value log that needs periodic GC to reclaim space.
// Returns bytes reclaimed, estimated from the value log size.
func (e *BadgerEngine) GC(ctx context.Context) (uint64, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	if e.cfg.InMemory {
		return 0, nil
	}

	startTime := time.Now()
	_, vlogBefore := e.db.Size()

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			return 0, fmt.Errorf("gc: %w", err)
		}
	}

	var reclaimed uint64
	if _, vlogAfter := e.db.Size(); vlogAfter < vlogBefore {
		reclaimed = uint64(vlogBefore - vlogAfter)
	}

	e.lastGCTime.Store(time.Now().UnixMilli())
	e.gcBytesReclaimed.Add(reclaimed)
	e.gcRuns.Add(1)

	e.logger.Debug("gc completed",
		"bytes_reclaimed", reclaimed,
		"elapsed", time.Since(startTime))

	return reclaimed, nil
}

// Stats returns storage statistics.
func (e *BadgerEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	lsm, vlog := e.db.Size()

	return &KVStats{
		TotalKeys:        0, // Badger doesn't provide efficient key count
		TotalSize:        uint64(lsm + vlog),
		LSMSize:          uint64(lsm),
		ValueLogSize:     uint64(vlog),
		LastGCTime:       e.lastGCTime.Load(),
		GCBytesReclaimed: e.gcBytesReclaimed.Load(),
	}, nil
}

// Backup writes a full backup of the database to w.
func (e *BadgerEngine) Backup(ctx context.Context, w io.Writer) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if _, err := e.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup. Existing keys with the same
// names are overwritten.
func (e *BadgerEngine) Restore(ctx context.Context, r io.Reader) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := e.db.Load(r, 256); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	e.logger.Info("backup restored")
	return nil
}

// Close gracefully shuts down the Badger engine.
func (e *BadgerEngine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.logger.Info("shutting down badger engine")
		e.closed.Store(true)

		close(e.stopCh)
		<-e.doneCh

		if cerr := e.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
			return
		}
		e.logger.Info("badger engine shutdown complete")
	})
	return err
}

// RegisterMetrics registers Badger metrics with Prometheus.
//
// This should be called once during initialization.
// Returns the engine for method chaining.
func (e *BadgerEngine) RegisterMetrics(registry prometheus.Registerer) *BadgerEngine {
	e.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdesk",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})

	e.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdesk",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})

	e.metricsTotalSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdesk",
		Subsystem: "badger",
		Name:      "total_size_bytes",
		Help:      "Badger total storage size in bytes (LSM + value log)",
	})

	e.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdesk",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last Badger GC run",
	})

	e.metricsGCRuns = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "gymdesk",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Completed Badger value log GC runs",
	}, func() float64 {
		return float64(e.gcRuns.Load())
	})

	registry.MustRegister(
		e.metricsLSMSize,
		e.metricsValueLogSize,
		e.metricsTotalSize,
		e.metricsLastGCTime,
		e.metricsGCRuns,
	)

	e.updateMetrics()
	go e.metricsUpdateLoop()

	return e
}

// metricsUpdateLoop periodically updates Prometheus metrics.
func (e *BadgerEngine) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.updateMetrics()
		case <-e.stopCh:
			return
		}
	}
}

func (e *BadgerEngine) updateMetrics() {
	stats, err := e.Stats(context.Background())
	if err != nil {
		// Engine is closing.
		return
	}

	e.metricsLSMSize.Set(float64(stats.LSMSize))
	e.metricsValueLogSize.Set(float64(stats.ValueLogSize))
	e.metricsTotalSize.Set(float64(stats.TotalSize))
	if stats.LastGCTime > 0 {
		e.metricsLastGCTime.Set(float64(stats.LastGCTime) / 1000.0)
	}
}

// gcLoop runs periodic garbage collection.
func (e *BadgerEngine) gcLoop() {
	defer close(e.doneCh)

	interval, err := time.ParseDuration(e.cfg.GCInterval)
	if err != nil || interval <= 0 {
		e.logger.Error("invalid gc_interval, using default 10m", "value", e.cfg.GCInterval)
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := e.GC(ctx); err != nil && !errors.Is(err, ErrClosed) {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// badgerTxn adapts *badger.Txn to KVTxn.
type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	return t.txn.Delete(key)
}

func (t *badgerTxn) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if !fn(item.KeyCopy(nil), value) {
			break
		}
	}
	return nil
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
