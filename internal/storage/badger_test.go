package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestBadger(t *testing.T) *BadgerEngine {
	t.Helper()
	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = "1h" // Disable auto GC for tests
	cfg.Badger.SyncWrites = false

	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestBadgerEngine(t *testing.T) {
	runEngineSuite(t, func(t *testing.T) KVEngine {
		return newTestBadger(t)
	})
}

func TestBadgerEngine_InMemory(t *testing.T) {
	cfg := DefaultKVConfig("")
	cfg.Badger.InMemory = true
	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine(in-memory): %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Set(ctx, []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n, err := engine.GC(ctx); err != nil || n != 0 {
		t.Errorf("GC(in-memory) = %d, %v", n, err)
	}
}

func TestBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{Badger: DefaultBadgerConfig()}, nil); err == nil {
		t.Fatal("NewBadgerEngine without dir should fail")
	}
}

func TestBadgerEngine_Persistence(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultKVConfig(dir)
	cfg.Badger.GCInterval = "1h"
	ctx := context.Background()

	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine: %v", err)
	}
	if err := engine.Set(ctx, []byte("persist"), []byte("yes")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, []byte("persist"))
	if err != nil || string(got) != "yes" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestBadgerEngine_BackupRestore(t *testing.T) {
	src := newTestBadger(t)
	ctx := context.Background()
	_ = src.Set(ctx, []byte("trainee/alice"), []byte("{}"))
	_ = src.Set(ctx, []byte("trainer/bob"), []byte("{}"))

	var buf bytes.Buffer
	if err := src.Backup(ctx, &buf); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	dst := newTestBadger(t)
	if err := dst.Restore(ctx, &buf); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, k := range []string{"trainee/alice", "trainer/bob"} {
		if _, err := dst.Get(ctx, []byte(k)); err != nil {
			t.Errorf("Get(%s) after Restore: %v", k, err)
		}
	}
}

func TestBadgerEngine_GCAndStats(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	if _, err := engine.GC(ctx); err != nil {
		t.Fatalf("GC: %v", err)
	}
	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.LastGCTime == 0 {
		t.Error("Stats.LastGCTime not recorded")
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestBadger(t)
	reg := prometheus.NewRegistry()
	engine.RegisterMetrics(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "gymdesk_badger_total_size_bytes" {
			found = true
		}
	}
	if !found {
		t.Error("gymdesk_badger_total_size_bytes not registered")
	}
}

func TestBadgerEngine_ClosedGC(t *testing.T) {
	engine := newTestBadger(t)
	engine.Close()
	if _, err := engine.GC(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("GC after Close err = %v, want ErrClosed", err)
	}
}
