package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3dmodel.glb")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	defer fw.Close()

	var calls atomic.Int32
	var got atomic.Value
	if err := fw.Watch([]string{path}, func(p string) {
		calls.Add(1)
		got.Store(p)
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	fw.Start()

	// A burst of writes collapses into one callback.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1", n)
	}
	abs, _ := filepath.Abs(path)
	if got.Load().(string) != abs {
		t.Errorf("callback path = %v, want %s", got.Load(), abs)
	}
}

func TestIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3dmodel.glb")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	var calls atomic.Int32
	if err := fw.Watch([]string{path}, func(string) { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}
	fw.Start()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("sibling write triggered %d callbacks", n)
	}
}

func TestReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3dmodel.glb")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	var calls atomic.Int32
	if err := fw.Watch([]string{path}, func(string) { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}
	fw.Start()

	tmp := filepath.Join(dir, "export.tmp")
	if err := os.WriteFile(tmp, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
}

func TestCloseIsIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce)
	if err != nil {
		t.Fatal(err)
	}
	fw.Start()
	if err := fw.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
