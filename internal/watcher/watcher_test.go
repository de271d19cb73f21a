package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	volumes []string
}

func (r *recorder) onChange(volume string) {
	r.mu.Lock()
	r.volumes = append(r.volumes, volume)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.volumes...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	otPath := filepath.Join(dir, "old-testament.json")
	rec := &recorder{}
	w := NewWatcher(map[string]string{"Old Testament": otPath}, rec.onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Several writes in quick succession collapse into one notification.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(otPath, []byte(`{"books":[]}`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { return len(rec.get()) >= 1 })
	time.Sleep(150 * time.Millisecond)
	got := rec.get()
	if len(got) != 1 || got[0] != "Old Testament" {
		t.Errorf("expected one change for Old Testament, got %v", got)
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := NewWatcher(map[string]string{"Old Testament": filepath.Join(dir, "ot.json")}, rec.onChange, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if got := rec.get(); len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func TestWatcher_Directories(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	w := NewWatcher(map[string]string{
		"Old Testament":  filepath.Join(a, "ot.json"),
		"New Testament":  filepath.Join(a, "nt.json"),
		"Book of Mormon": filepath.Join(b, "bom.json"),
	}, nil)
	dirs := w.Directories()
	if len(dirs) != 2 {
		t.Errorf("expected 2 directories, got %v", dirs)
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w := NewWatcher(map[string]string{"X": filepath.Join(t.TempDir(), "missing", "x.json")}, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error for missing directory")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w := NewWatcher(map[string]string{"X": filepath.Join(t.TempDir(), "x.json")}, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
