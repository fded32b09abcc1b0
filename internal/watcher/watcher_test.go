package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func collect() (func(string), func() []string) {
	var mu sync.Mutex
	var got []string
	return func(p string) {
			mu.Lock()
			got = append(got, p)
			mu.Unlock()
		}, func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), got...)
		}
}

func TestWatcher_ReportsWriteOnce(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	if err := writeFile(model, "{}"); err != nil {
		t.Fatal(err)
	}
	onChange, changed := collect()
	w := NewWatcher([]string{model}, onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := writeFile(model, `{"v": 2}`); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(400 * time.Millisecond)

	got := changed()
	if len(got) != 1 {
		t.Fatalf("expected one debounced change, got %v", got)
	}
	if filepath.Base(got[0]) != "model.json" {
		t.Errorf("changed path = %s", got[0])
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	scaler := filepath.Join(dir, "scaler.json")
	if err := writeFile(scaler, "{}"); err != nil {
		t.Fatal(err)
	}
	onChange, changed := collect()
	w := NewWatcher([]string{scaler}, onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "notes.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := changed(); len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func TestWatcher_ReportsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	if err := writeFile(model, "{}"); err != nil {
		t.Fatal(err)
	}
	onChange, changed := collect()
	w := NewWatcher([]string{model}, onChange, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, "model.json.tmp")
	if err := writeFile(tmp, `{"v": 3}`); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, model); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if got := changed(); len(got) < 1 {
		t.Errorf("expected a change after rename, got %v", got)
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "model.json")
	w := NewWatcher([]string{missing}, nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error watching a missing directory")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{filepath.Join(dir, "a.json")}, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestNewWatcher_DedupesDirectories(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, nil)
	if len(w.dirs) != 1 {
		t.Errorf("dirs = %v, want one", w.dirs)
	}
	if len(w.Files()) != 2 {
		t.Errorf("files = %v, want two", w.Files())
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
