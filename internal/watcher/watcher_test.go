package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanumlabs/codelens/pkg/types"
)

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (f *fakeIndexer) IndexFile(_ context.Context, absPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, absPath)
	return nil
}

func (f *fakeIndexer) RemoveFile(absPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, absPath)
	return nil
}

func (f *fakeIndexer) snapshot() (indexed, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.indexed...), append([]string(nil), f.removed...)
}

func waitForEvent(t *testing.T, w *Watcher, kind EventKind, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case e := <-w.Events():
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %s", kind)
		}
	}
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	idx := &fakeIndexer{}
	w, err := New(dir, types.DefaultWalkConfig(), idx, nil)
	require.NoError(t, err)
	w.stability = 50 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForEvent(t, w, EventIndexed, 2*time.Second)

	indexed, _ := idx.snapshot()
	assert.Len(t, indexed, 1, "rapid successive writes should collapse into a single settle")
}

func TestWatcher_IgnoresExcludedPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))

	idx := &fakeIndexer{}
	w, err := New(dir, types.DefaultWalkConfig(), idx, nil)
	require.NoError(t, err)
	w.stability = 30 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "ignored.json"), []byte(`{}`), 0o644))
	time.Sleep(200 * time.Millisecond)

	indexed, _ := idx.snapshot()
	assert.Empty(t, indexed)
}

func TestWatcher_RemoveTriggersRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	idx := &fakeIndexer{}
	w, err := New(dir, types.DefaultWalkConfig(), idx, nil)
	require.NoError(t, err)
	w.stability = 30 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	waitForEvent(t, w, EventRemoved, 2*time.Second)
	_, removed := idx.snapshot()
	assert.Equal(t, []string{path}, removed)
}
