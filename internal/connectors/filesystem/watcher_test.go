package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchTimeout = 3 * time.Second

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w := NewWatcher(root, NewLoader(nil), 50*time.Millisecond)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func waitForChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "change channel closed unexpectedly")
		return change
	case <-time.After(watchTimeout):
		t.Fatal("timeout waiting for change event")
		return Change{}
	}
}

func TestWatcher_DetectsCreation(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "new.md")
	require.NoError(t, os.WriteFile(path, []byte("# New"), 0644))

	change := waitForChange(t, changes)
	assert.Equal(t, path, change.Path)
	assert.Equal(t, ChangeCreated, change.Type)
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	w := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	change := waitForChange(t, changes)
	assert.Equal(t, path, change.Path)
	assert.Equal(t, ChangeRemoved, change.Type)
}

func TestWatcher_IgnoresUninterestingFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "binary.bin"), []byte{0, 1}, 0644))

	select {
	case change := <-changes:
		t.Fatalf("unexpected change for filtered file: %+v", change)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_DebouncesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.md")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))

	w := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	// A burst of writes within the quiet window collapses to one event.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	change := waitForChange(t, changes)
	assert.Equal(t, path, change.Path)
	assert.Equal(t, ChangeUpdated, change.Type)

	select {
	case extra := <-changes:
		t.Fatalf("burst produced a second event: %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := NewWatcher("/does/not/exist", NewLoader(nil), 0)

	changes, err := w.Watch(context.Background())
	require.Error(t, err)
	assert.Nil(t, changes)
	assert.Contains(t, err.Error(), "root path error")
}

func TestWatcher_ClosesChannelOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok, "channel should be closed after cancellation")
	case <-time.After(watchTimeout):
		t.Fatal("timeout waiting for channel close")
	}
}
