package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pictag/internal/errors"
)

// waitFor reads events until one for path satisfies match
func waitFor(t *testing.T, events <-chan FileEvent, path string, match func(FileEvent) bool) FileEvent {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-events:
			require.True(t, ok, "event channel closed unexpectedly")
			if event.Path == path && match(event) {
				return event
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event on %s", path)
		}
	}
}

func TestWatcherFsnotify(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithFilter(func(name string) bool { return strings.HasSuffix(name, ".png") }))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())
	assert.Equal(t, dir, w.Directory())

	events := w.Events()
	time.Sleep(100 * time.Millisecond)

	// ignored by the filter
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	path := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
	created := waitFor(t, events, path, func(e FileEvent) bool { return e.Op.Has(fsnotify.Create) })
	assert.False(t, created.Removed())
	assert.False(t, created.Timestamp.IsZero())

	require.NoError(t, os.Remove(path))
	removed := waitFor(t, events, path, func(e FileEvent) bool { return e.Removed() })
	assert.True(t, removed.Op.Has(fsnotify.Remove))

	w.Stop()
	assert.False(t, w.IsRunning())

DrainLoop:
	for {
		select {
		case event, ok := <-events:
			if !ok {
				break DrainLoop
			}
			assert.NotEqual(t, filepath.Join(dir, "notes.txt"), event.Path)
		case <-time.After(time.Second):
			t.Fatal("event channel should be closed after stop")
		}
	}
}

func TestWatcherRejectsBadDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsFileNotFound(err))

	file := filepath.Join(t.TempDir(), "file.png")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file)
	require.Error(t, err)
}

func TestWatcherStartTwice(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.Error(t, w.Start())
}

func TestWatcherDropsWhenFull(t *testing.T) {
	w, err := New(t.TempDir(), WithBuffer(1))
	require.NoError(t, err)
	defer w.fsWatcher.Close()

	path := filepath.Join(w.Directory(), "gone.png")
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Rename})

	assert.Len(t, w.events, 1, "the second event is dropped, not queued")
}

func TestWatcherSkipsChmodAndVanished(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	defer w.fsWatcher.Close()

	w.handle(fsnotify.Event{Name: filepath.Join(w.Directory(), "x.png"), Op: fsnotify.Chmod})
	w.handle(fsnotify.Event{Name: filepath.Join(w.Directory(), "vanished.png"), Op: fsnotify.Create})
	assert.Empty(t, w.events)
}
