package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pictag/internal/media"
	"pictag/internal/watch"
	"pictag/pkg/testutils"
	"pictag/pkg/types"
)

type recordingSink struct {
	mu      sync.Mutex
	added   []types.Image
	removed []string
}

func (s *recordingSink) AddImage(img types.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, img)
}

func (s *recordingSink) RemoveImage(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
}

func (s *recordingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.added), len(s.removed)
}

func newScanner(t *testing.T) *media.Scanner {
	t.Helper()
	scanner, err := media.NewScanner(media.WithMinSizeKB(0))
	require.NoError(t, err)
	return scanner
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	path := testutils.CreateTestImage(t, dir, "photo.png", 8, 6, 2)
	w, err := watch.New(dir)
	require.NoError(t, err)
	sink := &recordingSink{}
	s := watch.NewSyncer(w, newScanner(t), sink)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: path, Op: fsnotify.Create, Timestamp: time.Now()}))
	require.Len(t, sink.added, 1)
	assert.Equal(t, path, sink.added[0].Path)
	assert.Equal(t, 8, sink.added[0].Width)
	assert.Equal(t, 6, sink.added[0].Height)

	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: path, Op: fsnotify.Rename}))
	assert.Equal(t, []string{path}, sink.removed)

	// a file that vanished before it could be read is skipped
	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: filepath.Join(dir, "gone.png"), Op: fsnotify.Create}))

	status := s.Status()
	assert.Equal(t, 1, status.Added)
	assert.Equal(t, 1, status.Removed)
	assert.Equal(t, dir, status.Directory)
	assert.False(t, status.Running)
}

func TestApplyHonoursSizeFloor(t *testing.T) {
	dir := t.TempDir()
	scanner, err := media.NewScanner()
	require.NoError(t, err)
	w, err := watch.New(dir)
	require.NoError(t, err)
	sink := &recordingSink{}
	s := watch.NewSyncer(w, scanner, sink)
	ctx := context.Background()

	tiny := testutils.CreateTestImage(t, dir, "tiny.jpg", 4, 4, 1)
	images, err := scanner.Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, images)

	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: tiny, Op: fsnotify.Create}))
	assert.Empty(t, sink.added)

	big := testutils.CreateTestImage(t, dir, "big.jpg", 4, 4, 20)
	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: big, Op: fsnotify.Create}))
	require.Len(t, sink.added, 1)
	assert.Equal(t, big, sink.added[0].Path)

	// rewritten below the floor, the image leaves the collection
	require.NoError(t, os.Truncate(big, 1024))
	require.NoError(t, s.Apply(ctx, watch.FileEvent{Path: big, Op: fsnotify.Write}))
	assert.Contains(t, sink.removed, big)
	assert.Len(t, sink.added, 1)
	assert.Equal(t, 1, s.Status().Added)
}

func TestSyncerFollowsDirectory(t *testing.T) {
	dir := t.TempDir()
	scanner := newScanner(t)
	w, err := watch.New(dir, watch.WithFilter(scanner.IsImage))
	require.NoError(t, err)
	sink := &recordingSink{}
	s := watch.NewSyncer(w, scanner, sink)

	applied := make(chan watch.FileEvent, 16)
	s.SetCallback(func(e watch.FileEvent, err error) {
		if err == nil {
			select {
			case applied <- e:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Status().Running)
	time.Sleep(100 * time.Millisecond)

	path := testutils.CreateTestImage(t, dir, "new.png", 4, 4, 1)
	require.Eventually(t, func() bool {
		added, _ := sink.counts()
		return added > 0
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, removed := sink.counts()
		return removed > 0
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !s.Status().Running }, 3*time.Second, 20*time.Millisecond)
	assert.NotEmpty(t, applied)
}
