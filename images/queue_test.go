package images

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRemover struct {
	mu      sync.Mutex
	removed []string
	fail    map[string]bool
}

func (r *recordingRemover) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[name] {
		return errors.New("permission denied")
	}
	r.removed = append(r.removed, name)
	return nil
}

func (r *recordingRemover) Removed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

func TestCleanupQueueRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	var paths []string
	for _, n := range []string{"1-a.jpg", "2-b.jpg", "3-c.jpg"} {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		paths = append(paths, p)
	}

	q := NewCleanupQueue(4, store, logrus.New())
	q.Start()
	require.NoError(t, q.Enqueue(context.Background(), []string{"1-a.jpg", "uploads/2-b.jpg", "3-c.jpg", "missing.jpg"}))
	require.NoError(t, q.Close())

	for _, p := range paths {
		assert.NoFileExists(t, p)
	}
}

func TestCleanupQueueFullAndClosed(t *testing.T) {
	q := NewCleanupQueue(1, &recordingRemover{}, logrus.New())

	assert.NoError(t, q.Enqueue(context.Background(), []string{"a"}))
	assert.Equal(t, 1, q.Len())
	err := q.Enqueue(context.Background(), []string{"b"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "1 batches pending")

	// empty batches are a no-op even when full
	assert.NoError(t, q.Enqueue(context.Background(), nil))

	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.Enqueue(context.Background(), []string{"c"}), ErrQueueClosed)
	assert.NoError(t, q.Close())
}

func TestCleanupQueueContinuesAfterFailure(t *testing.T) {
	remover := &recordingRemover{fail: map[string]bool{"bad.jpg": true}}
	q := NewCleanupQueue(4, remover, logrus.New())
	q.Start()

	require.NoError(t, q.Enqueue(context.Background(), []string{"bad.jpg", "good.jpg"}))

	assert.Eventually(t, func() bool {
		return len(remover.Removed()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"good.jpg"}, remover.Removed())
	require.NoError(t, q.Close())
}
