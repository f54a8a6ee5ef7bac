package images

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("cleanup queue is full")
	ErrQueueClosed = errors.New("cleanup queue is closed")
)

// Remover deletes one stored file.
type Remover interface {
	Remove(name string) error
}

// CleanupQueue is an in-process queue of file batches awaiting removal,
// drained by a single worker goroutine.
type CleanupQueue struct {
	items   chan []string
	maxSize int
	closed  bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
	remover Remover
	logger  logrus.FieldLogger
}

func NewCleanupQueue(bufferSize int, remover Remover, logger logrus.FieldLogger) *CleanupQueue {
	return &CleanupQueue{
		items:   make(chan []string, bufferSize),
		maxSize: bufferSize,
		remover: remover,
		logger:  logger,
	}
}

// Enqueue schedules files for removal. It never blocks.
func (q *CleanupQueue) Enqueue(_ context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	batch := append([]string(nil), files...)
	select {
	case q.items <- batch:
		q.logger.WithField("files", len(batch)).Debug("Queued files for cleanup")
		return nil
	default:
		return fmt.Errorf("%w: %d batches pending", ErrQueueFull, q.maxSize)
	}
}

// Start begins draining the queue.
func (q *CleanupQueue) Start() {
	q.wg.Add(1)
	go q.process()
}

func (q *CleanupQueue) process() {
	defer q.wg.Done()
	for batch := range q.items {
		removeBatch(q.remover, batch, q.logger)
	}
}

// Close stops accepting work and waits for queued batches to be removed.
func (q *CleanupQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

func (q *CleanupQueue) Len() int {
	return len(q.items)
}

func (q *CleanupQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// removeBatch removes every file and returns the ones that could not be
// removed. Each failure is logged.
func removeBatch(remover Remover, batch []string, logger logrus.FieldLogger) []string {
	var failed []string
	for _, name := range batch {
		if err := remover.Remove(name); err != nil {
			logger.WithError(err).WithField("file", name).Error("Failed to remove uploaded file")
			failed = append(failed, name)
			continue
		}
		logger.WithField("file", name).Debug("Removed uploaded file")
	}
	return failed
}
