package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCleanupKey = "uploads:cleanup"
	popTimeout        = 5 * time.Second
)

type cleanupJob struct {
	Files      []string  `json:"files"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// RedisCleanupQueue keeps pending removals in a Redis list so they survive a
// restart. Files that fail to be removed are pushed to "<key>:failed".
type RedisCleanupQueue struct {
	client    *redis.Client
	key       string
	failedKey string
	remover   Remover
	logger    logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisCleanupQueue(client *redis.Client, key string, remover Remover, logger logrus.FieldLogger) *RedisCleanupQueue {
	if key == "" {
		key = DefaultCleanupKey
	}
	return &RedisCleanupQueue{
		client:    client,
		key:       key,
		failedKey: key + ":failed",
		remover:   remover,
		logger:    logger.WithField("queue", key),
	}
}

func (q *RedisCleanupQueue) Enqueue(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	payload, err := json.Marshal(cleanupJob{Files: files, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue cleanup job: %w", err)
	}
	return nil
}

// Start runs the worker until Close is called.
func (q *RedisCleanupQueue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.run(ctx)
	}()
}

func (q *RedisCleanupQueue) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := q.ProcessNext(ctx, popTimeout); err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.WithError(err).Error("Cleanup worker failed to pop job")
			time.Sleep(time.Second)
		}
	}
}

// ProcessNext waits up to timeout for one job and handles it. It reports
// whether a job was processed.
func (q *RedisCleanupQueue) ProcessNext(ctx context.Context, timeout time.Duration) (bool, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var job cleanupJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		q.logger.WithError(err).WithField("payload", res[1]).Error("Dropping malformed cleanup job")
		return true, nil
	}

	failed := removeBatch(q.remover, job.Files, q.logger)
	if len(failed) > 0 {
		vals := make([]interface{}, len(failed))
		for i, f := range failed {
			vals[i] = f
		}
		if err := q.client.RPush(ctx, q.failedKey, vals...).Err(); err != nil {
			q.logger.WithError(err).WithField("files", failed).Error("Failed to record leaked files")
		}
	}
	return true, nil
}

func (q *RedisCleanupQueue) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	return nil
}
