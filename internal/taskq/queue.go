// Package taskq runs order checkouts out of band on a bounded goroutine pool.
package taskq

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/shop"
	"github.com/talkincode/storefront/pkg/common"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
)

const (
	TopicOrderProcessed = "order:processed"
	TopicOrderFailed    = "order:failed"

	MetricOrderSuccess = "order_task_success"
	MetricOrderFailure = "order_task_failure"
)

var (
	ErrQueueFull   = errors.New("order queue is full")
	ErrQueueClosed = errors.New("order queue is closed")
)

// OrderRunner executes one checkout
type OrderRunner interface {
	ProcessOrder(ctx context.Context, userID int64) shop.OrderResult
}

// OrderEvent is published on the bus after every task run
type OrderEvent struct {
	TaskID string
	UserID int64
	Result shop.OrderResult
}

type Queue struct {
	pool   *ants.Pool
	runner OrderRunner
	logs   shop.TaskLogRepository
	bus    EventBus.Bus

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue running at most size tasks at once. Submissions
// beyond that are rejected with ErrQueueFull. bus may be nil.
func NewQueue(size int, runner OrderRunner, logs shop.TaskLogRepository, bus EventBus.Bus) (*Queue, error) {
	if size <= 0 {
		size = 16
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true), ants.WithPanicHandler(func(p interface{}) {
		zap.L().Error("order task panic", zap.String("namespace", "taskq"), zap.Any("panic", p))
		metrics.Incr(MetricOrderFailure, 1)
	}))
	if err != nil {
		return nil, err
	}
	return &Queue{pool: pool, runner: runner, logs: logs, bus: bus}, nil
}

// EnqueueOrder schedules a checkout for userID and returns its task id
// without waiting for the outcome.
func (q *Queue) EnqueueOrder(userID int64) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", ErrQueueClosed
	}

	taskID := common.UUID()
	q.wg.Add(1)
	err := q.pool.Submit(func() {
		defer q.wg.Done()
		q.run(taskID, userID)
	})
	if err != nil {
		q.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			return "", ErrQueueFull
		}
		return "", errors.Wrap(err, "submit order task")
	}
	zap.L().Info("order task queued",
		zap.String("namespace", "taskq"),
		zap.String("task_id", taskID),
		zap.Int64("user_id", userID))
	return taskID, nil
}

func (q *Queue) run(taskID string, userID int64) {
	start := time.Now()
	result := q.runner.ProcessOrder(context.Background(), userID)

	entry := &domain.OrderTaskLog{
		ID:         common.UUIDint64(),
		TaskID:     taskID,
		UserID:     userID,
		OrderID:    result.OrderID,
		PaymentURL: result.PaymentURL,
		ErrorMsg:   result.Error,
		ExecutedAt: start,
	}
	topic := TopicOrderProcessed
	if result.Failed() {
		entry.Status = "failure"
		topic = TopicOrderFailed
		metrics.Incr(MetricOrderFailure, 1)
	} else {
		entry.Status = "success"
		metrics.Incr(MetricOrderSuccess, 1)
	}

	zap.L().Info("order task finished",
		zap.String("namespace", "taskq"),
		zap.String("task_id", taskID),
		zap.Int64("user_id", userID),
		zap.String("status", entry.Status),
		zap.String("error", result.Error),
		zap.Duration("elapsed", time.Since(start)))

	if q.logs != nil {
		if err := q.logs.Create(context.Background(), entry); err != nil {
			zap.L().Error("failed to save order task log", zap.String("task_id", taskID), zap.Error(err))
		}
	}
	if q.bus != nil {
		q.bus.Publish(topic, OrderEvent{TaskID: taskID, UserID: userID, Result: result})
	}
}

// Running number of tasks currently executing
func (q *Queue) Running() int {
	return q.pool.Running()
}

// Release stops accepting tasks, waits for running ones and stops the pool
func (q *Queue) Release() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
	q.pool.Release()
}
