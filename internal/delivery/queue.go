package delivery

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"qced_directory/internal/logger"
)

// Queue là hàng đợi job với số worker cố định
type Queue struct {
	jobs        chan Job
	channels    map[string]Channel
	workers     int
	maxAttempts int
	backoff     func(attempt int) time.Duration
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Option cấu hình Queue
type Option func(*Queue)

// WithBackoff thay hàm backoff (mặc định 2^attempt giây)
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(q *Queue) { q.backoff = fn }
}

// WithMaxAttempts thay số lần thử tối đa (mặc định 3)
func WithMaxAttempts(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

// NewQueue tạo hàng đợi với dung lượng size và số worker
func NewQueue(size, workers int, channels []Channel, opts ...Option) *Queue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{
		jobs:        make(chan Job, size),
		channels:    make(map[string]Channel, len(channels)),
		workers:     workers,
		maxAttempts: 3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt))) * time.Second
		},
		sendTimeout: 30 * time.Second,
	}
	for _, ch := range channels {
		q.channels[ch.Name()] = ch
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start chạy các worker cho tới khi ctx bị hủy hoặc Stop được gọi
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	logger.WithModule("delivery").WithField("workers", q.workers).Info("📦 [DELIVERY] Workers started")
}

// Enqueue thêm job, không chặn khi hàng đợi đầy
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop đóng hàng đợi, chờ worker xử lý hết job còn lại
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, index int) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, job)
		}
	}
}

// process gửi job, retry tới maxAttempts. Panic trong kênh gửi được recover.
func (q *Queue) process(ctx context.Context, job Job) {
	log := logger.WithModule("delivery").WithFields(logrus.Fields{
		"job_id":  job.ID,
		"channel": job.Channel,
	})

	channel, ok := q.channels[job.Channel]
	if !ok || !channel.Enabled() {
		log.Info("📦 [DELIVERY] Channel not configured, job skipped")
		return
	}

	for job.Attempts < q.maxAttempts {
		job.Attempts++
		err := q.send(ctx, channel, job)
		if err == nil {
			log.WithField("attempt", job.Attempts).Debug("📦 [DELIVERY] Sent")
			return
		}
		if job.Attempts >= q.maxAttempts {
			log.WithError(err).WithField("attempts", job.Attempts).Error("📦 [DELIVERY] Max retries exceeded")
			return
		}
		log.WithError(err).WithField("attempt", job.Attempts).Warn("📦 [DELIVERY] Send failed, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.backoff(job.Attempts)):
		}
	}
}

func (q *Queue) send(ctx context.Context, channel Channel, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panic: %v", channel.Name(), r)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, q.sendTimeout)
	defer cancel()
	return channel.Send(sendCtx, job)
}

var (
	defaultQueue   *Queue
	defaultQueueMu sync.RWMutex
)

// SetDefault đặt hàng đợi dùng chung cho Enqueue
func SetDefault(q *Queue) {
	defaultQueueMu.Lock()
	defer defaultQueueMu.Unlock()
	defaultQueue = q
}

// Enqueue thêm job vào hàng đợi dùng chung. Lỗi chỉ được log, không trả về cho request.
func Enqueue(job Job) {
	defaultQueueMu.RLock()
	q := defaultQueue
	defaultQueueMu.RUnlock()

	log := logger.WithModule("delivery").WithFields(logrus.Fields{"job_id": job.ID, "channel": job.Channel})
	if q == nil {
		log.Debug("📦 [DELIVERY] Queue not started, job dropped")
		return
	}
	if err := q.Enqueue(job); err != nil {
		log.WithError(err).Warn("📦 [DELIVERY] Failed to enqueue job")
	}
}
