package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// UsageRecorder appends audit entries off the consumption hot path.
// Record enqueues onto a buffered channel and never blocks: a full buffer
// drops the entry with a log line, because audit latency or failure must not
// affect the caller's quota decrement or response.
type UsageRecorder struct {
	logger *slog.Logger
	usage  ports.UsageRepository
	queue  chan domain.UsageRecord
}

// NewUsageRecorder constructs the recorder with a bounded queue.
func NewUsageRecorder(logger *slog.Logger, usage ports.UsageRepository, queueSize int) *UsageRecorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &UsageRecorder{
		logger: logger,
		usage:  usage,
		queue:  make(chan domain.UsageRecord, queueSize),
	}
}

// Record submits an entry for background persistence. Non-blocking.
func (r *UsageRecorder) Record(record domain.UsageRecord) {
	select {
	case r.queue <- record:
	default:
		r.logger.Warn("usage record dropped; queue full",
			"module", "events.usage_recorder",
			"layer", "adapter",
			"operation", "record_usage",
			"outcome", "dropped",
			"device_id", record.DeviceID,
			"action", record.Action,
		)
	}
}

// Run drains the queue until context cancellation, then flushes what is left.
func (r *UsageRecorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		case record := <-r.queue:
			r.persist(ctx, record)
		}
	}
}

func (r *UsageRecorder) persist(ctx context.Context, record domain.UsageRecord) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.usage.Insert(writeCtx, record); err != nil {
		r.logger.Warn("usage record write failed",
			"module", "events.usage_recorder",
			"layer", "adapter",
			"operation", "record_usage",
			"outcome", "failure",
			"device_id", record.DeviceID,
			"action", record.Action,
			"error", err,
		)
	}
}

func (r *UsageRecorder) drain() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		select {
		case record := <-r.queue:
			r.persist(flushCtx, record)
		default:
			return
		}
	}
}
