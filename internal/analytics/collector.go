package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/resilience"
)

// Publisher writes a batch of events; *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events and publishes them when a batch fills or the
// flush interval passes. Track never blocks the search path: when the
// buffer is full the event is dropped.
type Collector struct {
	publisher     Publisher
	events        chan SearchEvent
	batchSize     int
	flushInterval time.Duration
	retry         resilience.RetryConfig
	metrics       *metrics.Metrics
	logger        *slog.Logger
	done          chan struct{}
}

func NewCollector(p Publisher, batchSize int, flushInterval time.Duration, m *metrics.Metrics) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		publisher:     p,
		events:        make(chan SearchEvent, batchSize*10),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		retry:         resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second},
		metrics:       m,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Run publishes until ctx ends, then flushes what is buffered and returns.
func (c *Collector) Run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	for {
		select {
		case ev := <-c.events:
			batch = append(batch, toEvent(ev))
			if len(batch) >= c.batchSize {
				batch = c.flush(ctx, batch)
			}
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			batch = c.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.flush(flushCtx, batch)
			cancel()
			return
		}
	}
}

func (c *Collector) drain(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case ev := <-c.events:
			batch = append(batch, toEvent(ev))
		default:
			return batch
		}
	}
}

func toEvent(ev SearchEvent) kafka.Event {
	return kafka.Event{Key: ev.Variant, Value: ev}
}

// Track queues ev for publishing.
func (c *Collector) Track(ev SearchEvent) {
	select {
	case c.events <- ev:
	default:
		c.count("dropped", 1)
		c.logger.Warn("analytics event dropped, buffer full")
	}
}

// Wait blocks until Run has returned.
func (c *Collector) Wait() {
	<-c.done
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 {
		return batch
	}
	err := resilience.Retry(ctx, "publish-search-events", c.retry, func() error {
		return c.publisher.PublishBatch(ctx, batch)
	})
	if err != nil {
		c.count("failed", len(batch))
		c.logger.Error("publishing search events failed", "events", len(batch), "error", err)
	} else {
		c.count("published", len(batch))
	}
	return batch[:0]
}

func (c *Collector) count(status string, n int) {
	if c.metrics != nil {
		c.metrics.EventsPublished.WithLabelValues(status).Add(float64(n))
	}
}
