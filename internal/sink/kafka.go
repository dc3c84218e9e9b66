package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// Publisher is the part of *kafka.Producer the batch sink uses.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Kafka buffers result events and publishes them when the buffer reaches
// batchSize or every flushInterval, whichever comes first. A failed batch
// is requeued; at most 3*batchSize events are kept.
type Kafka struct {
	pub           Publisher
	method        pipeline.Method
	mu            sync.Mutex
	buffer        []kafka.Event
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	wake          chan struct{}
	stop          chan struct{}
	done          chan struct{}
	once          sync.Once
	started       bool
}

func NewKafka(pub Publisher, method pipeline.Method, batchSize int, flushInterval time.Duration, m *metrics.Metrics) *Kafka {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Kafka{
		pub:           pub,
		method:        method,
		buffer:        make([]kafka.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		metrics:       m,
		logger:        slog.Default().With("component", "kafka-sink"),
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the flush loop. It runs until Close is called or ctx is
// cancelled; both end with a final flush.
func (k *Kafka) Start(ctx context.Context) {
	k.mu.Lock()
	k.started = true
	k.mu.Unlock()
	go func() {
		defer close(k.done)
		ticker := time.NewTicker(k.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				k.flush(ctx)
			case <-k.wake:
				k.flush(ctx)
			case <-k.stop:
				k.finalFlush()
				return
			case <-ctx.Done():
				k.finalFlush()
				return
			}
		}
	}()
	k.logger.Info("kafka sink started",
		"batch_size", k.batchSize,
		"flush_interval", k.flushInterval,
	)
}

func (k *Kafka) Write(_ context.Context, r *pipeline.Result) error {
	k.mu.Lock()
	k.buffer = append(k.buffer, kafka.Event{Key: r.Name, Value: NewEvent(k.method, r)})
	full := len(k.buffer) >= k.batchSize
	k.mu.Unlock()

	if full {
		select {
		case k.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Close stops the flush loop and reports events that could not be
// published.
func (k *Kafka) Close() error {
	k.mu.Lock()
	started := k.started
	k.mu.Unlock()
	if started {
		k.once.Do(func() { close(k.stop) })
		<-k.done
	} else {
		k.finalFlush()
	}
	if n := k.BufferLen(); n > 0 {
		return fmt.Errorf("kafka sink: %d result events not published", n)
	}
	return nil
}

func (k *Kafka) BufferLen() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buffer)
}

func (k *Kafka) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	k.flush(ctx)
}

func (k *Kafka) flush(ctx context.Context) {
	k.mu.Lock()
	if len(k.buffer) == 0 {
		k.mu.Unlock()
		return
	}
	batch := k.buffer
	k.buffer = make([]kafka.Event, 0, k.batchSize)
	k.mu.Unlock()

	err := k.pub.PublishBatch(ctx, batch)
	k.metrics.SinkWrite("kafka", err)
	if err != nil {
		k.logger.Error("batch flush failed",
			"batch_size", len(batch),
			"error", err,
		)
		k.mu.Lock()
		k.buffer = append(batch, k.buffer...)
		if limit := k.batchSize * 3; len(k.buffer) > limit {
			dropped := len(k.buffer) - limit
			k.buffer = k.buffer[:limit]
			k.logger.Warn("buffer overflow, events dropped", "dropped", dropped)
		}
		k.mu.Unlock()
		return
	}

	k.logger.Debug("batch flushed", "events", len(batch))
}
