package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/domain"
	"github.com/shahamitr/parichay-sub004/internal/metrics"
	"github.com/shahamitr/parichay-sub004/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter handles deduplicating, batching and writing events to the
// repository.
type BatchWriter struct {
	repository repository.EventRepository
	dedupe     DedupeChecker
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer. dedupe may be nil, in which
// case every event is written.
func NewBatchWriter(repo repository.EventRepository, dedupe DedupeChecker, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		dedupe:     dedupe,
		config:     config,
		log:        log,
	}
}

// Start begins processing envelopes, batching, and writing to the repository
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			if len(batch) > 0 {
				w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
			}
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				if len(batch) > 0 {
					w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
					w.processBatch(ctx, batch)
				}
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Info("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Info("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch runs the dedupe gate, inserts survivors, then acks or nacks.
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	fresh, duplicates := w.splitDuplicates(ctx, envelopes)

	// Duplicates were already written by an earlier delivery; ack so SQS
	// stops redelivering them.
	for _, env := range duplicates {
		metrics.EventsDeduplicated.Inc()
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack duplicate envelope", zap.Error(err))
		}
	}

	if len(fresh) == 0 {
		return
	}

	events := make([]*domain.Event, len(fresh))
	for i, env := range fresh {
		events[i] = env.Event
	}

	insertedCount, err := w.repository.InsertBatch(ctx, events)

	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		w.nackAll(ctx, fresh)
		return
	}

	if insertedCount != len(events) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(events)))
		w.nackAll(ctx, fresh)
		return
	}

	metrics.BatchesFlushed.Inc()
	metrics.BatchSize.Observe(float64(insertedCount))

	w.log.Info("Successfully inserted events",
		zap.Int("count", insertedCount))
	w.ackAll(ctx, fresh)
}

// splitDuplicates partitions envelopes into first-seen and already-seen. A
// dedupe error nacks the envelope (the checker itself fails open when
// configured to, so an error here means fail-closed was requested).
func (w *BatchWriter) splitDuplicates(ctx context.Context, envelopes []*Envelope) (fresh, duplicates []*Envelope) {
	if w.dedupe == nil {
		return envelopes, nil
	}

	for _, env := range envelopes {
		first, err := w.dedupe.FirstSeen(ctx, env.ID())
		if err != nil {
			w.log.Error("Dedupe check failed",
				zap.String("event_id", env.ID()),
				zap.Error(err))
			if err := env.Nack(ctx); err != nil {
				w.log.Error("Failed to nack envelope", zap.Error(err))
			}
			continue
		}
		if first {
			fresh = append(fresh, env)
		} else {
			duplicates = append(duplicates, env)
		}
	}
	return fresh, duplicates
}

// ackAll acknowledges all envelopes (deletes from SQS)
func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope", zap.Error(err))
		}
	}
}

// nackAll negatively acknowledges all envelopes (leaves in SQS for retry)
func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope", zap.Error(err))
		}
	}
}
