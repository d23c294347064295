package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/kafka"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"go.uber.org/zap"
)

// MessageSource is the part of kafka.Consumer the projector uses.
type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Projector:
// - fetches billing envelopes from Kafka,
// - turns payment events into signed ClickHouse rows,
// - flushes by size/time and commits offsets only after a successful insert,
// - stops taking messages while a full batch cannot be inserted.
type Projector struct {
	// Dependencies
	Consumer MessageSource
	Events   repository.CHPaymentsRepository

	// Behavior
	BatchSize int           // max buffered messages per flush
	BatchWait time.Duration // max time to wait before flush
	RetryWait time.Duration // first backoff after a failed full batch, doubled up to maxRetryWait
}

const maxRetryWait = 30 * time.Second

func NewProjector(consumer MessageSource, events repository.CHPaymentsRepository) *Projector {
	return &Projector{
		Consumer:  consumer,
		Events:    events,
		BatchSize: 200,
		BatchWait: 500 * time.Millisecond,
		RetryWait: time.Second,
	}
}

// toPaymentEvent maps an envelope to a projection row. ok is false for events
// the projection does not track.
func toPaymentEvent(env model.Envelope) (repository.PaymentEvent, bool) {
	if env.Payment == nil {
		return repository.PaymentEvent{}, false
	}

	var sign int8
	switch env.Type {
	case model.EventPaymentRecorded:
		sign = 1
	case model.EventPaymentDeleted:
		sign = -1
	default:
		return repository.PaymentEvent{}, false
	}

	return repository.PaymentEvent{
		EventID:    env.ID,
		EventType:  env.Type.String(),
		CustomerID: env.CustomerID,
		PaymentID:  env.Payment.ID,
		PaidAt:     env.Payment.Date,
		Amount:     env.Payment.Amount,
		Sign:       sign,
		OccurredAt: env.OccurredAt,
	}, true
}

// Run starts the projector and blocks until ctx is cancelled.
func (p *Projector) Run(ctx context.Context) error {
	if p.BatchSize <= 0 {
		p.BatchSize = 200
	}
	if p.BatchWait <= 0 {
		p.BatchWait = 500 * time.Millisecond
	}
	if p.RetryWait <= 0 {
		p.RetryWait = time.Second
	}

	msgCh := make(chan kafka.Message, p.BatchSize)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)
		for {
			m, err := p.Consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Log.Warn("projector: kafka fetch failed", zap.Error(err))
				time.Sleep(200 * time.Millisecond)
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(p.BatchWait)
	defer tick.Stop()

	var (
		pending []kafka.Message
		events  []repository.PaymentEvent
	)

	flush := func(ctx context.Context) bool {
		if len(pending) == 0 {
			return true
		}
		if err := p.Events.InsertBatch(ctx, events); err != nil {
			// keep the batch; offsets stay uncommitted and the next flush retries
			metrics.ProjectedEventsTotal.WithLabelValues("failed").Add(float64(len(events)))
			logger.Log.Error("projector: clickhouse insert failed", zap.Int("events", len(events)), zap.Error(err))
			return false
		}
		if err := p.Consumer.Commit(ctx, pending...); err != nil {
			logger.Log.Error("projector: commit failed", zap.Error(err))
		}
		metrics.ProjectedEventsTotal.WithLabelValues("inserted").Add(float64(len(events)))
		logger.Log.Debug("projector: flushed", zap.Int("messages", len(pending)), zap.Int("events", len(events)))

		pending = pending[:0]
		events = events[:0]
		return true
	}

	// flushFull retries a full batch with backoff and reads nothing meanwhile,
	// so the buffer never grows past BatchSize.
	flushFull := func(ctx context.Context) {
		wait := p.RetryWait
		for !flush(ctx) {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			wait = min(wait*2, maxRetryWait)
		}
	}

	shutdownFlush := func() {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		flush(fctx)
	}

	for {
		select {
		case <-ctx.Done():
			shutdownFlush()
			return nil

		case m, ok := <-msgCh:
			if !ok {
				shutdownFlush()
				return nil
			}

			// poison and untracked events are committed with the batch they arrived in
			pending = append(pending, m)

			var env model.Envelope
			if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
				metrics.ProjectedEventsTotal.WithLabelValues("skipped").Inc()
				logger.Log.Warn("projector: bad envelope",
					zap.Int64("offset", m.Offset),
					zap.Int("partition", m.Partition),
					zap.Error(err),
				)
			} else if ev, ok := toPaymentEvent(env); ok {
				events = append(events, ev)
			} else {
				metrics.ProjectedEventsTotal.WithLabelValues("skipped").Inc()
			}

			if len(pending) >= p.BatchSize {
				flushFull(ctx)
			}

		case <-tick.C:
			flush(ctx)
		}
	}
}
