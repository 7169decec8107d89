package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"moex-client/internal/domain/entity/market"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotRunning = errors.New("batch writer is not running")
	ErrNilSink    = errors.New("reading sink is nil")
)

// BatchConfig controls batching thresholds for published readings.
type BatchConfig struct {
	Size    int
	Timeout time.Duration
}

func (c BatchConfig) limit() int {
	if c.Size <= 0 {
		return 1
	}
	return c.Size
}

// ReadingSink receives flushed batches.
type ReadingSink interface {
	PublishReadings(ctx context.Context, readings []market.Reading) error
}

// BatchWriter buffers readings and hands them to the sink when the batch is
// full or Timeout has passed since the first reading of the batch arrived.
type BatchWriter struct {
	cfg    BatchConfig
	sink   ReadingSink
	logger *logrus.Entry

	mu      sync.Mutex
	ctx     context.Context
	pending []market.Reading
	timer   *time.Timer
}

// NewBatchWriter configures a batch writer in front of sink.
func NewBatchWriter(cfg BatchConfig, sink ReadingSink, logger *logrus.Logger) (*BatchWriter, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BatchWriter{
		cfg:    cfg,
		sink:   sink,
		logger: logger.WithField("component", "batch_writer"),
	}, nil
}

// Run sets the context used by size and timer flushes. Add fails until Run is called.
func (w *BatchWriter) Run(ctx context.Context) {
	w.setContext(ctx)
}

// Stop switches to ctx and publishes whatever is still buffered.
func (w *BatchWriter) Stop(ctx context.Context) error {
	w.setContext(ctx)

	w.mu.Lock()
	ctx = w.ctx
	batch := w.takeLocked()
	w.mu.Unlock()

	return w.publish(ctx, batch)
}

// Add buffers readings. A full batch is published synchronously and its
// error returned; every full batch in readings is attempted.
func (w *BatchWriter) Add(readings ...market.Reading) error {
	var errs []error
	for _, r := range readings {
		ctx, batch, err := w.push(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := w.publish(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *BatchWriter) setContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()
}

// push appends r and returns a batch to publish once the size limit is hit.
func (w *BatchWriter) push(r market.Reading) (context.Context, []market.Reading, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx == nil {
		return nil, nil, ErrNotRunning
	}
	if err := w.ctx.Err(); err != nil {
		return nil, nil, err
	}

	w.pending = append(w.pending, r)
	if len(w.pending) >= w.cfg.limit() {
		return w.ctx, w.takeLocked(), nil
	}
	if w.timer == nil && w.cfg.Timeout > 0 {
		w.timer = time.AfterFunc(w.cfg.Timeout, w.flushExpired)
	}
	return w.ctx, nil, nil
}

func (w *BatchWriter) flushExpired() {
	w.mu.Lock()
	ctx := w.ctx
	batch := w.takeLocked()
	w.mu.Unlock()

	if err := w.publish(ctx, batch); err != nil {
		w.logger.WithError(err).WithField("size", len(batch)).Warn("timed batch flush failed")
	}
}

func (w *BatchWriter) takeLocked() []market.Reading {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if len(w.pending) == 0 {
		return nil
	}
	batch := w.pending
	w.pending = nil
	return batch
}

func (w *BatchWriter) publish(ctx context.Context, batch []market.Reading) error {
	if len(batch) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	if err := w.sink.PublishReadings(ctx, batch); err != nil {
		return err
	}
	w.logger.WithFields(logrus.Fields{
		"size":    len(batch),
		"took_ms": time.Since(start).Milliseconds(),
	}).Debug("published batch")
	return nil
}
