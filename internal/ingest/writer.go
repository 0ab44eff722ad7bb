// Package ingest absorbs bursts of review submissions. A token bucket decides
// whether a submission is written straight away or parked in a bounded buffer
// that a single flusher drains into multi-row inserts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

const (
	DefaultCapacity      = 1024
	DefaultBatchSize     = 25
	DefaultFlushInterval = 250 * time.Millisecond
	DefaultFlushTimeout  = 5 * time.Second
	DefaultWaitTimeout   = 10 * time.Second
	DefaultDirectRate    = rate.Limit(50)
	DefaultDirectBurst   = 10

	PathDirect   = "direct"
	PathBuffered = "buffered"
)

var (
	// ErrBufferFull is returned when the buffer has no room; callers should retry later.
	ErrBufferFull = errors.New("review buffer is full")
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("review writer is closed")
	// ErrBatchFailed wraps the insert error delivered to every caller of a failed batch.
	ErrBatchFailed = errors.New("batch insert failed")
	// ErrWaitTimeout is returned when a buffered submission is not flushed before its deadline.
	ErrWaitTimeout = errors.New("timed out waiting for batch flush")
)

// Store persists reviews. Both calls must assign IDs to the given reviews on success.
// When InsertMany fails part way, the reviews it did store must carry their IDs.
type Store interface {
	InsertOne(ctx context.Context, review *domain.Review) error
	InsertMany(ctx context.Context, reviews []*domain.Review) error
}

// DeadLetter keeps reviews from a failed batch for later inspection.
type DeadLetter interface {
	Record(ctx context.Context, reviews []*domain.Review, cause error) error
}

// Recorder receives write path measurements.
type Recorder interface {
	ObserveSubmission(path, status string)
	SetBufferDepth(depth int)
	ObserveFlush(status string, size int)
	ObserveDeadLetter(count int)
}

// Config defines the dependencies and tuning of a Writer. Zero values fall back to defaults.
// A negative DirectRate disables the direct path so every submission is buffered.
type Config struct {
	Store      Store
	DeadLetter DeadLetter
	Logger     *zap.SugaredLogger
	Recorder   Recorder

	Capacity      int
	BatchSize     int
	FlushInterval time.Duration
	FlushTimeout  time.Duration
	WaitTimeout   time.Duration
	DirectRate    rate.Limit
	DirectBurst   int
}

const (
	itemQueued int32 = iota
	itemClaimed
	itemAbandoned
)

// pending moves from queued to either claimed (by the flusher) or abandoned
// (by its caller), never both.
type pending struct {
	review *domain.Review
	done   chan error
	state  atomic.Int32
}

// Writer implements application.ReviewWriter.
type Writer struct {
	store      Store
	deadLetter DeadLetter
	logger     *zap.SugaredLogger
	recorder   Recorder
	limiter    *rate.Limiter

	queue         chan *pending
	batchSize     int
	flushInterval time.Duration
	flushTimeout  time.Duration
	waitTimeout   time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	stop    chan struct{}
	stopped chan struct{}
}

// New builds a Writer. Call Start to begin flushing.
func New(cfg Config) *Writer {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	if cfg.DirectBurst <= 0 {
		cfg.DirectBurst = DefaultDirectBurst
	}

	var limiter *rate.Limiter
	switch {
	case cfg.DirectRate < 0:
		limiter = rate.NewLimiter(0, 0)
	case cfg.DirectRate == 0:
		limiter = rate.NewLimiter(DefaultDirectRate, cfg.DirectBurst)
	default:
		limiter = rate.NewLimiter(cfg.DirectRate, cfg.DirectBurst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Writer{
		store:         cfg.Store,
		deadLetter:    cfg.DeadLetter,
		logger:        logger,
		recorder:      recorder,
		limiter:       limiter,
		queue:         make(chan *pending, cfg.Capacity),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		flushTimeout:  cfg.FlushTimeout,
		waitTimeout:   cfg.WaitTimeout,
		stop:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}
}

// Start launches the flusher goroutine. It is a no-op after the first call or after Close.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.run()
}

// Depth reports how many submissions are waiting to be flushed.
func (w *Writer) Depth() int {
	return len(w.queue)
}

// Write persists review, either directly or through the buffer, and returns once
// it is stored or has definitively failed. On success review.ID is set.
//
// A buffered caller whose deadline passes gets ErrWaitTimeout only while its
// review is still queued. Once the flusher has claimed it, Write waits for the
// batch outcome, which the flush timeout bounds.
func (w *Writer) Write(ctx context.Context, review *domain.Review) error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrClosed
	}
	if w.limiter.Allow() {
		w.mu.RUnlock()
		return w.writeDirect(ctx, review)
	}

	waitCtx, cancel := context.WithTimeout(ctx, w.waitTimeout)
	defer cancel()

	item := &pending{review: review, done: make(chan error, 1)}
	select {
	case w.queue <- item:
	default:
		w.mu.RUnlock()
		w.recorder.ObserveSubmission(PathBuffered, "rejected")
		return ErrBufferFull
	}
	w.mu.RUnlock()
	w.recorder.SetBufferDepth(len(w.queue))

	select {
	case err := <-item.done:
		return err
	case <-waitCtx.Done():
		if item.state.CompareAndSwap(itemQueued, itemAbandoned) {
			w.recorder.ObserveSubmission(PathBuffered, "expired")
			return fmt.Errorf("%w: %w", ErrWaitTimeout, waitCtx.Err())
		}
		return <-item.done
	}
}

func (w *Writer) writeDirect(ctx context.Context, review *domain.Review) error {
	if err := w.store.InsertOne(ctx, review); err != nil {
		w.recorder.ObserveSubmission(PathDirect, "failed")
		return err
	}
	w.recorder.ObserveSubmission(PathDirect, "ok")
	return nil
}

// Close stops accepting writes, flushes whatever is buffered and waits for the
// flusher to exit or ctx to end.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	if !started {
		w.flush()
		return nil
	}

	close(w.stop)
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

// flush drains the buffer batch by batch until it is empty.
func (w *Writer) flush() {
	for {
		batch := w.drain()
		if len(batch) == 0 {
			return
		}
		w.insert(batch)
	}
}

func (w *Writer) drain() []*pending {
	batch := make([]*pending, 0, w.batchSize)
	for len(batch) < w.batchSize {
		select {
		case item := <-w.queue:
			// abandoned by its caller, so the review must not be written
			if !item.state.CompareAndSwap(itemQueued, itemClaimed) {
				continue
			}
			batch = append(batch, item)
		default:
			return batch
		}
	}
	return batch
}

func (w *Writer) insert(batch []*pending) {
	reviews := make([]*domain.Review, 0, len(batch))
	for _, item := range batch {
		reviews = append(reviews, item.review)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.flushTimeout)
	defer cancel()

	err := w.store.InsertMany(ctx, reviews)
	w.recorder.SetBufferDepth(len(w.queue))
	if err != nil {
		w.recorder.ObserveFlush("error", len(batch))

		failure := fmt.Errorf("%w: %v", ErrBatchFailed, err)
		unstored := make([]*domain.Review, 0, len(batch))
		for _, item := range batch {
			if item.review.ID != "" {
				w.recorder.ObserveSubmission(PathBuffered, "ok")
				item.done <- nil
				continue
			}
			w.recorder.ObserveSubmission(PathBuffered, "failed")
			unstored = append(unstored, item.review)
			item.done <- failure
		}

		w.logger.Errorw("batch insert failed", "size", len(batch), "stored", len(batch)-len(unstored), "error", err)
		w.recordDeadLetter(unstored, err)
		return
	}

	w.recorder.ObserveFlush("ok", len(batch))
	w.logger.Debugw("flushed review batch", "size", len(batch), "remaining", len(w.queue))
	for _, item := range batch {
		w.recorder.ObserveSubmission(PathBuffered, "ok")
		item.done <- nil
	}
}

func (w *Writer) recordDeadLetter(reviews []*domain.Review, cause error) {
	if w.deadLetter == nil || len(reviews) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.flushTimeout)
	defer cancel()
	if err := w.deadLetter.Record(ctx, reviews, cause); err != nil {
		w.logger.Errorw("failed to record dead-lettered reviews", "size", len(reviews), "error", err)
		return
	}
	w.recorder.ObserveDeadLetter(len(reviews))
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, string) {}
func (nopRecorder) SetBufferDepth(int)               {}
func (nopRecorder) ObserveFlush(string, int)         {}
func (nopRecorder) ObserveDeadLetter(int)            {}
