// internal/historian/historian.go
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/sirupsen/logrus"
)

// Source yields queued room activity. cache.Publisher implements it.
type Source interface {
	PopActivity(ctx context.Context, timeout time.Duration) (cache.ActivityRecord, bool, error)
}

// Sink persists a batch of records atomically. database.ActivityStore implements it.
type Sink interface {
	SaveActivity(ctx context.Context, recs []cache.ActivityRecord) error
}

// Service drains the activity queue into the sink in batches. A batch is written
// when it reaches BatchSize or when FlushDelay passes, whichever comes first.
type Service struct {
	src        Source
	sink       Sink
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	logger     *logrus.Logger

	mu    sync.Mutex
	batch []cache.ActivityRecord
}

func New(src Source, sink Sink, batchSize int, flushDelay time.Duration, logger *logrus.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Service{
		src:        src,
		sink:       sink,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: 3 * time.Second,
		logger:     logger,
		batch:      make([]cache.ActivityRecord, 0, batchSize),
	}
}

// Run pops records until ctx is cancelled, then writes whatever is still buffered.
func (s *Service) Run(ctx context.Context) {
	done := make(chan struct{})
	go s.flushLoop(ctx, done)

	for ctx.Err() == nil {
		rec, ok, err := s.src.PopActivity(ctx, s.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.WithError(err).Error("failed to pop activity")
			time.Sleep(s.flushDelay)
			continue
		}
		if ok {
			s.add(ctx, rec)
		}
	}

	<-done
	// ctx is gone; give the last batch its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.logger.Info("historian stopped")
}

func (s *Service) flushLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *Service) add(ctx context.Context, rec cache.ActivityRecord) {
	s.mu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.batchSize
	s.mu.Unlock()
	if full {
		s.flush(ctx)
	}
}

// flush writes the current batch. A failed batch is put back in front of anything
// that arrived meanwhile.
func (s *Service) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]cache.ActivityRecord, 0, s.batchSize)
	s.mu.Unlock()

	if err := s.sink.SaveActivity(ctx, pending); err != nil {
		s.logger.WithError(err).WithField("records", len(pending)).Error("failed to flush activity")
		s.mu.Lock()
		s.batch = append(pending, s.batch...)
		s.mu.Unlock()
		return
	}
	s.logger.WithField("records", len(pending)).Debug("flushed activity")
}
