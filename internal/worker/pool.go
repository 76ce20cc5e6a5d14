package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const writeTimeout = 5 * time.Second

// Recorder is the part of the journal repository the pool writes through.
type Recorder interface {
	Create(ctx context.Context, rec model.GenerationRecord) (model.GenerationRecord, error)
}

// Pool writes journal records in the background so that generation requests
// never wait on the database.
type Pool struct {
	repo   Recorder
	logger *zap.Logger
	count  int
	queue  chan model.GenerationRecord
	wg     sync.WaitGroup
	stop   chan struct{}

	// mu не дает Submit положить запись после закрытия stop
	mu      sync.RWMutex
	stopped bool
}

func NewPool(repo Recorder, logger *zap.Logger, count, buffer int) *Pool {
	if count < 1 {
		count = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		repo:   repo,
		logger: logger,
		count:  count,
		queue:  make(chan model.GenerationRecord, buffer),
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting journal workers", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues rec without blocking. It reports false when the queue is full
// or the pool has been stopped.
func (p *Pool) Submit(rec model.GenerationRecord) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}
	select {
	case p.queue <- rec:
		return true
	default:
		return false
	}
}

// Stop waits for the workers to flush what is already queued.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.logger.Info("Stopping journal workers...")
	p.stopped = true
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Journal workers stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			p.drain(id)
			return
		case rec := <-p.queue:
			p.write(ctx, id, rec)
		}
	}
}

func (p *Pool) drain(id int) {
	for {
		select {
		case rec := <-p.queue:
			p.write(context.Background(), id, rec)
		default:
			return
		}
	}
}

func (p *Pool) write(ctx context.Context, workerID int, rec model.GenerationRecord) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	saved, err := p.repo.Create(ctx, rec)
	if err != nil {
		p.logger.Error("journal write failed",
			zap.Int("worker", workerID),
			zap.String("model", rec.Model),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("journal record written",
		zap.Int("worker", workerID),
		zap.Int64("record_id", saved.ID),
		zap.String("outcome", string(saved.Outcome)),
	)
}
