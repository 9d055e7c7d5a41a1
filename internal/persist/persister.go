package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/model"
	"github.com/BuzzLyutic/todolist/internal/repo"
	"github.com/BuzzLyutic/todolist/internal/worker"
)

const ioTimeout = 5 * time.Second

// Load reads the list stored under key. Missing or corrupt data yields an
// empty list; only storage I/O errors are logged.
func Load(ctx context.Context, storage repo.Storage, key string, gen idgen.Generator, now func() int64, logger *zap.Logger) []model.Task {
	raw, ok, err := storage.Read(ctx, key)
	if err != nil {
		logger.Warn("failed to read stored todos", zap.String("key", key), zap.Error(err))
		return []model.Task{}
	}
	if !ok {
		return []model.Task{}
	}

	tasks, ok := Decode(raw, gen, now)
	if !ok {
		return []model.Task{}
	}
	return tasks
}

// Persister writes the current list through a Scheduler. Write failures are
// logged and dropped; there is no retry.
type Persister struct {
	storage   repo.Storage
	key       string
	source    func() []model.Task
	scheduler worker.Scheduler
	logger    *zap.Logger

	mu sync.Mutex // сериализует записи: последняя запись всегда видит последнее состояние
}

func NewPersister(storage repo.Storage, key string, source func() []model.Task, scheduler worker.Scheduler, logger *zap.Logger) *Persister {
	if scheduler == nil {
		scheduler = worker.Immediate{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		storage:   storage,
		key:       key,
		source:    source,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Changed schedules a write of whatever the list holds when the job runs.
func (p *Persister) Changed() {
	p.scheduler.Schedule(p.Save)
}

// Save writes the list synchronously and reports nothing to the caller.
func (p *Persister) Save() {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, err := Encode(p.source())
	if err != nil {
		p.logger.Error("failed to encode todos", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	if err := p.storage.Write(ctx, p.key, raw); err != nil {
		level := p.logger.Warn
		if errors.Is(err, context.DeadlineExceeded) {
			level = p.logger.Error
		}
		level("failed to persist todos", zap.String("key", p.key), zap.Error(err))
		return
	}
	p.logger.Debug("todos persisted", zap.String("key", p.key), zap.Int("bytes", len(raw)))
}

func (p *Persister) Flush() { p.scheduler.Flush() }

func (p *Persister) Stop() { p.scheduler.Stop() }
