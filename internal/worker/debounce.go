package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDelay = 250 * time.Millisecond

// Debouncer откладывает задачу до паузы длиной delay.
// Каждый новый Schedule отменяет ожидающую задачу и перезапускает таймер,
// поэтому в ожидании всегда не больше одной задачи.
type Debouncer struct {
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending func()
	running bool

	kick  chan struct{}
	flush chan chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func NewDebouncer(delay time.Duration, logger *zap.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Debouncer{
		delay:  delay,
		logger: logger,
		kick:   make(chan struct{}, 1),
		flush:  make(chan chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (d *Debouncer) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Debug("Starting debouncer", zap.Duration("delay", d.delay))
	go d.loop(ctx)
}

// Stop выполняет отложенную задачу и останавливает цикл
func (d *Debouncer) Stop() {
	d.once.Do(func() {
		close(d.stop)
	})

	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if running {
		<-d.done
	}
	// Цикл мог быть не запущен или завершен по ctx, добиваем остаток здесь
	d.runPending()
	d.logger.Debug("Debouncer stopped")
}

func (d *Debouncer) Schedule(job func()) {
	if job == nil {
		return
	}
	d.mu.Lock()
	d.pending = job
	d.mu.Unlock()

	select {
	case d.kick <- struct{}{}:
	default: // сигнал уже стоит в очереди
	}
}

func (d *Debouncer) Flush() {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	if !running {
		d.runPending()
		return
	}

	ack := make(chan struct{})
	select {
	case d.flush <- ack:
		<-ack
	case <-d.done:
		d.runPending()
	}
}

func (d *Debouncer) loop(ctx context.Context) {
	defer close(d.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		case <-d.kick:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(d.delay)
			fire = timer.C
		case <-fire:
			fire = nil
			d.runPending()
		case ack := <-d.flush:
			if timer != nil {
				timer.Stop()
			}
			fire = nil
			d.runPending()
			close(ack)
		}
	}
}

func (d *Debouncer) runPending() {
	d.mu.Lock()
	job := d.pending
	d.pending = nil
	d.mu.Unlock()

	if job == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debounced job panicked", zap.Any("panic", r))
		}
	}()
	job()
}
