package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/persist"
	"github.com/BuzzLyutic/todolist/internal/worker"
)

type options struct {
	ids       idgen.Generator
	now       func() int64
	scheduler worker.Scheduler
	key       string
	logger    *zap.Logger
}

type Option func(*options)

func defaultOptions() options {
	return options{
		ids:       idgen.NewUUID(),
		now:       func() int64 { return time.Now().UnixMilli() },
		scheduler: worker.Immediate{},
		key:       persist.DefaultKey,
		logger:    zap.NewNop(),
	}
}

func WithIDGenerator(g idgen.Generator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock sets the time source, in epoch milliseconds.
func WithClock(now func() int64) Option {
	return func(o *options) { o.now = now }
}

// WithScheduler chooses how writes are issued: worker.Immediate writes on
// every change, a started *worker.Debouncer coalesces bursts.
func WithScheduler(s worker.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}
