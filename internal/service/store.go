package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/idgen"
	"github.com/BuzzLyutic/todolist/internal/model"
	"github.com/BuzzLyutic/todolist/internal/persist"
	"github.com/BuzzLyutic/todolist/internal/repo"
)

// TaskListStore владеет списком задач, черновиком ввода и текущим фильтром.
// Guard failures (blank draft, unknown id, bad index, unknown filter) are
// silent no-ops; no operation returns an error.
type TaskListStore struct {
	mu     sync.Mutex
	todos  []model.Task
	draft  string
	filter model.FilterMode

	ids    idgen.Generator
	now    func() int64
	logger *zap.Logger

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int

	persister *persist.Persister
}

// NewTaskListStore restores the list from storage and subscribes a persister
// that writes the list back on every change.
func NewTaskListStore(ctx context.Context, storage repo.Storage, opts ...Option) *TaskListStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &TaskListStore{
		filter: model.FilterAll,
		ids:    o.ids,
		now:    o.now,
		logger: o.logger,
	}
	s.todos = persist.Load(ctx, storage, o.key, o.ids, o.now, o.logger)

	s.persister = persist.NewPersister(storage, o.key, s.Todos, o.scheduler, o.logger)
	s.Subscribe(func(ev Event) {
		if ev.Kind == EventTodos {
			s.persister.Changed()
		}
	})

	s.logger.Info("Task list restored", zap.String("key", o.key), zap.Int("todos", len(s.todos)))
	return s
}

func (s *TaskListStore) SetDraft(text string) {
	s.mu.Lock()
	changed := s.draft != text
	s.draft = text
	s.mu.Unlock()

	if changed {
		s.emit(EventDraft)
	}
}

// AddTodo commits the trimmed draft as a new task at the front of the list
// and clears the draft. A blank draft is left untouched.
func (s *TaskListStore) AddTodo() (model.Task, bool) {
	s.mu.Lock()
	text := strings.TrimSpace(s.draft)
	if text == "" {
		s.mu.Unlock()
		return model.Task{}, false
	}

	id := idgen.Unique(s.ids, func(id string) bool { return indexOf(s.todos, id) != -1 })
	t := model.Task{
		ID:        id,
		Text:      text,
		Completed: false,
		CreatedAt: s.now(),
	}
	s.todos = slices.Insert(s.todos, 0, t)
	s.draft = ""
	s.mu.Unlock()

	s.emit(EventTodos, EventDraft)
	return t, true
}

func (s *TaskListStore) ToggleTodo(id string) bool {
	s.mu.Lock()
	i := indexOf(s.todos, id)
	if i == -1 {
		s.mu.Unlock()
		return false
	}
	s.todos[i].Completed = !s.todos[i].Completed
	s.mu.Unlock()

	s.emit(EventTodos)
	return true
}

// RemoveTodo keeps the relative order of the remaining tasks.
func (s *TaskListStore) RemoveTodo(id string) bool {
	s.mu.Lock()
	i := indexOf(s.todos, id)
	if i == -1 {
		s.mu.Unlock()
		return false
	}
	s.todos = slices.Delete(s.todos, i, i+1)
	s.mu.Unlock()

	s.emit(EventTodos)
	return true
}

// ClearCompleted drops every completed task and returns how many were removed.
func (s *TaskListStore) ClearCompleted() int {
	s.mu.Lock()
	before := len(s.todos)
	s.todos = slices.DeleteFunc(s.todos, func(t model.Task) bool { return t.Completed })
	removed := before - len(s.todos)
	s.mu.Unlock()

	if removed > 0 {
		s.emit(EventTodos)
	}
	return removed
}

// SetFilter accepts only "all", "active" and "completed".
func (s *TaskListStore) SetFilter(mode string) bool {
	m, ok := model.ParseFilterMode(mode)
	if !ok {
		return false
	}

	s.mu.Lock()
	changed := s.filter != m
	s.filter = m
	s.mu.Unlock()

	if changed {
		s.emit(EventFilter)
	}
	return true
}

// MoveByIndex removes the task at from and inserts it at index to of the
// shortened list. to is not adjusted for the removal: moving 0 to 2 in
// [a b c] gives [b c a].
func (s *TaskListStore) MoveByIndex(from, to int) bool {
	s.mu.Lock()
	moved := s.moveLocked(from, to)
	s.mu.Unlock()

	if moved {
		s.emit(EventTodos)
	}
	return moved
}

// MoveByID resolves both ids and delegates to MoveByIndex; an unknown id
// resolves to -1 and fails the bounds check.
func (s *TaskListStore) MoveByID(fromID, toID string) bool {
	s.mu.Lock()
	moved := s.moveLocked(indexOf(s.todos, fromID), indexOf(s.todos, toID))
	s.mu.Unlock()

	if moved {
		s.emit(EventTodos)
	}
	return moved
}

func (s *TaskListStore) moveLocked(from, to int) bool {
	n := len(s.todos)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	item := s.todos[from]
	s.todos = slices.Delete(s.todos, from, from+1)
	s.todos = slices.Insert(s.todos, to, item)
	return true
}

// Flush writes a pending debounced change now.
func (s *TaskListStore) Flush() {
	s.persister.Flush()
}

// Close flushes pending writes and stops the scheduler.
func (s *TaskListStore) Close() {
	s.persister.Stop()
	s.logger.Info("Task list closed")
}
