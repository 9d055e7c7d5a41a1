package service

import "github.com/BuzzLyutic/todolist/internal/model"

// State is everything a UI needs to render the list.
type State struct {
	Todos         []model.Task     `json:"todos"`
	Draft         string           `json:"draft"`
	Filter        model.FilterMode `json:"filter"`
	FilteredTodos []model.Task     `json:"filteredTodos"`
	Remaining     int              `json:"remaining"`
	HasTodos      bool             `json:"hasTodos"`
}

func remaining(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

func filterTasks(tasks []model.Task, mode model.FilterMode) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if mode.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskListStore) Todos() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *TaskListStore) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *TaskListStore) Filter() model.FilterMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Remaining counts tasks that are not completed.
func (s *TaskListStore) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remaining(s.todos)
}

func (s *TaskListStore) HasTodos() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos) > 0
}

// FilteredTodos applies the current filter mode.
func (s *TaskListStore) FilteredTodos() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterTasks(s.todos, s.filter)
}

// IndexOfID returns the position of id, or -1.
func (s *TaskListStore) IndexOfID(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.todos, id)
}

// Snapshot returns a consistent view of the whole state.
func (s *TaskListStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]model.Task, len(s.todos))
	copy(todos, s.todos)
	return State{
		Todos:         todos,
		Draft:         s.draft,
		Filter:        s.filter,
		FilteredTodos: filterTasks(s.todos, s.filter),
		Remaining:     remaining(s.todos),
		HasTodos:      len(s.todos) > 0,
	}
}
