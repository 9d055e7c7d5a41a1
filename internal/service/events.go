package service

type EventKind string

const (
	EventTodos  EventKind = "todos"
	EventDraft  EventKind = "draft"
	EventFilter EventKind = "filter"
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Kind EventKind
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every state change. Callbacks run on the
// mutating goroutine after the store lock is released, so they may read the
// store. The returned func removes the subscription.
func (s *TaskListStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *TaskListStore) emit(kinds ...EventKind) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, kind := range kinds {
		for _, sub := range subs {
			sub.fn(Event{Kind: kind})
		}
	}
}
